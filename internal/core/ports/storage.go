package ports

import (
	"context"
	"io"
)

// ObjectStorage stores uploaded profile images. Put derives a unique object
// name from the client-supplied filename and returns the public URL.
type ObjectStorage interface {
	Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
}

// UploadFile is one file received from a multipart form.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}
