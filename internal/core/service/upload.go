package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
)

// sniffLen is how much of an upload is read to detect its real type.
const sniffLen = 3072

// SVG is an image type that can carry script, so it is refused with the
// non-image types.
const mimeSVG = "image/svg+xml"

// sniffImage checks both the declared part type and the detected content
// type. The returned file carries the detected type, a filename whose
// extension matches it, and a reader that still yields the full content.
func sniffImage(f ports.UploadFile) (ports.UploadFile, error) {
	if !isImage(f.ContentType) {
		return f, domain.ErrUnsupportedFile
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Content, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return f, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !isImage(detected.String()) || detected.Is(mimeSVG) {
		return f, domain.ErrUnsupportedFile
	}

	name := strings.TrimSuffix(f.Filename, filepath.Ext(f.Filename))
	f.Filename = name + detected.Extension()
	f.ContentType = detected.String()
	f.Content = io.MultiReader(bytes.NewReader(head), f.Content)
	return f, nil
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
