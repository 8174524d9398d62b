package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
)

var artisan = &domain.Identity{ID: "u1", Username: "alice", Role: domain.RoleArtisan}

type part struct {
	field, filename, contentType, body string
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = pw.Write([]byte(p.body))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestProfileHandler_Me(t *testing.T) {
	stub := &stubProfileService{
		getFn: func(ctx context.Context, userID string) (*domain.User, error) {
			if userID != "u1" {
				t.Fatalf("unexpected user id %q", userID)
			}
			return &domain.User{ID: "u1", Username: "alice"}, nil
		},
	}
	c, rec := jsonContext(http.MethodGet, "/api/users/me", "", artisan)
	if err := NewProfileHandler(stub).Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProfileHandler_Me_Gone(t *testing.T) {
	stub := &stubProfileService{
		getFn: func(ctx context.Context, userID string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	c, _ := jsonContext(http.MethodGet, "/api/users/me", "", artisan)
	if err := NewProfileHandler(stub).Me(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProfileHandler_UpdateMe(t *testing.T) {
	stub := &stubProfileService{
		updateFn: func(ctx context.Context, userID string, in ports.ProfileUpdateInput) (*domain.User, error) {
			if in.FirstName != "Ada" || in.ExperienceYears != 7 || in.Role != "artisan" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.GalleryImages != nil {
				t.Fatalf("absent gallery must stay nil, got %v", in.GalleryImages)
			}
			return &domain.User{ID: userID, ArtisanProfile: domain.ArtisanProfile{FirstName: "Ada"}}, nil
		},
	}
	c, rec := jsonContext(http.MethodPut, "/api/users/me", `{"firstName":"Ada","experienceYears":7,"role":"artisan"}`, artisan)
	if err := NewProfileHandler(stub).UpdateMe(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Msg != "Profile updated successfully" || resp.User.ArtisanProfile.FirstName != "Ada" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProfileHandler_UpdateMe_ShapeValidation(t *testing.T) {
	stub := &stubProfileService{
		updateFn: func(ctx context.Context, userID string, in ports.ProfileUpdateInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c, _ := jsonContext(http.MethodPut, "/api/users/me", `{"experienceYears":-1}`, artisan)
	err := NewProfileHandler(stub).UpdateMe(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Errors) != 1 || ve.Errors[0] != "experienceYears must be at least 0" {
		t.Fatalf("unexpected messages: %q", ve.Errors)
	}
}

func TestProfileHandler_UploadAvatar(t *testing.T) {
	stub := &stubProfileService{
		avatarFn: func(ctx context.Context, userID string, file ports.UploadFile) (string, *domain.User, error) {
			data, _ := io.ReadAll(file.Content)
			if file.Filename != "me.png" || file.ContentType != "image/png" || string(data) != "PNG" {
				t.Fatalf("unexpected upload: %+v body=%q", file, data)
			}
			return "/uploads/x-me.png", &domain.User{ID: userID}, nil
		},
	}
	body, ct := multipartBody(t, part{"avatar", "me.png", "image/png", "PNG"})
	c, rec := newContext(http.MethodPost, "/api/users/me/avatar", ct, body, artisan)
	if err := NewProfileHandler(stub).UploadAvatar(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp avatarResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.URL != "/uploads/x-me.png" {
		t.Fatalf("unexpected url %q", resp.URL)
	}
}

func TestProfileHandler_UploadAvatar_NoFile(t *testing.T) {
	body, ct := multipartBody(t, part{"other", "me.png", "image/png", "PNG"})
	c, _ := newContext(http.MethodPost, "/api/users/me/avatar", ct, body, artisan)
	if err := NewProfileHandler(&stubProfileService{}).UploadAvatar(c); !errors.Is(err, domain.ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
}

func TestProfileHandler_UploadGallery(t *testing.T) {
	stub := &stubProfileService{
		galleryFn: func(ctx context.Context, userID string, files []ports.UploadFile) ([]string, *domain.User, error) {
			if len(files) != 2 || files[1].Filename != "b.jpg" {
				t.Fatalf("unexpected files: %+v", files)
			}
			return []string{"/uploads/a", "/uploads/b"}, &domain.User{ID: userID}, nil
		},
	}
	body, ct := multipartBody(t,
		part{"images", "a.jpg", "image/jpeg", "A"},
		part{"images", "b.jpg", "image/jpeg", "B"},
	)
	c, rec := newContext(http.MethodPost, "/api/users/me/gallery", ct, body, artisan)
	if err := NewProfileHandler(stub).UploadGallery(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp galleryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.URLs) != 2 || resp.Msg != "Gallery images uploaded successfully" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProfileHandler_UploadGallery_NoFiles(t *testing.T) {
	c, _ := jsonContext(http.MethodPost, "/api/users/me/gallery", `{}`, artisan)
	if err := NewProfileHandler(&stubProfileService{}).UploadGallery(c); !errors.Is(err, domain.ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}

	body, ct := multipartBody(t, part{"avatar", "a.jpg", "image/jpeg", "A"})
	c, _ = newContext(http.MethodPost, "/api/users/me/gallery", ct, body, artisan)
	if err := NewProfileHandler(&stubProfileService{}).UploadGallery(c); !errors.Is(err, domain.ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles for missing field, got %v", err)
	}
}

func TestProfileHandler_Artisans(t *testing.T) {
	stub := &stubProfileService{
		artisansFn: func(ctx context.Context) ([]*domain.User, error) {
			return []*domain.User{{Username: "alice", Role: domain.RoleArtisan}}, nil
		},
	}
	c, rec := jsonContext(http.MethodGet, "/api/users/artisans", "", nil)
	if err := NewProfileHandler(stub).Artisans(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp artisansResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Artisans) != 1 || resp.Artisans[0].Username != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
