package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
)

// ProfileHandler serves the caller's own profile and the artisan directory.
type ProfileHandler struct {
	profiles ports.ProfileService
}

func NewProfileHandler(profiles ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me returns the authenticated account.
//
// @Summary      Current account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/users/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	user, err := h.profiles.Get(c.Request().Context(), who.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Success: true, User: user})
}

// UpdateMe replaces the artisan profile fields of the authenticated account.
//
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileUpdateRequest  true  "Profile fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/users/me [put]
func (h *ProfileHandler) UpdateMe(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}

	var req profileUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.profiles.Update(c.Request().Context(), who.ID, ports.ProfileUpdateInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Location:        req.Location,
		CraftType:       req.CraftType,
		ExperienceYears: req.ExperienceYears,
		Bio:             req.Bio,
		AvatarURL:       req.AvatarURL,
		GalleryImages:   req.GalleryImages,
		Role:            req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Success: true, Msg: "Profile updated successfully", User: user})
}

// UploadAvatar stores the multipart field "avatar" as the profile picture.
//
// @Summary      Upload avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Avatar image"
// @Success      200     {object}  avatarResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Router       /api/users/me/avatar [post]
func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return domain.ErrNoFile
	}
	files, closeAll, err := openUploads([]*multipart.FileHeader{fh})
	if err != nil {
		return err
	}
	defer closeAll()

	url, user, err := h.profiles.UploadAvatar(c.Request().Context(), who.ID, files[0])
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, avatarResponse{Success: true, Msg: "Avatar uploaded successfully", URL: url, User: user})
}

// UploadGallery appends the multipart field "images" to the gallery.
//
// @Summary      Upload gallery images
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        images  formData  file  true  "Gallery images"
// @Success      200     {object}  galleryResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Router       /api/users/me/gallery [post]
func (h *ProfileHandler) UploadGallery(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return domain.ErrNoFiles
	}
	headers := form.File["images"]
	if len(headers) == 0 {
		return domain.ErrNoFiles
	}
	files, closeAll, err := openUploads(headers)
	if err != nil {
		return err
	}
	defer closeAll()

	urls, user, err := h.profiles.UploadGallery(c.Request().Context(), who.ID, files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, galleryResponse{Success: true, Msg: "Gallery images uploaded successfully", URLs: urls, User: user})
}

// Artisans lists every artisan account.
//
// @Summary      Artisan directory
// @Tags         users
// @Produce      json
// @Success      200  {object}  artisansResponse
// @Router       /api/users/artisans [get]
func (h *ProfileHandler) Artisans(c echo.Context) error {
	artisans, err := h.profiles.Artisans(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, artisansResponse{Success: true, Artisans: artisans})
}

// openUploads opens every part. The returned func closes whatever was opened.
func openUploads(headers []*multipart.FileHeader) ([]ports.UploadFile, func(), error) {
	files := make([]ports.UploadFile, 0, len(headers))
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, errors.Join(domain.ErrNoFile, err)
		}
		opened = append(opened, f)
		files = append(files, ports.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return files, closeAll, nil
}
