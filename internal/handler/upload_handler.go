package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freka11/schoolday/internal/middleware"
	"github.com/freka11/schoolday/internal/model"
	"github.com/freka11/schoolday/pkg/storage"
)

// Max avatar size: 5MB
const maxUploadSize = 5 << 20

// Allowed avatar MIME types
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// avatarStore persists the uploaded avatar URL on the profile
type avatarStore interface {
	UpdateAvatar(userID uuid.UUID, avatarURL string) error
}

// UploadHandler handles avatar upload endpoints
type UploadHandler struct {
	storage *storage.MinIOStorage
	users   avatarStore
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(st *storage.MinIOStorage, users avatarStore) *UploadHandler {
	return &UploadHandler{storage: st, users: users}
}

// UploadAvatar godoc
// @Summary Upload a profile avatar
// @Description Stores the image and updates the caller's profile with its
// @Description public URL. Supports jpg, png, gif and webp up to 5MB.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} model.UploadResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 413 {object} model.ErrorResponse
// @Router /profile/avatar [post]
func (h *UploadHandler) UploadAvatar(c *gin.Context) {
	user := middleware.SessionFrom(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "authentication required"})
		return
	}

	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "File upload service unavailable"})
		return
	}

	// Limit request body size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		if err.Error() == "http: request body too large" {
			c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: "File too large (max 5MB)"})
			return
		}
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Avatar file is required", Message: err.Error()})
		return
	}
	defer file.Close()

	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	if !allowedImageTypes[contentType] {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Unsupported file type",
			Message: "Allowed: jpg, png, gif, webp",
		})
		return
	}

	result, err := h.storage.Upload(c.Request.Context(), file, header, "avatars")
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to upload avatar", Message: err.Error()})
		return
	}

	if err := h.users.UpdateAvatar(user.UID, result.URL); err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, model.UploadResponse{
		URL:      result.URL,
		FileName: result.FileName,
		FileSize: result.FileSize,
		MimeType: result.MimeType,
	})
}
