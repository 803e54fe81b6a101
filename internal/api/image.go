package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/backend/internal/service"
)

// maxImageSize caps uploads at 5MB.
const maxImageSize = 5 << 20

// ImageHandler handles image upload requests
type ImageHandler struct {
	imageService *service.ImageService
}

// NewImageHandler creates a new image handler. imageService may be nil when
// S3 is not configured.
func NewImageHandler(imageService *service.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/images", h.UploadImage)
}

// UploadImageResponse represents the response for an image upload
type UploadImageResponse struct {
	ImageURL string `json:"image_url"`
}

// UploadImage accepts a multipart image and stores it, returning the public
// URL. kind=avatar stores under avatars/, anything else under recipe-images/.
func (h *ImageHandler) UploadImage(c *gin.Context) {
	if h.imageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image file"})
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image exceeds 5MB limit"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	var url string
	if c.Query("kind") == "avatar" {
		url, err = h.imageService.UploadAvatar(c.Request.Context(), data, contentType)
	} else {
		url, err = h.imageService.UploadRecipeImage(c.Request.Context(), data, contentType)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	c.JSON(http.StatusOK, UploadImageResponse{ImageURL: url})
}
