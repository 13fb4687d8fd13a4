package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/JastiRaja/parnika-backend/internal/config"
)

// UploadHandler stores product and slide images on disk.
type UploadHandler struct {
	cfg *config.Config
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(cfg *config.Config) *UploadHandler {
	return &UploadHandler{cfg: cfg}
}

type uploadedImage struct {
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url"`
}

// UploadImages accepts multipart images under the "images" key. Each file is
// decoded, stored under a UUID name, and a 300px-wide thumbnail is written
// alongside. Admin only.
func (h *UploadHandler) UploadImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart form required")
	}

	files := form.File["images"]
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no images provided")
	}

	thumbDir := filepath.Join(h.cfg.UploadDir, "thumbs")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return err
	}

	uploaded := make([]uploadedImage, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return err
		}
		img, err := imaging.Decode(src)
		src.Close()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("%s is not a supported image", fh.Filename))
		}

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			ext = ".jpg"
		}
		name := uuid.New().String() + ext

		if err := imaging.Save(img, filepath.Join(h.cfg.UploadDir, name)); err != nil {
			return err
		}

		thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
		if err := imaging.Save(thumb, filepath.Join(thumbDir, name)); err != nil {
			return err
		}

		uploaded = append(uploaded, uploadedImage{
			URL:      h.cfg.PublicBaseURL + "/uploads/" + name,
			ThumbURL: h.cfg.PublicBaseURL + "/uploads/thumbs/" + name,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": uploaded})
}
