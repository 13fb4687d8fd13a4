package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JastiRaja/parnika-backend/internal/models"
)

// SlideHandler manages the storefront carousel slides.
type SlideHandler struct {
	db *gorm.DB
}

// NewSlideHandler constructs SlideHandler.
func NewSlideHandler(db *gorm.DB) *SlideHandler {
	return &SlideHandler{db: db}
}

// ListSlides returns the active slides in display order.
func (h *SlideHandler) ListSlides(c *fiber.Ctx) error {
	query := h.db.Model(&models.Slide{})
	if c.Query("all") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var items []models.Slide
	if err := query.Order("display_order asc, created_at desc").Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

// CreateSlide adds a slide. Admin only.
func (h *SlideHandler) CreateSlide(c *fiber.Ctx) error {
	var item models.Slide
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if item.ImageURL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "image_url is required")
	}
	if err := h.db.Create(&item).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// UpdateSlide replaces a slide's fields. Admin only.
func (h *SlideHandler) UpdateSlide(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	var item models.Slide
	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "slide not found")
		}
		return err
	}
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	item.ID = id
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

// DeleteSlide removes a slide. Admin only.
func (h *SlideHandler) DeleteSlide(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Slide{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
