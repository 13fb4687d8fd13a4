package handlers

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JastiRaja/parnika-backend/internal/middleware"
	"github.com/JastiRaja/parnika-backend/internal/models"
	"github.com/JastiRaja/parnika-backend/internal/utils"
)

// ProductHandler manages catalog endpoints.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", q, q)
	}

	if minPrice := c.Query("min_price"); minPrice != "" {
		if val, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("price >= ?", val)
		}
	}

	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if val, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price <= ?", val)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Images").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       products,
		"pagination": pg.Meta(total),
	})
}

// ListCategories returns the distinct categories present in the catalog.
func (h *ProductHandler) ListCategories(c *fiber.Ctx) error {
	var categories []string
	if err := h.db.Model(&models.Product{}).
		Where("category <> ''").
		Distinct().
		Pluck("category", &categories).Error; err != nil {
		return err
	}
	sort.Strings(categories)

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// GetProduct loads a product with its images, specifications and reviews.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Images").
		Preload("Specifications").
		Preload("Reviews").
		First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productImageRequest struct {
	URL          string `json:"url"`
	AltText      string `json:"alt_text"`
	DisplayOrder int    `json:"display_order"`
}

type productSpecRequest struct {
	Label        string `json:"label"`
	Value        string `json:"value"`
	DisplayOrder int    `json:"display_order"`
}

type productRequest struct {
	Name              string                `json:"name"`
	Description       string                `json:"description"`
	Price             float64               `json:"price"`
	Category          string                `json:"category"`
	Stock             int                   `json:"stock"`
	HasDeliveryCharge bool                  `json:"has_delivery_charge"`
	DeliveryCharge    float64               `json:"delivery_charge"`
	Images            []productImageRequest `json:"images"`
	Specifications    []productSpecRequest  `json:"specifications"`
}

func (r *productRequest) validate() validationErrors {
	var verr validationErrors
	if strings.TrimSpace(r.Name) == "" {
		verr.add("name", "name is required")
	}
	if r.Price < 0 {
		verr.add("price", "price cannot be negative")
	}
	if r.Stock < 0 {
		verr.add("stock", "stock cannot be negative")
	}
	if r.DeliveryCharge < 0 {
		verr.add("delivery_charge", "delivery charge cannot be negative")
	}
	return verr
}

func buildProductFromRequest(req productRequest) models.Product {
	product := models.Product{
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		Price:             req.Price,
		Category:          req.Category,
		Stock:             req.Stock,
		HasDeliveryCharge: req.HasDeliveryCharge,
		DeliveryCharge:    req.DeliveryCharge,
	}

	for _, img := range req.Images {
		product.Images = append(product.Images, models.ProductImage{
			URL:          img.URL,
			AltText:      img.AltText,
			DisplayOrder: img.DisplayOrder,
		})
	}

	for _, spec := range req.Specifications {
		product.Specifications = append(product.Specifications, models.ProductSpecification{
			Label:        spec.Label,
			Value:        spec.Value,
			DisplayOrder: spec.DisplayOrder,
		})
	}

	return product
}

// CreateProduct handles product creation. Admin only.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if verr := req.validate(); len(verr) > 0 {
		return verr.respond(c)
	}

	product := buildProductFromRequest(req)
	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates a product and replaces its images and specifications.
// Rating aggregates are derived from reviews and survive the update untouched.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var existing models.Product
	if err := h.db.First(&existing, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if verr := req.validate(); len(verr) > 0 {
		return verr.respond(c)
	}

	product := buildProductFromRequest(req)
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.RatingAverage = existing.RatingAverage
	product.RatingCount = existing.RatingCount

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductSpecification{}).Error; err != nil {
			return err
		}

		for i := range product.Images {
			product.Images[i].ProductID = product.ID
		}
		for i := range product.Specifications {
			product.Specifications[i].ProductID = product.ID
		}

		if err := tx.Model(&existing).Omit("ID", "CreatedAt").Updates(map[string]interface{}{
			"name":                product.Name,
			"description":         product.Description,
			"price":               product.Price,
			"category":            product.Category,
			"stock":               product.Stock,
			"has_delivery_charge": product.HasDeliveryCharge,
			"delivery_charge":     product.DeliveryCharge,
		}).Error; err != nil {
			return err
		}

		if len(product.Images) > 0 {
			if err := tx.Create(&product.Images).Error; err != nil {
				return err
			}
		}
		if len(product.Specifications) > 0 {
			if err := tx.Create(&product.Specifications).Error; err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product together with its child rows.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductSpecification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductReview{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AddReview creates or updates the caller's review for a product and
// recomputes the product's rating aggregates.
func (h *ProductHandler) AddReview(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Rating < 1 || req.Rating > 5 {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	var review models.ProductReview
	err = h.db.Transaction(func(tx *gorm.DB) error {
		// One review per user per product: a second submission replaces the first.
		findErr := tx.Where("product_id = ? AND user_id = ?", productID, userID).First(&review).Error
		switch {
		case findErr == nil:
			review.Rating = req.Rating
			review.Comment = req.Comment
			review.UserName = user.Name
			if err := tx.Save(&review).Error; err != nil {
				return err
			}
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			review = models.ProductReview{
				ProductID: productID,
				UserID:    userID,
				UserName:  user.Name,
				Rating:    req.Rating,
				Comment:   req.Comment,
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		default:
			return findErr
		}

		return recomputeRating(tx, productID)
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": review})
}

func recomputeRating(tx *gorm.DB, productID uuid.UUID) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	if err := tx.Model(&models.ProductReview{}).
		Where("product_id = ?", productID).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Scan(&agg).Error; err != nil {
		return err
	}

	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]interface{}{
			"rating_average": agg.Avg,
			"rating_count":   agg.Count,
		}).Error
}
