package models

import (
	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	Name              string                 `json:"name"`
	Description       string                 `json:"description"`
	Price             float64                `json:"price"`
	Category          string                 `gorm:"index" json:"category"`
	Stock             int                    `json:"stock"`
	HasDeliveryCharge bool                   `json:"has_delivery_charge"`
	DeliveryCharge    float64                `json:"delivery_charge"`
	RatingAverage     float64                `json:"rating_average"`
	RatingCount       int                    `json:"rating_count"`
	Images            []ProductImage         `json:"images,omitempty"`
	Specifications    []ProductSpecification `json:"specifications,omitempty"`
	Reviews           []ProductReview        `json:"reviews,omitempty"`
}

type ProductImage struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	URL          string    `json:"url"`
	AltText      string    `json:"alt_text"`
	DisplayOrder int       `json:"display_order"`
}

type ProductSpecification struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Label        string    `json:"label"`
	Value        string    `json:"value"`
	DisplayOrder int       `json:"display_order"`
}

type ProductReview struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment"`
}
