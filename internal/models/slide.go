package models

// Slide is a promotional banner shown on the storefront carousel.
type Slide struct {
	BaseModel
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	ImageURL     string `json:"image_url"`
	LinkURL      string `json:"link_url"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
