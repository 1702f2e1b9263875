package models

import "time"

type Product struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	URL               string    `gorm:"not null" json:"url"`
	Name              string    `gorm:"not null" json:"name"`
	RetailerProductID string    `json:"retailer_product_id,omitempty"`
	ImageURL          string    `json:"image_url,omitempty"`
	Price             string    `json:"price,omitempty"`
	IsActive          bool      `gorm:"not null" json:"is_active"`
	AddedAt           time.Time `gorm:"not null" json:"added_at"`
}
