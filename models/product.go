package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID              string  `json:"id" gorm:"primaryKey"`
	Name            string  `json:"name" gorm:"not null"`
	Category        string  `json:"category"`
	ImageURL        string  `json:"image_url"`
	IndicativePrice float64 `json:"indicative_price" gorm:"not null"`
	// No column default: gorm omits zero-value fields from the INSERT, so a
	// default of true would silently reactivate products created with
	// IsActive=false. Creators set the field explicitly.
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
