package models

import (
	"time"

	"github.com/google/uuid"
)

// RestaurantSettings is the singleton branding/contact record shown on the
// customer-facing surfaces. Reads always return the first row.
type RestaurantSettings struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Tagline      *string   `gorm:"column:tagline" json:"tagline,omitempty"`
	Phone        string    `gorm:"column:phone" json:"phone"`
	Email        string    `gorm:"column:email" json:"email"`
	Address      string    `gorm:"column:address" json:"address"`
	Currency     string    `gorm:"column:currency;not null;default:'INR'" json:"currency"`
	OpeningHours *string   `gorm:"column:opening_hours" json:"opening_hours,omitempty"`
	LogoURL      *string   `gorm:"column:logo_url" json:"logo_url,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
