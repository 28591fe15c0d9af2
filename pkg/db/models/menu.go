package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups menu items for display ordering.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// MenuItem is a sellable catalog entry.
type MenuItem struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CategoryID  uuid.UUID            `gorm:"column:category_id;type:uuid;not null;index" json:"category_id"`
	Name        string               `gorm:"column:name;not null" json:"name"`
	Description *string              `gorm:"column:description" json:"description,omitempty"`
	Price       decimal.Decimal      `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Available   bool                 `gorm:"column:available;not null;default:true" json:"available"`
	ImageURL    *string              `gorm:"column:image_url" json:"image_url,omitempty"`
	Ingredients []MenuItemIngredient `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// MenuItemIngredient maps one menu item to the inventory it consumes per unit sold.
type MenuItemIngredient struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MenuItemID      uuid.UUID       `gorm:"column:menu_item_id;type:uuid;not null;index" json:"menu_item_id"`
	InventoryItemID uuid.UUID       `gorm:"column:inventory_item_id;type:uuid;not null;index" json:"inventory_item_id"`
	QuantityPerUnit decimal.Decimal `gorm:"column:quantity_per_unit;type:numeric(12,3);not null" json:"quantity_per_unit"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
