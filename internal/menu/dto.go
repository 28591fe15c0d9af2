package menu

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryInput captures a new or updated display category.
type CategoryInput struct {
	Name      string `json:"name" validate:"required,max=120"`
	SortOrder int    `json:"sort_order"`
}

// IngredientInput maps a menu item to the inventory it consumes per unit.
type IngredientInput struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id" validate:"required"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit" validate:"required"`
}

// ItemInput captures a new menu item.
type ItemInput struct {
	CategoryID  uuid.UUID         `json:"category_id" validate:"required"`
	Name        string            `json:"name" validate:"required,max=120"`
	Description *string           `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal   `json:"price" validate:"required"`
	Available   bool              `json:"available"`
	ImageURL    *string           `json:"image_url" validate:"omitempty,url"`
	Ingredients []IngredientInput `json:"ingredients" validate:"dive"`
}

// ItemUpdateInput carries partial edits to a menu item. Ingredients, when
// present, replace the existing mapping wholesale.
type ItemUpdateInput struct {
	CategoryID  *uuid.UUID         `json:"category_id"`
	Name        *string            `json:"name" validate:"omitempty,max=120"`
	Description *string            `json:"description" validate:"omitempty,max=500"`
	Price       *decimal.Decimal   `json:"price"`
	Available   *bool              `json:"available"`
	ImageURL    *string            `json:"image_url" validate:"omitempty,url"`
	Ingredients *[]IngredientInput `json:"ingredients" validate:"omitempty,dive"`
}
