package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
)

// CreateInput captures a new stocked item.
type CreateInput struct {
	Name         string          `json:"name" validate:"required,max=120"`
	Unit         string          `json:"unit" validate:"required,max=32"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
}

// UpdateInput carries partial edits to an inventory item.
type UpdateInput struct {
	Name         *string          `json:"name" validate:"omitempty,max=120"`
	Unit         *string          `json:"unit" validate:"omitempty,max=32"`
	CurrentStock *decimal.Decimal `json:"current_stock"`
	MinimumStock *decimal.Decimal `json:"minimum_stock"`
	CostPerUnit  *decimal.Decimal `json:"cost_per_unit"`
}

// RestockInput adds stock to an existing item.
type RestockInput struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

// DeductInput names the order whose ingredients should be deducted.
type DeductInput struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// ItemView decorates an inventory row with its derived stock classification.
type ItemView struct {
	models.InventoryItem
	StockStatus enums.StockStatus `json:"stock_status"`
}

// Shortfall reports one inventory item with insufficient stock for a
// requested deduction.
type Shortfall struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	Name            string          `json:"name"`
	Required        decimal.Decimal `json:"required"`
	Available       decimal.Decimal `json:"available"`
}

// DeductionResult summarizes an applied deduction.
type DeductionResult struct {
	OrderID  uuid.UUID       `json:"order_id"`
	Deducted []DeductionLine `json:"deducted"`
}

// DeductionLine is one applied per-item deduction.
type DeductionLine struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
}
