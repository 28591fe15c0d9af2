package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinesync/backend/pkg/enums"
)

// InventoryItem is a stocked ingredient consumed by menu items.
type InventoryItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string          `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Unit         string          `gorm:"column:unit;not null" json:"unit"`
	CurrentStock decimal.Decimal `gorm:"column:current_stock;type:numeric(12,3);not null;default:0" json:"current_stock"`
	MinimumStock decimal.Decimal `gorm:"column:minimum_stock;type:numeric(12,3);not null;default:0" json:"minimum_stock"`
	CostPerUnit  decimal.Decimal `gorm:"column:cost_per_unit;type:numeric(12,2);not null;default:0" json:"cost_per_unit"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// StockStatus derives the display classification from current levels.
func (i InventoryItem) StockStatus() enums.StockStatus {
	switch {
	case i.CurrentStock.LessThanOrEqual(decimal.Zero):
		return enums.StockStatusOutOfStock
	case i.CurrentStock.LessThanOrEqual(i.MinimumStock):
		return enums.StockStatusLowStock
	default:
		return enums.StockStatusInStock
	}
}
