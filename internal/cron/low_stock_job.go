package cron

import (
	"context"
	"fmt"

	"github.com/dinesync/backend/internal/inventory"
	"github.com/dinesync/backend/pkg/enums"
	"github.com/dinesync/backend/pkg/logger"
)

// LowStockJobParams configure the daily low-stock report.
type LowStockJobParams struct {
	Logger *logger.Logger
	Stock  lowStockLister
}

type lowStockLister interface {
	LowStock(ctx context.Context) ([]inventory.ItemView, error)
}

// NewLowStockJob builds the job that reports ingredients at or below
// their minimum stock level.
func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &lowStockJob{logg: params.Logger, stock: params.Stock}, nil
}

type lowStockJob struct {
	logg  *logger.Logger
	stock lowStockLister
}

func (j *lowStockJob) Name() string { return "low-stock-report" }

func (j *lowStockJob) Run(ctx context.Context) error {
	items, err := j.stock.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("list low stock items: %w", err)
	}
	outOfStock := 0
	for _, item := range items {
		if item.StockStatus == enums.StockStatusOutOfStock {
			outOfStock++
		}
		itemCtx := j.logg.WithFields(ctx, map[string]any{
			"inventory_item_id": item.ID.String(),
			"name":              item.Name,
			"unit":              item.Unit,
			"current_stock":     item.CurrentStock.String(),
			"minimum_stock":     item.MinimumStock.String(),
			"stock_status":      string(item.StockStatus),
		})
		j.logg.Warn(itemCtx, "ingredient needs restocking")
	}
	summaryCtx := j.logg.WithFields(ctx, map[string]any{
		"low_stock":    len(items) - outOfStock,
		"out_of_stock": outOfStock,
	})
	j.logg.Info(summaryCtx, "low stock report complete")
	return nil
}
