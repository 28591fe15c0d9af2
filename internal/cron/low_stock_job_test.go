package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinesync/backend/internal/inventory"
	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
	"github.com/dinesync/backend/pkg/logger"
)

type fakeLowStockLister struct {
	items []inventory.ItemView
	err   error
	calls int
}

func (f *fakeLowStockLister) LowStock(context.Context) ([]inventory.ItemView, error) {
	f.calls++
	return f.items, f.err
}

func TestLowStockJobReportsItems(t *testing.T) {
	lister := &fakeLowStockLister{
		items: []inventory.ItemView{
			{
				InventoryItem: models.InventoryItem{
					ID:           uuid.New(),
					Name:         "flour",
					Unit:         "kg",
					CurrentStock: decimal.NewFromInt(2),
					MinimumStock: decimal.NewFromInt(5),
				},
				StockStatus: enums.StockStatusLowStock,
			},
		},
	}
	job, err := NewLowStockJob(LowStockJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Stock:  lister,
	})
	if err != nil {
		t.Fatalf("NewLowStockJob: %v", err)
	}
	if job.Name() != "low-stock-report" {
		t.Fatalf("unexpected job name: %s", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if lister.calls != 1 {
		t.Fatalf("expected one low stock query, got %d", lister.calls)
	}
}

func TestLowStockJobPropagatesListError(t *testing.T) {
	lister := &fakeLowStockLister{err: errors.New("db down")}
	job, err := NewLowStockJob(LowStockJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Stock:  lister,
	})
	if err != nil {
		t.Fatalf("NewLowStockJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error when listing fails")
	}
}
