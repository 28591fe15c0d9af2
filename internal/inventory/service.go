package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
	pkgerrors "github.com/dinesync/backend/pkg/errors"
	"github.com/dinesync/backend/pkg/logger"
)

// Service defines inventory operations including the order deduction
// procedure.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ItemView, error)
	Get(ctx context.Context, id uuid.UUID) (*ItemView, error)
	List(ctx context.Context) ([]ItemView, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ItemView, error)
	Restock(ctx context.Context, id uuid.UUID, input RestockInput) (*ItemView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeductForOrder(ctx context.Context, orderID uuid.UUID) (*DeductionResult, error)
	LowStock(ctx context.Context) ([]ItemView, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds an inventory service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ItemView, error) {
	if input.CurrentStock.IsNegative() || input.MinimumStock.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock levels cannot be negative")
	}
	item := &models.InventoryItem{
		Name:         input.Name,
		Unit:         input.Unit,
		CurrentStock: input.CurrentStock,
		MinimumStock: input.MinimumStock,
		CostPerUnit:  input.CostPerUnit,
	}
	if _, err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory item")
	}
	return view(item), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemView, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return view(item), nil
}

func (s *service) List(ctx context.Context) ([]ItemView, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	views := make([]ItemView, 0, len(items))
	for i := range items {
		views = append(views, *view(&items[i]))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ItemView, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if input.CurrentStock != nil {
		if input.CurrentStock.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "current stock cannot be negative")
		}
		item.CurrentStock = *input.CurrentStock
	}
	if input.MinimumStock != nil {
		if input.MinimumStock.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock cannot be negative")
		}
		item.MinimumStock = *input.MinimumStock
	}
	if input.CostPerUnit != nil {
		item.CostPerUnit = *input.CostPerUnit
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory item")
	}
	return view(item), nil
}

func (s *service) Restock(ctx context.Context, id uuid.UUID, input RestockInput) (*ItemView, error) {
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	item.CurrentStock = item.CurrentStock.Add(input.Quantity)
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock inventory item")
	}
	return view(item), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory item")
	}
	return nil
}

// LowStock returns every item at or below its minimum, including items fully
// out of stock.
func (s *service) LowStock(ctx context.Context) ([]ItemView, error) {
	views, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ItemView, 0, len(views))
	for _, v := range views {
		if v.StockStatus != enums.StockStatusInStock {
			out = append(out, v)
		}
	}
	return out, nil
}

// DeductForOrder aggregates the required quantity per inventory item across
// all of the order's line items, validates every requirement against current
// stock, then applies the deductions concurrently. Validation is
// all-or-nothing; application is not atomic — a failed row does not roll back
// rows that already succeeded.
func (s *service) DeductForOrder(ctx context.Context, orderID uuid.UUID) (*DeductionResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	ingredients, err := s.repo.FindIngredientsForOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order ingredients")
	}
	if len(ingredients) == 0 {
		return &DeductionResult{OrderID: orderID, Deducted: []DeductionLine{}}, nil
	}

	// Multiple line items can consume the same inventory item.
	required := make(map[uuid.UUID]decimal.Decimal)
	for _, ing := range ingredients {
		amount := ing.QuantityPerUnit.Mul(decimal.NewFromInt(int64(ing.Quantity)))
		required[ing.InventoryItemID] = required[ing.InventoryItemID].Add(amount)
	}

	ids := make([]uuid.UUID, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	items, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory items")
	}
	byID := make(map[uuid.UUID]models.InventoryItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	var shortfalls []Shortfall
	for id, amount := range required {
		item, ok := byID[id]
		if !ok {
			shortfalls = append(shortfalls, Shortfall{
				InventoryItemID: id,
				Required:        amount,
				Available:       decimal.Zero,
			})
			continue
		}
		if item.CurrentStock.LessThan(amount) {
			shortfalls = append(shortfalls, Shortfall{
				InventoryItemID: id,
				Name:            item.Name,
				Required:        amount,
				Available:       item.CurrentStock,
			})
		}
	}
	if len(shortfalls) > 0 {
		sort.Slice(shortfalls, func(i, j int) bool {
			return shortfalls[i].Name < shortfalls[j].Name
		})
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for order").
			WithDetails(shortfalls)
	}

	// One update per affected item, issued concurrently. Succeeded updates
	// stay applied even when a sibling fails.
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)
	lines := make([]DeductionLine, 0, len(required))
	for id, amount := range required {
		wg.Add(1)
		go func(id uuid.UUID, amount decimal.Decimal) {
			defer wg.Done()
			err := s.repo.ApplyDeduction(ctx, id, amount)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("deduct %s: %w", id, err))
				return
			}
			lines = append(lines, DeductionLine{InventoryItemID: id, Quantity: amount})
		}(id, amount)
	}
	wg.Wait()

	if combined := multierr.Combine(errs...); combined != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "inventory deduction partially failed", combined)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "apply inventory deductions")
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].InventoryItemID.String() < lines[j].InventoryItemID.String()
	})
	return &DeductionResult{OrderID: orderID, Deducted: lines}, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	return item, nil
}

func view(item *models.InventoryItem) *ItemView {
	return &ItemView{InventoryItem: *item, StockStatus: item.StockStatus()}
}
