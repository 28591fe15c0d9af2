package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
	pkgerrors "github.com/dinesync/backend/pkg/errors"
)

type stubInventoryRepo struct {
	mu          sync.Mutex
	items       map[uuid.UUID]*models.InventoryItem
	ingredients []OrderIngredient
	failDeduct  map[uuid.UUID]error
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{items: make(map[uuid.UUID]*models.InventoryItem)}
}

func (s *stubInventoryRepo) add(item models.InventoryItem) uuid.UUID {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = &item
	return item.ID
}

func (s *stubInventoryRepo) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	item.ID = s.add(*item)
	return item, nil
}

func (s *stubInventoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *item
	return &cloned, nil
}

func (s *stubInventoryRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.InventoryItem, error) {
	out := make([]models.InventoryItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubInventoryRepo) List(ctx context.Context) ([]models.InventoryItem, error) {
	out := make([]models.InventoryItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *stubInventoryRepo) Save(ctx context.Context, item *models.InventoryItem) error {
	cloned := *item
	s.items[item.ID] = &cloned
	return nil
}

func (s *stubInventoryRepo) ApplyDeduction(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failDeduct[id]; ok {
		return err
	}
	item, ok := s.items[id]
	if !ok || item.CurrentStock.LessThan(quantity) {
		return gorm.ErrRecordNotFound
	}
	item.CurrentStock = item.CurrentStock.Sub(quantity)
	return nil
}

func (s *stubInventoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.items, id)
	return nil
}

func (s *stubInventoryRepo) FindIngredientsForOrder(ctx context.Context, orderID uuid.UUID) ([]OrderIngredient, error) {
	return s.ingredients, nil
}

func qty(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func newInventoryService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	require.NoError(t, err)
	return svc
}

func TestStockStatusClassification(t *testing.T) {
	repo := newStubInventoryRepo()
	svc := newInventoryService(t, repo)

	cases := []struct {
		name    string
		current string
		minimum string
		want    enums.StockStatus
	}{
		{"at half of minimum", "5", "10", enums.StockStatusLowStock},
		{"exactly at minimum", "10", "10", enums.StockStatusLowStock},
		{"zero stock", "0", "10", enums.StockStatusOutOfStock},
		{"above minimum", "11", "10", enums.StockStatusInStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := repo.add(models.InventoryItem{
				Name:         tc.name,
				CurrentStock: qty(tc.current),
				MinimumStock: qty(tc.minimum),
			})
			got, err := svc.Get(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.StockStatus)
		})
	}
}

func TestRestockRequiresPositiveQuantity(t *testing.T) {
	repo := newStubInventoryRepo()
	id := repo.add(models.InventoryItem{Name: "Rice", CurrentStock: qty("4")})
	svc := newInventoryService(t, repo)

	_, err := svc.Restock(context.Background(), id, RestockInput{Quantity: qty("-1")})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	item, err := svc.Restock(context.Background(), id, RestockInput{Quantity: qty("6")})
	require.NoError(t, err)
	assert.True(t, item.CurrentStock.Equal(qty("10")))
}

func TestDeductAggregatesAcrossLineItems(t *testing.T) {
	repo := newStubInventoryRepo()
	flour := repo.add(models.InventoryItem{Name: "Flour", CurrentStock: qty("10")})
	oil := repo.add(models.InventoryItem{Name: "Oil", CurrentStock: qty("5")})

	// Two line items overlap on flour: 2*1.5 + 1*2 = 5 required.
	repo.ingredients = []OrderIngredient{
		{InventoryItemID: flour, Quantity: 2, QuantityPerUnit: qty("1.5")},
		{InventoryItemID: flour, Quantity: 1, QuantityPerUnit: qty("2")},
		{InventoryItemID: oil, Quantity: 2, QuantityPerUnit: qty("0.5")},
	}

	svc := newInventoryService(t, repo)
	result, err := svc.DeductForOrder(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, result.Deducted, 2)

	flourItem, _ := repo.FindByID(context.Background(), flour)
	assert.True(t, flourItem.CurrentStock.Equal(qty("5")), "got %s", flourItem.CurrentStock)
	oilItem, _ := repo.FindByID(context.Background(), oil)
	assert.True(t, oilItem.CurrentStock.Equal(qty("4")))
}

func TestDeductRejectsOnAnyShortfallWithoutPartialApply(t *testing.T) {
	repo := newStubInventoryRepo()
	flour := repo.add(models.InventoryItem{Name: "Flour", CurrentStock: qty("10")})
	oil := repo.add(models.InventoryItem{Name: "Oil", CurrentStock: qty("0.5")})

	repo.ingredients = []OrderIngredient{
		{InventoryItemID: flour, Quantity: 1, QuantityPerUnit: qty("2")},
		{InventoryItemID: oil, Quantity: 2, QuantityPerUnit: qty("1")},
	}

	svc := newInventoryService(t, repo)
	_, err := svc.DeductForOrder(context.Background(), uuid.New())
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, appErr.Code())

	shortfalls, ok := appErr.Details().([]Shortfall)
	require.True(t, ok)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, oil, shortfalls[0].InventoryItemID)
	assert.True(t, shortfalls[0].Required.Equal(qty("2")))
	assert.True(t, shortfalls[0].Available.Equal(qty("0.5")))

	// Nothing was applied: the sufficient item keeps its stock.
	flourItem, _ := repo.FindByID(context.Background(), flour)
	assert.True(t, flourItem.CurrentStock.Equal(qty("10")))
}

func TestDeductReportsFailureWithoutRollback(t *testing.T) {
	repo := newStubInventoryRepo()
	flour := repo.add(models.InventoryItem{Name: "Flour", CurrentStock: qty("10")})
	oil := repo.add(models.InventoryItem{Name: "Oil", CurrentStock: qty("10")})
	repo.failDeduct = map[uuid.UUID]error{oil: errors.New("connection reset")}

	repo.ingredients = []OrderIngredient{
		{InventoryItemID: flour, Quantity: 1, QuantityPerUnit: qty("2")},
		{InventoryItemID: oil, Quantity: 1, QuantityPerUnit: qty("3")},
	}

	svc := newInventoryService(t, repo)
	_, err := svc.DeductForOrder(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	// The update that succeeded is not compensated.
	flourItem, _ := repo.FindByID(context.Background(), flour)
	assert.True(t, flourItem.CurrentStock.Equal(qty("8")))
	oilItem, _ := repo.FindByID(context.Background(), oil)
	assert.True(t, oilItem.CurrentStock.Equal(qty("10")))
}

func TestDeductNoIngredientsIsANoOp(t *testing.T) {
	repo := newStubInventoryRepo()
	svc := newInventoryService(t, repo)

	result, err := svc.DeductForOrder(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, result.Deducted)
}

func TestLowStockIncludesOutOfStock(t *testing.T) {
	repo := newStubInventoryRepo()
	repo.add(models.InventoryItem{Name: "Rice", CurrentStock: qty("20"), MinimumStock: qty("5")})
	repo.add(models.InventoryItem{Name: "Salt", CurrentStock: qty("2"), MinimumStock: qty("5")})
	repo.add(models.InventoryItem{Name: "Ghee", CurrentStock: qty("0"), MinimumStock: qty("5")})

	svc := newInventoryService(t, repo)
	low, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	assert.Len(t, low, 2)
}
