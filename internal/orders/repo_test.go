package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER,
  customer_name TEXT NOT NULL,
  customer_phone TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  total_amount NUMERIC NOT NULL DEFAULT 0,
  notes TEXT,
  cancellation_reason TEXT,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsTable := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  menu_item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  quantity INTEGER NOT NULL,
  completed_quantity INTEGER NOT NULL DEFAULT 0,
  total_price NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(itemsTable).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, createdAt time.Time, status enums.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:           uuid.New(),
		CustomerName: "Walk-in",
		Status:       status,
		TotalAmount:  decimal.RequireFromString("100.00"),
		Items: []models.OrderItem{{
			ID:         uuid.New(),
			MenuItemID: uuid.New(),
			Name:       "Dal",
			UnitPrice:  decimal.RequireFromString("100.00"),
			Quantity:   1,
			TotalPrice: decimal.RequireFromString("100.00"),
			Status:     enums.OrderItemStatusPending,
		}},
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, time.Now().UTC(), enums.OrderStatusPending)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Dal", found.Items[0].Name)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		seedOrder(t, db, base.Add(time.Duration(i)*time.Minute), enums.OrderStatusPending)
	}
	confirmed := seedOrder(t, db, base.Add(10*time.Minute), enums.OrderStatusConfirmed)

	status := enums.OrderStatusConfirmed
	rows, next, err := repo.List(ctx, ListFilters{Status: &status}, 10, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, confirmed.ID, rows[0].ID)
	assert.Empty(t, next)

	// First page of two, newest first, with a cursor for the rest.
	rows, next, err = repo.List(ctx, ListFilters{}, 2, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, confirmed.ID, rows[0].ID)
	require.NotEmpty(t, next)

	rest, last, err := repo.List(ctx, ListFilters{}, 10, next)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.Empty(t, last)
}

func TestRepositoryStatusUpdates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, time.Now().UTC(), enums.OrderStatusPending)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusConfirmed))
	require.NoError(t, repo.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusPaid))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, found.Status)
	assert.Equal(t, enums.PaymentStatusPaid, found.PaymentStatus)
}

func TestRepositoryMarkCancelled(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, time.Now().UTC(), enums.OrderStatusPreparing)
	require.NoError(t, repo.MarkCancelled(ctx, order.ID, "kitchen closed"))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, found.Status)
	require.NotNil(t, found.CancellationReason)
	assert.Equal(t, "kitchen closed", *found.CancellationReason)
	assert.NotNil(t, found.CancelledAt)
}

func TestRepositoryUpdateItemAndDelete(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, time.Now().UTC(), enums.OrderStatusPreparing)
	item := order.Items[0]
	item.Status = enums.OrderItemStatusReady
	item.CompletedQuantity = 1
	require.NoError(t, repo.UpdateItem(ctx, &item))

	found, err := repo.FindItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderItemStatusReady, found.Status)
	assert.Equal(t, 1, found.CompletedQuantity)

	require.NoError(t, repo.Delete(ctx, order.ID))
	_, err = repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.FindItem(ctx, item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
