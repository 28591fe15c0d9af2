package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
)

// Repository exposes the persistence operations the order service needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, limit int, cursor string) ([]models.Order, string, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error
	MarkCancelled(ctx context.Context, id uuid.UUID, reason string) error
	UpdateItem(ctx context.Context, item *models.OrderItem) error
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MenuReader resolves current menu entries when building an order.
type MenuReader interface {
	FindMenuItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuItem, error)
}
