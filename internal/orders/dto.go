package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
)

// CheckoutItemInput is one requested line on a new order.
type CheckoutItemInput struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,gt=0"`
}

// CheckoutInput captures everything needed to place an order. Prices are
// never accepted from the caller; they are snapshotted from the menu.
type CheckoutInput struct {
	CustomerName  string              `json:"customer_name" validate:"required,max=120"`
	CustomerPhone string              `json:"customer_phone" validate:"omitempty,max=32"`
	Notes         *string             `json:"notes" validate:"omitempty,max=500"`
	Items         []CheckoutItemInput `json:"items" validate:"required,min=1,dive"`
}

// ListFilters describe the inputs supported by the order list.
type ListFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	DateFrom      *time.Time
	DateTo        *time.Time
	Query         string
}

// List wraps the paginated orders plus the next page cursor.
type List struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// StatusUpdateInput carries a requested order status change.
type StatusUpdateInput struct {
	Status enums.OrderStatus `json:"status" validate:"required"`
}

// PaymentUpdateInput carries a requested payment status change.
type PaymentUpdateInput struct {
	PaymentStatus enums.PaymentStatus `json:"payment_status" validate:"required"`
}

// CancelInput carries the cancellation reason.
type CancelInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ItemStatusInput carries a requested line item status change.
type ItemStatusInput struct {
	Status enums.OrderItemStatus `json:"status" validate:"required"`
}
