package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dinesync/backend/pkg/enums"
)

// Table names the row source behind a change notification.
type Table string

const (
	TableOrders     Table = "orders"
	TableOrderItems Table = "order_items"
)

// Change is the row-level notification services publish after every order
// mutation. It carries identifiers only; consumers re-fetch current state.
type Change struct {
	Table      Table            `json:"table"`
	Kind       enums.ChangeKind `json:"kind"`
	OrderID    uuid.UUID        `json:"order_id"`
	ItemID     *uuid.UUID       `json:"item_id,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Publisher fans a change notification out to all relay subscribers.
type Publisher interface {
	PublishChange(ctx context.Context, change Change) error
}
