package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
)

// Frame is one JSON payload emitted on the SSE stream. Orders are always
// fully denormalized snapshots, never deltas.
type Frame struct {
	Type      enums.RealtimeEventType `json:"type"`
	Event     enums.ChangeKind        `json:"event,omitempty"`
	Order     *models.Order           `json:"order,omitempty"`
	OrderID   *uuid.UUID              `json:"order_id,omitempty"`
	ItemID    *uuid.UUID              `json:"item_id,omitempty"`
	Message   string                  `json:"message,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}
