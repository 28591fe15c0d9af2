package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
	"github.com/dinesync/backend/pkg/logger"
	"github.com/dinesync/backend/pkg/metrics"
)

// OrderFetcher re-reads the full denormalized order after a change.
type OrderFetcher interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type changeSubscriber interface {
	SubscribeChanges(ctx context.Context) (<-chan Change, func() error, error)
}

// Relay bridges the Redis change feed onto a long-lived SSE response.
type Relay struct {
	subscriber changeSubscriber
	orders     OrderFetcher
	logg       *logger.Logger
	metrics    *metrics.RealtimeMetrics
	heartbeat  time.Duration
}

// NewRelay builds the SSE relay.
func NewRelay(subscriber changeSubscriber, orders OrderFetcher, logg *logger.Logger, m *metrics.RealtimeMetrics, heartbeat time.Duration) (*Relay, error) {
	if subscriber == nil {
		return nil, fmt.Errorf("change subscriber required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order fetcher required")
	}
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &Relay{
		subscriber: subscriber,
		orders:     orders,
		logg:       logg,
		metrics:    m,
		heartbeat:  heartbeat,
	}, nil
}

// ServeHTTP streams order change frames until the client disconnects. A failed
// re-fetch inside a change handler is logged and the notification dropped; the
// stream itself stays open.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := req.Context()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	changes, closeSub, err := r.subscriber.SubscribeChanges(ctx)
	if err != nil {
		if r.logg != nil {
			r.logg.Error(ctx, "subscribe order changes", err)
		}
		return
	}
	defer func() {
		if err := closeSub(); err != nil && r.logg != nil {
			r.logg.Error(ctx, "close change subscription", err)
		}
	}()

	r.metrics.ConnOpened()
	defer r.metrics.ConnClosed()

	r.emit(ctx, w, flusher, Frame{
		Type:      enums.RealtimeEventConnected,
		Message:   "order stream established",
		Timestamp: time.Now().UTC(),
	})

	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.emit(ctx, w, flusher, Frame{
				Type:      enums.RealtimeEventHeartbeat,
				Timestamp: time.Now().UTC(),
			})
		case change, ok := <-changes:
			if !ok {
				return
			}
			frame, ok := r.frameFor(ctx, change)
			if !ok {
				continue
			}
			r.emit(ctx, w, flusher, frame)
		}
	}
}

// frameFor maps one change notification onto its outbound frame, re-fetching
// the full order snapshot. Deletions skip the fetch.
func (r *Relay) frameFor(ctx context.Context, change Change) (Frame, bool) {
	now := time.Now().UTC()

	if change.Table == TableOrders && change.Kind == enums.ChangeKindDelete {
		orderID := change.OrderID
		return Frame{
			Type:      enums.RealtimeEventOrderDelete,
			Event:     change.Kind,
			OrderID:   &orderID,
			Timestamp: now,
		}, true
	}

	order, err := r.orders.FindByID(ctx, change.OrderID)
	if err != nil {
		if r.logg != nil {
			fctx := r.logg.WithOrderID(ctx, change.OrderID.String())
			r.logg.Error(fctx, "re-fetch order after change", err)
		}
		r.metrics.EventDropped()
		return Frame{}, false
	}

	eventType := enums.RealtimeEventOrderUpdate
	if change.Table == TableOrderItems {
		eventType = enums.RealtimeEventOrderItemUpdate
	}

	return Frame{
		Type:      eventType,
		Event:     change.Kind,
		Order:     order,
		ItemID:    change.ItemID,
		Timestamp: now,
	}, true
}

func (r *Relay) emit(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		if r.logg != nil {
			r.logg.Error(ctx, "marshal stream frame", err)
		}
		return
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return
	}
	flusher.Flush()
	r.metrics.EventEmitted(frame.Type.String())
}
