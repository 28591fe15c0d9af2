// Package tracker maintains the client-side order collection driven by the
// realtime stream, with a polling fallback for when the stream is down.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dinesync/backend/internal/realtime"
	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
	"github.com/dinesync/backend/pkg/logger"
)

// AlertKind distinguishes the operator-facing cues the tracker raises.
type AlertKind string

const (
	// AlertNewOrder fires when a previously unseen order arrives.
	AlertNewOrder AlertKind = "new_order"
	// AlertKitchenConfirm fires when an order moves from pending to confirmed.
	AlertKitchenConfirm AlertKind = "kitchen_confirm"
)

// Alert is one cue raised by the reducer. Both kinds can fire for the same
// frame.
type Alert struct {
	Kind  AlertKind
	Order models.Order
}

// BulkFetcher re-reads the full current order list, used on startup and by
// the polling fallback.
type BulkFetcher interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// Options configures a Tracker.
type Options struct {
	// NewOrderNoticeTTL is how long the transient new-order notice stays set.
	NewOrderNoticeTTL time.Duration
	// PollInterval paces the fallback bulk fetch while disconnected.
	PollInterval time.Duration
	Fetcher      BulkFetcher
	Logger       *logger.Logger
	// AlertBuffer sizes the alert channel. Alerts are dropped, never blocked
	// on, when the consumer falls behind.
	AlertBuffer int
}

// Tracker holds an insertion-ordered order collection keyed by id. Incoming
// frames carry full snapshots, so applying the same frame twice is a no-op:
// replace-by-id is idempotent.
type Tracker struct {
	mu     sync.Mutex
	ids    []uuid.UUID
	byID   map[uuid.UUID]models.Order
	notice *uuid.UUID
	timer  *time.Timer

	connected bool

	opts   Options
	alerts chan Alert
}

// New builds an empty Tracker.
func New(opts Options) *Tracker {
	if opts.NewOrderNoticeTTL <= 0 {
		opts.NewOrderNoticeTTL = 5 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 15 * time.Second
	}
	if opts.AlertBuffer <= 0 {
		opts.AlertBuffer = 16
	}
	return &Tracker{
		byID:   make(map[uuid.UUID]models.Order),
		opts:   opts,
		alerts: make(chan Alert, opts.AlertBuffer),
	}
}

// Alerts returns the cue channel.
func (t *Tracker) Alerts() <-chan Alert {
	return t.alerts
}

// Replace swaps the whole collection for the given list, preserving the
// list's order. Used for the initial bulk fetch and every poll.
func (t *Tracker) Replace(orders []models.Order) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ids = make([]uuid.UUID, 0, len(orders))
	t.byID = make(map[uuid.UUID]models.Order, len(orders))
	for _, order := range orders {
		t.ids = append(t.ids, order.ID)
		t.byID[order.ID] = order
	}
}

// Apply folds one stream frame into the collection. Snapshots are
// authoritative as of their fetch time; deltas are never applied.
func (t *Tracker) Apply(frame realtime.Frame) {
	switch frame.Type {
	case enums.RealtimeEventOrderUpdate:
		if frame.Order == nil {
			return
		}
		t.applyOrder(*frame.Order, frame.Event == enums.ChangeKindInsert)
	case enums.RealtimeEventOrderItemUpdate:
		if frame.Order == nil {
			return
		}
		// Item events replace the owning order wholesale.
		t.applyOrder(*frame.Order, false)
	case enums.RealtimeEventOrderDelete:
		if frame.OrderID == nil {
			return
		}
		t.remove(*frame.OrderID)
	}
}

func (t *Tracker) applyOrder(order models.Order, isInsert bool) {
	t.mu.Lock()

	previous, exists := t.byID[order.ID]
	t.byID[order.ID] = order

	var fired []Alert

	if exists {
		if previous.Status == enums.OrderStatusPending && order.Status == enums.OrderStatusConfirmed {
			fired = append(fired, Alert{Kind: AlertKitchenConfirm, Order: order})
		}
	} else {
		// Newest orders surface first.
		t.ids = append([]uuid.UUID{order.ID}, t.ids...)
		if isInsert {
			fired = append(fired, Alert{Kind: AlertNewOrder, Order: order})
			t.setNoticeLocked(order.ID)
		}
	}

	t.mu.Unlock()

	for _, alert := range fired {
		t.raise(alert)
	}
}

func (t *Tracker) remove(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byID[id]; !ok {
		return
	}
	delete(t.byID, id)
	for i, existing := range t.ids {
		if existing == id {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			break
		}
	}
	if t.notice != nil && *t.notice == id {
		t.clearNoticeLocked()
	}
}

// Orders returns the collection in insertion order, newest inserts first.
func (t *Tracker) Orders() []models.Order {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.Order, 0, len(t.ids))
	for _, id := range t.ids {
		out = append(out, t.byID[id])
	}
	return out
}

// Get returns one order by id.
func (t *Tracker) Get(id uuid.UUID) (models.Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	order, ok := t.byID[id]
	return order, ok
}

// NewOrderNotice reports the order id behind the transient new-order banner,
// if one is currently showing.
func (t *Tracker) NewOrderNotice() (uuid.UUID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.notice == nil {
		return uuid.Nil, false
	}
	return *t.notice, true
}

// SetConnected flips the stream-connected flag consulted by the polling loop.
func (t *Tracker) SetConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = connected
}

func (t *Tracker) isConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// RunPolling re-runs the bulk fetch on the configured interval whenever the
// stream is not connected. It blocks until ctx is canceled.
func (t *Tracker) RunPolling(ctx context.Context) {
	if t.opts.Fetcher == nil {
		return
	}

	ticker := time.NewTicker(t.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.isConnected() {
				continue
			}
			orders, err := t.opts.Fetcher.ListOrders(ctx)
			if err != nil {
				if t.opts.Logger != nil {
					t.opts.Logger.Error(ctx, "poll order list", err)
				}
				continue
			}
			t.Replace(orders)
		}
	}
}

// Close stops the notice timer. The alert channel stays open; readers should
// stop via their own context.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearNoticeLocked()
}

func (t *Tracker) setNoticeLocked(id uuid.UUID) {
	if t.timer != nil {
		t.timer.Stop()
	}
	notice := id
	t.notice = &notice
	t.timer = time.AfterFunc(t.opts.NewOrderNoticeTTL, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.notice != nil && *t.notice == notice {
			t.notice = nil
			t.timer = nil
		}
	})
}

func (t *Tracker) clearNoticeLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.notice = nil
}

func (t *Tracker) raise(alert Alert) {
	select {
	case t.alerts <- alert:
	default:
		if t.opts.Logger != nil {
			t.opts.Logger.Warn(context.Background(), "dropping tracker alert, consumer too slow")
		}
	}
}
