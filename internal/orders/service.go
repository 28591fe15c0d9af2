package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dinesync/backend/internal/realtime"
	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
	pkgerrors "github.com/dinesync/backend/pkg/errors"
	"github.com/dinesync/backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filters ListFilters, limit int, cursor string) (*List, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID uuid.UUID, status enums.OrderItemStatus) (*models.Order, error)
	CompleteItemUnit(ctx context.Context, orderID, itemID uuid.UUID) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      Repository
	menu      MenuReader
	tx        txRunner
	publisher realtime.Publisher
	logg      *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, menu MenuReader, tx txRunner, publisher realtime.Publisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if menu == nil {
		return nil, fmt.Errorf("menu reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("change publisher required")
	}
	return &service{
		repo:      repo,
		menu:      menu,
		tx:        tx,
		publisher: publisher,
		logg:      logg,
	}, nil
}

// Checkout snapshots current menu prices into a new order. Totals are
// computed server-side; unavailable or unknown menu items reject the whole
// order.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		ids = append(ids, item.MenuItemID)
	}

	menuItems, err := s.menu.FindMenuItemsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu items")
	}
	byID := make(map[uuid.UUID]models.MenuItem, len(menuItems))
	for _, item := range menuItems {
		byID[item.ID] = item
	}

	total := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		menuItem, ok := byID[line.MenuItemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown menu item "+line.MenuItemID.String())
		}
		if !menuItem.Available {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, menuItem.Name+" is not available")
		}
		lineTotal := menuItem.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			UnitPrice:  menuItem.Price,
			Quantity:   line.Quantity,
			TotalPrice: lineTotal,
			Status:     enums.OrderItemStatusPending,
		})
	}

	order := &models.Order{
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		TotalAmount:   total,
		Notes:         input.Notes,
		Items:         orderItems,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.publish(ctx, realtime.Change{
		Table:   realtime.TableOrders,
		Kind:    enums.ChangeKindInsert,
		OrderID: order.ID,
	})
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, filters ListFilters, limit int, cursor string) (*List, error) {
	rows, next, err := s.repo.List(ctx, filters, limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &List{Orders: rows, NextCursor: next}, nil
}

// UpdateStatus moves an order forward along its lifecycle. Backward moves and
// jumps are rejected; cancellation goes through Cancel.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the cancel operation to cancel an order")
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = status

	s.publish(ctx, realtime.Change{
		Table:   realtime.TableOrders,
		Kind:    enums.ChangeKindUpdate,
		OrderID: id,
	})
	return order, nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot update payment on a cancelled order")
	}
	if order.PaymentStatus == status {
		return order, nil
	}

	if err := s.repo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}
	order.PaymentStatus = status

	s.publish(ctx, realtime.Change{
		Table:   realtime.TableOrders,
		Kind:    enums.ChangeKindUpdate,
		OrderID: id,
	})
	return order, nil
}

// Cancel stamps the reason and timestamp. No inventory or payment side
// effects are compensated.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error) {
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already in a terminal state")
	}

	if err := s.repo.MarkCancelled(ctx, id, reason); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}

	s.publish(ctx, realtime.Change{
		Table:   realtime.TableOrders,
		Kind:    enums.ChangeKindUpdate,
		OrderID: id,
	})
	return s.Get(ctx, id)
}

// UpdateItemStatus sets one line item's status, then re-evaluates the parent:
// a preparing order whose items are all done advances to ready.
func (s *service) UpdateItemStatus(ctx context.Context, orderID, itemID uuid.UUID, status enums.OrderItemStatus) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal state")
	}

	item := findItem(order, itemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item does not belong to order")
	}

	item.Status = status
	if status == enums.OrderItemStatusCompleted {
		item.CompletedQuantity = item.Quantity
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
	}

	s.publish(ctx, realtime.Change{
		Table:   realtime.TableOrderItems,
		Kind:    enums.ChangeKindUpdate,
		OrderID: orderID,
		ItemID:  &itemID,
	})

	return s.maybeAdvance(ctx, order)
}

// CompleteItemUnit increments a line item's completed count by one, promoting
// the item to completed once every unit is done.
func (s *service) CompleteItemUnit(ctx context.Context, orderID, itemID uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal state")
	}

	item := findItem(order, itemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item does not belong to order")
	}
	if item.CompletedQuantity >= item.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "all units already completed")
	}

	item.CompletedQuantity++
	if item.CompletedQuantity == item.Quantity {
		item.Status = enums.OrderItemStatusCompleted
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete item unit")
	}

	s.publish(ctx, realtime.Change{
		Table:   realtime.TableOrderItems,
		Kind:    enums.ChangeKindUpdate,
		OrderID: orderID,
		ItemID:  &itemID,
	})

	return s.maybeAdvance(ctx, order)
}

// Delete hard-removes an order and its items.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}

	s.publish(ctx, realtime.Change{
		Table:   realtime.TableOrders,
		Kind:    enums.ChangeKindDelete,
		OrderID: id,
	})
	return nil
}

// maybeAdvance applies the derived-status rule after an item mutation and
// returns the fresh order snapshot.
func (s *service) maybeAdvance(ctx context.Context, order *models.Order) (*models.Order, error) {
	fresh, err := s.Get(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	next, advance := DeriveStatus(fresh.Status, fresh.Items)
	if !advance {
		return fresh, nil
	}

	if err := s.repo.UpdateStatus(ctx, fresh.ID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "auto-advance order status")
	}
	fresh.Status = next

	s.publish(ctx, realtime.Change{
		Table:   realtime.TableOrders,
		Kind:    enums.ChangeKindUpdate,
		OrderID: fresh.ID,
	})
	return fresh, nil
}

// publish fans the change out. Failures never fail the mutation; consumers
// recover via the polling fallback.
func (s *service) publish(ctx context.Context, change realtime.Change) {
	if err := s.publisher.PublishChange(ctx, change); err != nil && s.logg != nil {
		fctx := s.logg.WithOrderID(ctx, change.OrderID.String())
		s.logg.Warn(fctx, "order change publish failed")
	}
}

func findItem(order *models.Order, itemID uuid.UUID) *models.OrderItem {
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return &order.Items[i]
		}
	}
	return nil
}
