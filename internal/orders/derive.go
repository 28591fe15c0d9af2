package orders

import (
	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
)

// DeriveStatus evaluates whether an order in preparing should auto-advance to
// ready: it does once every line item is ready or completed. The second
// return reports whether an advance applies.
func DeriveStatus(current enums.OrderStatus, items []models.OrderItem) (enums.OrderStatus, bool) {
	if current != enums.OrderStatusPreparing || len(items) == 0 {
		return current, false
	}
	for _, item := range items {
		if !item.Status.IsDone() {
			return current, false
		}
	}
	return enums.OrderStatusReady, true
}
