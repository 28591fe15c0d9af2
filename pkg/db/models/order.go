package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinesync/backend/pkg/enums"
)

// Order is a customer order placed through the checkout flow.
type Order struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber        int64               `gorm:"column:order_number;autoIncrement;uniqueIndex" json:"order_number"`
	CustomerName       string              `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerPhone      string              `gorm:"column:customer_phone" json:"customer_phone"`
	Status             enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	PaymentStatus      enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'" json:"payment_status"`
	TotalAmount        decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	Notes              *string             `gorm:"column:notes" json:"notes,omitempty"`
	CancellationReason *string             `gorm:"column:cancellation_reason" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time          `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	Items              []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// OrderItem captures the snapshot of one ordered menu item.
type OrderItem struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID           uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	MenuItemID        uuid.UUID             `gorm:"column:menu_item_id;type:uuid;not null" json:"menu_item_id"`
	Name              string                `gorm:"column:name;not null" json:"name"`
	UnitPrice         decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	Quantity          int                   `gorm:"column:quantity;not null" json:"quantity"`
	CompletedQuantity int                   `gorm:"column:completed_quantity;not null;default:0" json:"completed_quantity"`
	TotalPrice        decimal.Decimal       `gorm:"column:total_price;type:numeric(12,2);not null" json:"total_price"`
	Status            enums.OrderItemStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
