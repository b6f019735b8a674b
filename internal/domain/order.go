package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderStatus is the order lifecycle state. Transitions form a DAG:
// pending -> confirmed -> completed, and pending/confirmed -> cancelled.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled:
		return st, nil
	default:
		return "", ErrUnknownStatus
	}
}

// Terminal statuses freeze the order: no item mutation, no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return to == OrderStatusConfirmed || to == OrderStatusCancelled
	case OrderStatusConfirmed:
		return to == OrderStatusCompleted || to == OrderStatusCancelled
	default:
		return false
	}
}

// Order owns its items. Subtotal, IGV and Total are derived from the item set
// and must be recomputed inside the same write that mutates items.
type Order struct {
	ID        int64           `gorm:"column:id_order;primaryKey;autoIncrement" json:"id"`
	OrderDate datatypes.Date  `gorm:"column:order_date;not null" json:"order_date"`
	Status    OrderStatus     `gorm:"column:status;not null;default:'pending';index" json:"status"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:decimal(16,2);not null" json:"subtotal"`
	IGV       decimal.Decimal `gorm:"column:igv;type:decimal(16,2);not null" json:"igv"`
	Total     decimal.Decimal `gorm:"column:total;type:decimal(16,2);not null" json:"total"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// OrderItem references a product by id; UnitPrice is a snapshot of the
// product price at creation time and never tracks later price changes.
type OrderItem struct {
	ID        int64           `gorm:"column:id_order_item;primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"column:id_order;not null;index" json:"order_id"`
	ProductID int64           `gorm:"column:id_product;not null;index" json:"product_id"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(16,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:decimal(16,2);not null" json:"subtotal"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) Validate() error {
	if i.Quantity <= 0 {
		return ErrNonPositiveQuantity
	}
	if i.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}
