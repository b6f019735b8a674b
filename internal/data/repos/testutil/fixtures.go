package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/ledazaf/ms-order-api/internal/domain"
)

// MustDecimal parses a decimal literal or fails the test.
func MustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// CreateCategory inserts a category row and returns it.
func CreateCategory(t *testing.T, tx *gorm.DB, name string) *types.Category {
	t.Helper()
	c := &types.Category{Name: name}
	if err := tx.Create(c).Error; err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return c
}

// CreateProduct inserts a product row and returns it.
func CreateProduct(t *testing.T, tx *gorm.DB, categoryID int64, name, price string, stock int) *types.Product {
	t.Helper()
	p := &types.Product{
		Name:       name,
		Price:      MustDecimal(t, price),
		Stock:      stock,
		CategoryID: categoryID,
	}
	if err := tx.Create(p).Error; err != nil {
		t.Fatalf("create product %q: %v", name, err)
	}
	return p
}

// CreateOrder inserts an order row in the given status and returns it.
func CreateOrder(t *testing.T, tx *gorm.DB, status types.OrderStatus) *types.Order {
	t.Helper()
	o := &types.Order{
		OrderDate: datatypes.Date(time.Now().UTC()),
		Status:    status,
	}
	o.RecomputeTotals()
	if err := tx.Create(o).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

// CreateOrderItem inserts an item row for an existing order/product pair.
func CreateOrderItem(t *testing.T, tx *gorm.DB, orderID, productID int64, qty int, unitPrice string) *types.OrderItem {
	t.Helper()
	price := MustDecimal(t, unitPrice)
	it := &types.OrderItem{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: price,
		Subtotal:  types.ItemSubtotal(price, qty),
	}
	if err := tx.Create(it).Error; err != nil {
		t.Fatalf("create order item: %v", err)
	}
	return it
}
