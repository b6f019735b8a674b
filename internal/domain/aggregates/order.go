package aggregates

import (
	"context"
	"time"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	"github.com/shopspring/decimal"
)

var OrderAggregateContract = Contract{
	Name:             "Orders.OrderAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns order item set, subtotal/igv/total consistency and stock reservation across concurrent orders.",
}

// OrderAggregate owns order item mutation and total invariants.
//
// Every write serializes on the order row; stock reservation against shared
// products uses version-checked compare-and-set. Failures return
// *aggregates.Error with codes: CodeValidation, CodeNotFound,
// CodeInsufficientStock, CodeInvalidTransition, CodeConcurrentModification,
// CodeRetryable, CodeInternal.
type OrderAggregate interface {
	Aggregate

	// Create opens an order in pending status, optionally pre-populated with
	// lines. Either every line is applied (stock reserved, totals computed)
	// or the order is not created at all.
	Create(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error)

	// AddItem appends an item with the product's current price as snapshot,
	// reserves stock and recomputes totals.
	AddItem(ctx context.Context, in AddOrderItemInput) (OrderTotalsResult, error)

	// RemoveItem deletes an item, restores the reserved stock and recomputes
	// totals.
	RemoveItem(ctx context.Context, in RemoveOrderItemInput) (OrderTotalsResult, error)

	// TransitionStatus moves the order along the lifecycle DAG. Transitioning
	// to cancelled releases the stock reserved by the order's items.
	TransitionStatus(ctx context.Context, in TransitionOrderStatusInput) (TransitionOrderStatusResult, error)
}

type OrderLine struct {
	ProductID int64
	Quantity  int
}

type CreateOrderInput struct {
	OrderDate time.Time
	Lines     []OrderLine
}

type CreateOrderResult struct {
	Order types.Order
}

type AddOrderItemInput struct {
	OrderID   int64
	ProductID int64
	Quantity  int
}

type RemoveOrderItemInput struct {
	OrderID int64
	ItemID  int64
}

// OrderTotalsResult reports the order's derived totals after an item write.
type OrderTotalsResult struct {
	OrderID  int64
	ItemID   int64
	Subtotal decimal.Decimal
	IGV      decimal.Decimal
	Total    decimal.Decimal
}

type TransitionOrderStatusInput struct {
	OrderID int64
	// From, when non-empty, guards against concurrent transitions: the
	// current status must still equal it.
	From types.OrderStatus
	To   types.OrderStatus
}

type TransitionOrderStatusResult struct {
	OrderID int64
	Status  types.OrderStatus
}
