package aggregates

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/ledazaf/ms-order-api/internal/data/repos"
	types "github.com/ledazaf/ms-order-api/internal/domain"
	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
)

// stockCASAttempts bounds the reserve retry loop: a losing writer re-reads
// the fresh stock+version and either succeeds, fails on stock, or gives up
// with a conflict.
const stockCASAttempts = 3

type OrderAggregateDeps struct {
	Base BaseDeps

	Orders   repos.OrderRepo
	Items    repos.OrderItemRepo
	Products repos.ProductRepo
}

type orderAggregate struct {
	deps OrderAggregateDeps
}

func NewOrderAggregate(deps OrderAggregateDeps) domainagg.OrderAggregate {
	deps.Base = deps.Base.withDefaults()
	return &orderAggregate{deps: deps}
}

func (a *orderAggregate) Contract() domainagg.Contract {
	return domainagg.OrderAggregateContract
}

func (a *orderAggregate) Create(ctx context.Context, in domainagg.CreateOrderInput) (domainagg.CreateOrderResult, error) {
	const op = "Orders.Order.Create"
	var out domainagg.CreateOrderResult

	for _, line := range in.Lines {
		if line.ProductID <= 0 {
			return out, domainagg.NewError(domainagg.CodeValidation, op, "missing product id on order line", nil)
		}
		if line.Quantity <= 0 {
			return out, domainagg.Wrap(domainagg.CodeValidation, op, types.ErrNonPositiveQuantity)
		}
	}
	if a.deps.Orders == nil || a.deps.Items == nil || a.deps.Products == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "order aggregate repos not configured", nil)
	}

	orderDate := in.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		order := &types.Order{
			OrderDate: datatypes.Date(orderDate),
			Status:    types.OrderStatusPending,
		}
		order.RecomputeTotals()
		if _, err := a.deps.Orders.Create(dbc, []*types.Order{order}); err != nil {
			return err
		}

		for _, line := range in.Lines {
			product, err := a.reserveStock(dbc, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			item := &types.OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				Subtotal:  types.ItemSubtotal(product.Price, line.Quantity),
			}
			if _, err := a.deps.Items.Create(dbc, []*types.OrderItem{item}); err != nil {
				return err
			}
		}

		refreshed, err := a.recomputeTotals(dbc, order)
		if err != nil {
			return err
		}
		out.Order = *refreshed
		return nil
	})
	return out, err
}

func (a *orderAggregate) AddItem(ctx context.Context, in domainagg.AddOrderItemInput) (domainagg.OrderTotalsResult, error) {
	const op = "Orders.Order.AddItem"
	var out domainagg.OrderTotalsResult

	if in.OrderID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing order id", nil)
	}
	if in.ProductID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing product id", nil)
	}
	if in.Quantity <= 0 {
		return out, domainagg.Wrap(domainagg.CodeValidation, op, types.ErrNonPositiveQuantity)
	}
	if a.deps.Orders == nil || a.deps.Items == nil || a.deps.Products == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "order aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		order, err := a.deps.Orders.LockByID(dbc, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op,
				fmt.Sprintf("order not found: %d", in.OrderID), nil)
		}
		if err := RequireMutableStatus(order.Status); err != nil {
			return err
		}

		product, err := a.reserveStock(dbc, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}

		item := &types.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  in.Quantity,
			UnitPrice: product.Price,
			Subtotal:  types.ItemSubtotal(product.Price, in.Quantity),
		}
		if _, err := a.deps.Items.Create(dbc, []*types.OrderItem{item}); err != nil {
			return err
		}

		refreshed, err := a.recomputeTotals(dbc, order)
		if err != nil {
			return err
		}
		out = totalsResult(refreshed, item.ID)
		return nil
	})
	return out, err
}

func (a *orderAggregate) RemoveItem(ctx context.Context, in domainagg.RemoveOrderItemInput) (domainagg.OrderTotalsResult, error) {
	const op = "Orders.Order.RemoveItem"
	var out domainagg.OrderTotalsResult

	if in.OrderID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing order id", nil)
	}
	if in.ItemID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing item id", nil)
	}
	if a.deps.Orders == nil || a.deps.Items == nil || a.deps.Products == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "order aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		order, err := a.deps.Orders.LockByID(dbc, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op,
				fmt.Sprintf("order not found: %d", in.OrderID), nil)
		}
		if err := RequireMutableStatus(order.Status); err != nil {
			return err
		}

		item, err := a.deps.Items.GetByOrderAndID(dbc, in.OrderID, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op,
				fmt.Sprintf("order item not found: %d on order %d", in.ItemID, in.OrderID), nil)
		}

		if err := a.deps.Items.Delete(dbc, item.ID); err != nil {
			return err
		}
		if err := a.deps.Products.RestoreStock(dbc, item.ProductID, item.Quantity); err != nil {
			return err
		}

		refreshed, err := a.recomputeTotals(dbc, order)
		if err != nil {
			return err
		}
		out = totalsResult(refreshed, item.ID)
		return nil
	})
	return out, err
}

func (a *orderAggregate) TransitionStatus(ctx context.Context, in domainagg.TransitionOrderStatusInput) (domainagg.TransitionOrderStatusResult, error) {
	const op = "Orders.Order.TransitionStatus"
	var out domainagg.TransitionOrderStatusResult

	if in.OrderID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing order id", nil)
	}
	to, err := types.ParseOrderStatus(string(in.To))
	if err != nil {
		return out, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	if a.deps.Orders == nil || a.deps.Items == nil || a.deps.Products == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "order aggregate repos not configured", nil)
	}

	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		order, err := a.deps.Orders.LockByID(dbc, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op,
				fmt.Sprintf("order not found: %d", in.OrderID), nil)
		}

		current := order.Status
		if in.From != "" && in.From != current {
			return ConflictError(fmt.Sprintf("order status changed (expected=%s actual=%s)", in.From, current))
		}
		if current == to {
			out = domainagg.TransitionOrderStatusResult{OrderID: order.ID, Status: current}
			return nil
		}
		if err := RequireTransitionAllowed(current, to); err != nil {
			return err
		}

		// Cancelling an order releases every reservation it holds; the item
		// rows and totals stay frozen for the record.
		if to == types.OrderStatusCancelled {
			items, err := a.deps.Items.ListByOrder(dbc, order.ID)
			if err != nil {
				return err
			}
			for _, item := range items {
				if err := a.deps.Products.RestoreStock(dbc, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := a.deps.Orders.UpdateFields(dbc, order.ID, map[string]interface{}{
			"status": to,
		}); err != nil {
			return err
		}

		out = domainagg.TransitionOrderStatusResult{OrderID: order.ID, Status: to}
		return nil
	})
	return out, err
}

// reserveStock decrements stock under the product's version guard. A lost
// race re-reads and retries; exhausted retries surface as a concurrent
// modification conflict.
func (a *orderAggregate) reserveStock(dbc dbctx.Context, productID int64, quantity int) (*types.Product, error) {
	for attempt := 0; attempt < stockCASAttempts; attempt++ {
		product, err := a.deps.Products.GetByID(dbc, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domainagg.NewError(domainagg.CodeNotFound, "Orders.Order.ReserveStock",
				fmt.Sprintf("product not found: %d", productID), nil)
		}
		if product.Stock < quantity {
			return nil, InsufficientStockError(
				fmt.Sprintf("product %d stock %d < quantity %d", productID, product.Stock, quantity))
		}
		ok, err := a.deps.Base.CASGuard.ReserveStockByVersion(dbc, product.ID, product.Version, quantity)
		if err != nil {
			return nil, err
		}
		if ok {
			product.Stock -= quantity
			product.Version++
			return product, nil
		}
	}
	return nil, ConflictError(fmt.Sprintf("concurrent stock update on product %d", productID))
}

// recomputeTotals rederives and persists the order's totals from its current
// item set, returning the refreshed order.
func (a *orderAggregate) recomputeTotals(dbc dbctx.Context, order *types.Order) (*types.Order, error) {
	items, err := a.deps.Items.ListByOrder(dbc, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = make([]types.OrderItem, 0, len(items))
	for _, item := range items {
		order.Items = append(order.Items, *item)
	}
	order.RecomputeTotals()
	if err := a.deps.Orders.UpdateFields(dbc, order.ID, map[string]interface{}{
		"subtotal": order.Subtotal,
		"igv":      order.IGV,
		"total":    order.Total,
	}); err != nil {
		return nil, err
	}
	return order, nil
}

func totalsResult(order *types.Order, itemID int64) domainagg.OrderTotalsResult {
	return domainagg.OrderTotalsResult{
		OrderID:  order.ID,
		ItemID:   itemID,
		Subtotal: order.Subtotal,
		IGV:      order.IGV,
		Total:    order.Total,
	}
}
