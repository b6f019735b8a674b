package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	redisclient "github.com/ledazaf/ms-order-api/internal/clients/redis"
	"github.com/ledazaf/ms-order-api/internal/data/aggregates"
	"github.com/ledazaf/ms-order-api/internal/data/repos"
	types "github.com/ledazaf/ms-order-api/internal/domain"
	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

type OrderService interface {
	Create(ctx context.Context, orderDate time.Time, lines []domainagg.OrderLine) (types.Order, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Order, error)
	List(dbc dbctx.Context, statuses []types.OrderStatus) ([]*types.Order, error)
	AddItem(ctx context.Context, orderID, productID int64, quantity int) (domainagg.OrderTotalsResult, error)
	RemoveItem(ctx context.Context, orderID, itemID int64) (domainagg.OrderTotalsResult, error)
	TransitionStatus(ctx context.Context, orderID int64, from, to types.OrderStatus) (domainagg.TransitionOrderStatusResult, error)
}

type orderService struct {
	db     *gorm.DB
	log    *logger.Logger
	orders repos.OrderRepo
	items  repos.OrderItemRepo
	agg    domainagg.OrderAggregate
	cache  redisclient.ProductCache
}

func NewOrderService(
	db *gorm.DB,
	baseLog *logger.Logger,
	orders repos.OrderRepo,
	items repos.OrderItemRepo,
	agg domainagg.OrderAggregate,
	cache redisclient.ProductCache,
) OrderService {
	return &orderService{
		db:     db,
		log:    baseLog.With("service", "OrderService"),
		orders: orders,
		items:  items,
		agg:    agg,
		cache:  cache,
	}
}

func (s *orderService) Create(ctx context.Context, orderDate time.Time, lines []domainagg.OrderLine) (types.Order, error) {
	res, err := s.agg.Create(ctx, domainagg.CreateOrderInput{
		OrderDate: orderDate,
		Lines:     lines,
	})
	if err != nil {
		return types.Order{}, err
	}
	s.invalidateLineProducts(ctx, lines)
	s.log.Info("order created", "id", res.Order.ID, "lines", len(lines), "total", res.Order.Total)
	return res.Order, nil
}

func (s *orderService) GetByID(dbc dbctx.Context, id int64) (*types.Order, error) {
	const op = "OrderService.GetByID"
	row, err := s.orders.GetWithItems(dbc, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op,
			fmt.Sprintf("order not found: %d", id), nil)
	}
	return row, nil
}

func (s *orderService) List(dbc dbctx.Context, statuses []types.OrderStatus) ([]*types.Order, error) {
	const op = "OrderService.List"
	var (
		rows []*types.Order
		err  error
	)
	if len(statuses) > 0 {
		rows, err = s.orders.ListByStatus(dbc, statuses)
	} else {
		rows, err = s.orders.List(dbc)
	}
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return rows, nil
}

func (s *orderService) AddItem(ctx context.Context, orderID, productID int64, quantity int) (domainagg.OrderTotalsResult, error) {
	res, err := s.agg.AddItem(ctx, domainagg.AddOrderItemInput{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		return res, err
	}
	s.cache.Invalidate(ctx, productID)
	s.log.Info("order item added", "order_id", orderID, "product_id", productID, "quantity", quantity)
	return res, nil
}

func (s *orderService) RemoveItem(ctx context.Context, orderID, itemID int64) (domainagg.OrderTotalsResult, error) {
	item, err := s.items.GetByOrderAndID(dbctx.Context{Ctx: ctx}, orderID, itemID)
	if err != nil {
		return domainagg.OrderTotalsResult{}, aggregates.MapError("OrderService.RemoveItem", err)
	}
	res, err := s.agg.RemoveItem(ctx, domainagg.RemoveOrderItemInput{
		OrderID: orderID,
		ItemID:  itemID,
	})
	if err != nil {
		return res, err
	}
	if item != nil {
		s.cache.Invalidate(ctx, item.ProductID)
	}
	s.log.Info("order item removed", "order_id", orderID, "item_id", itemID)
	return res, nil
}

func (s *orderService) TransitionStatus(ctx context.Context, orderID int64, from, to types.OrderStatus) (domainagg.TransitionOrderStatusResult, error) {
	res, err := s.agg.TransitionStatus(ctx, domainagg.TransitionOrderStatusInput{
		OrderID: orderID,
		From:    from,
		To:      to,
	})
	if err != nil {
		return res, err
	}
	// A cancel releases stock, which stales any cached product the order held.
	if res.Status == types.OrderStatusCancelled {
		items, err := s.items.ListByOrder(dbctx.Context{Ctx: ctx}, orderID)
		if err == nil {
			ids := make([]int64, 0, len(items))
			for _, it := range items {
				ids = append(ids, it.ProductID)
			}
			s.cache.Invalidate(ctx, ids...)
		}
	}
	s.log.Info("order status changed", "order_id", orderID, "status", res.Status)
	return res, nil
}

func (s *orderService) invalidateLineProducts(ctx context.Context, lines []domainagg.OrderLine) {
	if len(lines) == 0 {
		return
	}
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	s.cache.Invalidate(ctx, ids...)
}
