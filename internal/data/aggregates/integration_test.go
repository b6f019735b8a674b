package aggregates_test

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/ledazaf/ms-order-api/internal/data/aggregates"
	"github.com/ledazaf/ms-order-api/internal/data/repos"
	repotest "github.com/ledazaf/ms-order-api/internal/data/repos/testutil"
	types "github.com/ledazaf/ms-order-api/internal/domain"
	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
)

type integrationEnv struct {
	db      *gorm.DB
	catalog domainagg.CatalogAggregate
	orders  domainagg.OrderAggregate

	categoryRepo repos.CategoryRepo
	productRepo  repos.ProductRepo
	orderRepo    repos.OrderRepo
	itemRepo     repos.OrderItemRepo
}

func newIntegrationEnv(t *testing.T) *integrationEnv {
	t.Helper()
	db := repotest.OpenTestDB(t)
	repotest.CleanTables(t, db)
	log := repotest.TestLogger(t)

	env := &integrationEnv{
		db:           db,
		categoryRepo: repos.NewCategoryRepo(db, log),
		productRepo:  repos.NewProductRepo(db, log),
		orderRepo:    repos.NewOrderRepo(db, log),
		itemRepo:     repos.NewOrderItemRepo(db, log),
	}
	base := aggregates.BaseDeps{DB: db, Log: log}
	env.catalog = aggregates.NewCatalogAggregate(aggregates.CatalogAggregateDeps{
		Base:       base,
		Categories: env.categoryRepo,
		Products:   env.productRepo,
		Items:      env.itemRepo,
	})
	env.orders = aggregates.NewOrderAggregate(aggregates.OrderAggregateDeps{
		Base:     base,
		Orders:   env.orderRepo,
		Items:    env.itemRepo,
		Products: env.productRepo,
	})
	return env
}

func (e *integrationEnv) dbc() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}

func (e *integrationEnv) seedProduct(t *testing.T, price string, stock int) int64 {
	t.Helper()
	cat := &types.Category{Name: "drinks"}
	if _, err := e.categoryRepo.Create(e.dbc(), []*types.Category{cat}); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	p := &types.Product{
		Name:       "coffee",
		Price:      repotest.MustDecimal(t, price),
		Stock:      stock,
		CategoryID: cat.ID,
	}
	if _, err := e.productRepo.Create(e.dbc(), []*types.Product{p}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p.ID
}

func TestOrderLifecycleIntegration(t *testing.T) {
	env := newIntegrationEnv(t)
	prodID := env.seedProduct(t, "10.00", 10)

	created, err := env.orders.Create(context.Background(), domainagg.CreateOrderInput{
		Lines: []domainagg.OrderLine{{ProductID: prodID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.Order.Total.Equal(repotest.MustDecimal(t, "23.60")) {
		t.Fatalf("total = %s, want 23.60", created.Order.Total)
	}

	if _, err := env.orders.TransitionStatus(context.Background(), domainagg.TransitionOrderStatusInput{
		OrderID: created.Order.ID, To: types.OrderStatusConfirmed,
	}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := env.orders.TransitionStatus(context.Background(), domainagg.TransitionOrderStatusInput{
		OrderID: created.Order.ID, To: types.OrderStatusCompleted,
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Completed orders are frozen.
	if _, err := env.orders.AddItem(context.Background(), domainagg.AddOrderItemInput{
		OrderID: created.Order.ID, ProductID: prodID, Quantity: 1,
	}); !domainagg.IsCode(err, domainagg.CodeInvalidTransition) {
		t.Fatalf("expected invalid_transition on completed order, got %v", err)
	}

	p, err := env.productRepo.GetByID(env.dbc(), prodID)
	if err != nil {
		t.Fatalf("read product: %v", err)
	}
	if p.Stock != 8 {
		t.Fatalf("stock = %d, want 8", p.Stock)
	}
}

func TestOrderCancelRestoresStockIntegration(t *testing.T) {
	env := newIntegrationEnv(t)
	prodID := env.seedProduct(t, "10.00", 10)

	created, err := env.orders.Create(context.Background(), domainagg.CreateOrderInput{
		Lines: []domainagg.OrderLine{{ProductID: prodID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.orders.TransitionStatus(context.Background(), domainagg.TransitionOrderStatusInput{
		OrderID: created.Order.ID, To: types.OrderStatusCancelled,
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	p, err := env.productRepo.GetByID(env.dbc(), prodID)
	if err != nil {
		t.Fatalf("read product: %v", err)
	}
	if p.Stock != 10 {
		t.Fatalf("stock = %d, want 10 after cancel", p.Stock)
	}
}

// Two writers race for the same 5 units with 3 apiece: exactly one wins, the
// other gets a typed stock failure, and no unit is lost or double-reserved.
func TestConcurrentStockReservationIntegration(t *testing.T) {
	env := newIntegrationEnv(t)
	prodID := env.seedProduct(t, "10.00", 5)

	orderA := env.mustCreateOrder(t)
	orderB := env.mustCreateOrder(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, orderID := range []int64{orderA, orderB} {
		wg.Add(1)
		go func(i int, orderID int64) {
			defer wg.Done()
			_, errs[i] = env.orders.AddItem(context.Background(), domainagg.AddOrderItemInput{
				OrderID: orderID, ProductID: prodID, Quantity: 3,
			})
		}(i, orderID)
	}
	wg.Wait()

	var successes, stockFailures int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case domainagg.IsCode(err, domainagg.CodeInsufficientStock),
			domainagg.IsCode(err, domainagg.CodeConcurrentModification):
			stockFailures++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || stockFailures != 1 {
		t.Fatalf("successes=%d stockFailures=%d, want exactly one of each (errs=%v)", successes, stockFailures, errs)
	}

	p, err := env.productRepo.GetByID(env.dbc(), prodID)
	if err != nil {
		t.Fatalf("read product: %v", err)
	}
	if p.Stock != 2 {
		t.Fatalf("stock = %d, want 2 after one winning reservation", p.Stock)
	}
}

// Two writers append to the same order: the order row lock serializes them,
// both lines land and the recomputed totals cover exactly the two lines.
func TestSameOrderAddItemSerializationIntegration(t *testing.T) {
	env := newIntegrationEnv(t)
	prodID := env.seedProduct(t, "10.00", 10)
	orderID := env.mustCreateOrder(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, qty := range []int{2, 3} {
		wg.Add(1)
		go func(i, qty int) {
			defer wg.Done()
			_, errs[i] = env.orders.AddItem(context.Background(), domainagg.AddOrderItemInput{
				OrderID: orderID, ProductID: prodID, Quantity: qty,
			})
		}(i, qty)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}

	o, err := env.orderRepo.GetWithItems(env.dbc(), orderID)
	if err != nil {
		t.Fatalf("read order: %v", err)
	}
	if len(o.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(o.Items))
	}
	if !o.Subtotal.Equal(repotest.MustDecimal(t, "50.00")) ||
		!o.IGV.Equal(repotest.MustDecimal(t, "9.00")) ||
		!o.Total.Equal(repotest.MustDecimal(t, "59.00")) {
		t.Fatalf("totals = %s/%s/%s, want 50.00/9.00/59.00", o.Subtotal, o.IGV, o.Total)
	}

	p, err := env.productRepo.GetByID(env.dbc(), prodID)
	if err != nil {
		t.Fatalf("read product: %v", err)
	}
	if p.Stock != 5 {
		t.Fatalf("stock = %d, want 5", p.Stock)
	}
}

// A failing line aborts the whole order: the rollback gives back the stock
// reserved by earlier lines and leaves no order or item rows behind.
func TestCreateRollbackLeavesPriorStateIntegration(t *testing.T) {
	env := newIntegrationEnv(t)
	prodA := env.seedProduct(t, "10.00", 5)

	a, err := env.productRepo.GetByID(env.dbc(), prodA)
	if err != nil {
		t.Fatalf("read product: %v", err)
	}
	scarce := &types.Product{
		Name:       "tea",
		Price:      repotest.MustDecimal(t, "4.00"),
		Stock:      1,
		CategoryID: a.CategoryID,
	}
	if _, err := env.productRepo.Create(env.dbc(), []*types.Product{scarce}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	_, err = env.orders.Create(context.Background(), domainagg.CreateOrderInput{
		Lines: []domainagg.OrderLine{
			{ProductID: prodA, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 3},
		},
	})
	if !domainagg.IsCode(err, domainagg.CodeInsufficientStock) {
		t.Fatalf("expected insufficient_stock, got %v", err)
	}

	orders, err := env.orderRepo.List(env.dbc())
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("orders = %d, want none after rollback", len(orders))
	}
	count, err := env.itemRepo.CountByProduct(env.dbc(), prodA)
	if err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 0 {
		t.Fatalf("item rows = %d, want none after rollback", count)
	}
	for _, id := range []int64{prodA, scarce.ID} {
		p, err := env.productRepo.GetByID(env.dbc(), id)
		if err != nil {
			t.Fatalf("read product: %v", err)
		}
		want := 5
		if id == scarce.ID {
			want = 1
		}
		if p.Stock != want {
			t.Fatalf("product %d stock = %d, want %d", id, p.Stock, want)
		}
	}
}

func TestCatalogCascadeIntegration(t *testing.T) {
	env := newIntegrationEnv(t)
	prodID := env.seedProduct(t, "10.00", 5)

	p, err := env.productRepo.GetByID(env.dbc(), prodID)
	if err != nil {
		t.Fatalf("read product: %v", err)
	}

	// Plain delete refuses while the category owns products.
	_, err = env.catalog.RemoveCategory(context.Background(), domainagg.RemoveCategoryInput{
		CategoryID: p.CategoryID,
	})
	if !domainagg.IsCode(err, domainagg.CodeIntegrity) {
		t.Fatalf("expected integrity, got %v", err)
	}

	res, err := env.catalog.RemoveCategory(context.Background(), domainagg.RemoveCategoryInput{
		CategoryID: p.CategoryID, Cascade: true,
	})
	if err != nil {
		t.Fatalf("cascade: %v", err)
	}
	if res.RemovedProducts != 1 {
		t.Fatalf("removed products = %d, want 1", res.RemovedProducts)
	}
	gone, err := env.productRepo.GetByID(env.dbc(), prodID)
	if err != nil {
		t.Fatalf("read product: %v", err)
	}
	if gone != nil {
		t.Fatalf("product survived cascade: %+v", gone)
	}
}

func (e *integrationEnv) mustCreateOrder(t *testing.T) int64 {
	t.Helper()
	res, err := e.orders.Create(context.Background(), domainagg.CreateOrderInput{})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return res.Order.ID
}
