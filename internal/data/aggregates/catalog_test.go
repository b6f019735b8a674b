package aggregates_test

import (
	"context"
	"testing"

	"github.com/ledazaf/ms-order-api/internal/data/aggregates"
	"github.com/ledazaf/ms-order-api/internal/data/aggregates/testutil"
	types "github.com/ledazaf/ms-order-api/internal/domain"
	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
)

type catalogFixture struct {
	store  *testutil.FakeStore
	runner *testutil.InjectedTxRunner
	hooks  *testutil.HooksRecorder
	agg    domainagg.CatalogAggregate
}

func newCatalogFixture() *catalogFixture {
	store := testutil.NewFakeStore()
	runner := &testutil.InjectedTxRunner{}
	hooks := &testutil.HooksRecorder{}
	agg := aggregates.NewCatalogAggregate(aggregates.CatalogAggregateDeps{
		Base: aggregates.BaseDeps{
			Runner:   runner,
			Hooks:    hooks,
			CASGuard: store,
		},
		Categories: testutil.CategoryRepoView{FakeStore: store},
		Products:   testutil.ProductRepoView{FakeStore: store},
		Items:      testutil.OrderItemRepoView{FakeStore: store},
	})
	return &catalogFixture{store: store, runner: runner, hooks: hooks, agg: agg}
}

func TestCatalogAddProduct(t *testing.T) {
	f := newCatalogFixture()
	catID := f.store.SeedCategory("drinks")

	res, err := f.agg.AddProduct(context.Background(), domainagg.AddProductInput{
		CategoryID: catID,
		Product: types.Product{
			Name:  "coffee",
			Price: dec(t, "10.50"),
			Stock: 7,
		},
	})
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if res.Replaced {
		t.Fatalf("fresh insert reported as replacement")
	}
	if res.Product.ID == 0 {
		t.Fatalf("expected assigned product id")
	}
	if res.Product.CategoryID != catID {
		t.Fatalf("category id = %d, want %d", res.Product.CategoryID, catID)
	}
	stored := f.store.Products[res.Product.ID]
	if stored.Name != "coffee" || stored.Stock != 7 {
		t.Fatalf("stored product %+v", stored)
	}
}

func TestCatalogAddProductUnknownCategory(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.agg.AddProduct(context.Background(), domainagg.AddProductInput{
		CategoryID: 42,
		Product:    types.Product{Name: "coffee", Price: dec(t, "10.50")},
	})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if len(f.store.Products) != 0 {
		t.Fatalf("product written without category")
	}
}

func TestCatalogAddProductReplacesExistingID(t *testing.T) {
	f := newCatalogFixture()
	catID := f.store.SeedCategory("drinks")
	prodID := f.store.SeedProduct(catID, "coffee", dec(t, "10.50"), 7)

	res, err := f.agg.AddProduct(context.Background(), domainagg.AddProductInput{
		CategoryID: catID,
		Product: types.Product{
			ID:    prodID,
			Name:  "espresso",
			Price: dec(t, "12.00"),
			Stock: 3,
		},
	})
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if !res.Replaced {
		t.Fatalf("expected replacement to be reported")
	}
	if len(f.store.Products) != 1 {
		t.Fatalf("products = %d, want 1", len(f.store.Products))
	}
	if f.store.Products[prodID].Name != "espresso" {
		t.Fatalf("product not replaced: %+v", f.store.Products[prodID])
	}
}

func TestCatalogAddProductCategoryMismatch(t *testing.T) {
	f := newCatalogFixture()
	catID := f.store.SeedCategory("drinks")
	otherID := f.store.SeedCategory("food")

	_, err := f.agg.AddProduct(context.Background(), domainagg.AddProductInput{
		CategoryID: catID,
		Product:    types.Product{Name: "coffee", Price: dec(t, "10.50"), CategoryID: otherID},
	})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestCatalogAddProductValidation(t *testing.T) {
	f := newCatalogFixture()
	catID := f.store.SeedCategory("drinks")

	cases := []types.Product{
		{Name: "", Price: dec(t, "1.00")},
		{Name: "coffee", Price: dec(t, "-1.00")},
		{Name: "coffee", Price: dec(t, "1.00"), Stock: -1},
	}
	for _, p := range cases {
		if _, err := f.agg.AddProduct(context.Background(), domainagg.AddProductInput{
			CategoryID: catID, Product: p,
		}); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("product %+v: expected validation, got %v", p, err)
		}
	}
	if f.runner.BeginCalls != 0 {
		t.Fatalf("validation failures must not open transactions, got %d", f.runner.BeginCalls)
	}
}

func TestCatalogRemoveCategoryEmpty(t *testing.T) {
	f := newCatalogFixture()
	catID := f.store.SeedCategory("drinks")

	res, err := f.agg.RemoveCategory(context.Background(), domainagg.RemoveCategoryInput{CategoryID: catID})
	if err != nil {
		t.Fatalf("RemoveCategory: %v", err)
	}
	if res.RemovedProducts != 0 {
		t.Fatalf("removed products = %d, want 0", res.RemovedProducts)
	}
	if _, ok := f.store.Categories[catID]; ok {
		t.Fatalf("category still present")
	}
}

func TestCatalogRemoveCategoryWithProductsRejected(t *testing.T) {
	f := newCatalogFixture()
	catID := f.store.SeedCategory("drinks")
	f.store.SeedProduct(catID, "coffee", dec(t, "10.50"), 7)

	_, err := f.agg.RemoveCategory(context.Background(), domainagg.RemoveCategoryInput{CategoryID: catID})
	if !domainagg.IsCode(err, domainagg.CodeIntegrity) {
		t.Fatalf("expected integrity, got %v", err)
	}
	if _, ok := f.store.Categories[catID]; !ok {
		t.Fatalf("category deleted despite owned products")
	}
}

func TestCatalogRemoveCategoryCascade(t *testing.T) {
	f := newCatalogFixture()
	catID := f.store.SeedCategory("drinks")
	f.store.SeedProduct(catID, "coffee", dec(t, "10.50"), 7)
	f.store.SeedProduct(catID, "beans", dec(t, "15.00"), 4)
	keepCat := f.store.SeedCategory("food")
	keepProd := f.store.SeedProduct(keepCat, "bread", dec(t, "3.00"), 9)

	res, err := f.agg.RemoveCategory(context.Background(), domainagg.RemoveCategoryInput{
		CategoryID: catID, Cascade: true,
	})
	if err != nil {
		t.Fatalf("RemoveCategory cascade: %v", err)
	}
	if res.RemovedProducts != 2 {
		t.Fatalf("removed products = %d, want 2", res.RemovedProducts)
	}
	if len(f.store.Products) != 1 {
		t.Fatalf("products = %d, want only the unrelated one", len(f.store.Products))
	}
	if _, ok := f.store.Products[keepProd]; !ok {
		t.Fatalf("unrelated product removed")
	}
}

func TestCatalogRemoveCategoryCascadeBlockedByOrderItems(t *testing.T) {
	f := newCatalogFixture()
	catID := f.store.SeedCategory("drinks")
	prodID := f.store.SeedProduct(catID, "coffee", dec(t, "10.50"), 7)
	orderID := f.store.SeedOrder(types.OrderStatusPending)
	of := &orderFixture{store: f.store}
	of.seedItem(t, orderID, prodID, 1, dec(t, "10.50"))

	_, err := f.agg.RemoveCategory(context.Background(), domainagg.RemoveCategoryInput{
		CategoryID: catID, Cascade: true,
	})
	if !domainagg.IsCode(err, domainagg.CodeIntegrity) {
		t.Fatalf("expected integrity, got %v", err)
	}
	if _, ok := f.store.Categories[catID]; !ok {
		t.Fatalf("category deleted despite referenced product")
	}
	if _, ok := f.store.Products[prodID]; !ok {
		t.Fatalf("referenced product deleted")
	}
}

func TestCatalogRemoveCategoryNotFound(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.agg.RemoveCategory(context.Background(), domainagg.RemoveCategoryInput{CategoryID: 404})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestCatalogRemoveProduct(t *testing.T) {
	f := newCatalogFixture()
	catID := f.store.SeedCategory("drinks")
	prodID := f.store.SeedProduct(catID, "coffee", dec(t, "10.50"), 7)

	res, err := f.agg.RemoveProduct(context.Background(), domainagg.RemoveProductInput{ProductID: prodID})
	if err != nil {
		t.Fatalf("RemoveProduct: %v", err)
	}
	if res.ProductID != prodID {
		t.Fatalf("result product id = %d, want %d", res.ProductID, prodID)
	}
	if _, ok := f.store.Products[prodID]; ok {
		t.Fatalf("product still present")
	}
}

func TestCatalogRemoveProductReferencedByItems(t *testing.T) {
	f := newCatalogFixture()
	catID := f.store.SeedCategory("drinks")
	prodID := f.store.SeedProduct(catID, "coffee", dec(t, "10.50"), 7)
	orderID := f.store.SeedOrder(types.OrderStatusPending)
	of := &orderFixture{store: f.store}
	of.seedItem(t, orderID, prodID, 1, dec(t, "10.50"))

	_, err := f.agg.RemoveProduct(context.Background(), domainagg.RemoveProductInput{ProductID: prodID})
	if !domainagg.IsCode(err, domainagg.CodeIntegrity) {
		t.Fatalf("expected integrity, got %v", err)
	}
	if _, ok := f.store.Products[prodID]; !ok {
		t.Fatalf("referenced product deleted")
	}
}

func TestCatalogRemoveProductNotFound(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.agg.RemoveProduct(context.Background(), domainagg.RemoveProductInput{ProductID: 404})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
