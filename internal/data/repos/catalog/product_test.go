package catalog_test

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/ledazaf/ms-order-api/internal/data/repos/catalog"
	"github.com/ledazaf/ms-order-api/internal/data/repos/testutil"
	types "github.com/ledazaf/ms-order-api/internal/domain"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
)

func TestProductRepoUpsert(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := catalog.NewProductRepo(db, testutil.TestLogger(t))

	testutil.WithRollback(t, db, func(tx *gorm.DB) {
		dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
		cat := testutil.CreateCategory(t, tx, "drinks")

		p := &types.Product{
			Name:       "coffee",
			Price:      testutil.MustDecimal(t, "10.00"),
			Stock:      5,
			CategoryID: cat.ID,
		}
		if err := repo.Upsert(dbc, p); err != nil {
			t.Fatalf("Upsert insert: %v", err)
		}
		if p.ID == 0 {
			t.Fatalf("insert did not assign id")
		}

		p.Name = "espresso"
		p.Stock = 2
		if err := repo.Upsert(dbc, p); err != nil {
			t.Fatalf("Upsert replace: %v", err)
		}

		got, err := repo.GetByID(dbc, p.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Name != "espresso" || got.Stock != 2 {
			t.Fatalf("replaced row = %+v", got)
		}

		count, err := repo.CountByCategory(dbc, cat.ID)
		if err != nil {
			t.Fatalf("CountByCategory: %v", err)
		}
		if count != 1 {
			t.Fatalf("count = %d, want 1 (upsert must not duplicate)", count)
		}
	})
}

func TestProductRepoListByCategory(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := catalog.NewProductRepo(db, testutil.TestLogger(t))

	testutil.WithRollback(t, db, func(tx *gorm.DB) {
		dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
		drinks := testutil.CreateCategory(t, tx, "drinks")
		food := testutil.CreateCategory(t, tx, "food")
		testutil.CreateProduct(t, tx, drinks.ID, "coffee", "10.00", 5)
		testutil.CreateProduct(t, tx, drinks.ID, "tea", "8.00", 3)
		testutil.CreateProduct(t, tx, food.ID, "bread", "3.00", 9)

		rows, err := repo.ListByCategory(dbc, drinks.ID)
		if err != nil {
			t.Fatalf("ListByCategory: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("drinks products = %d, want 2", len(rows))
		}

		count, err := repo.CountByCategory(dbc, food.ID)
		if err != nil {
			t.Fatalf("CountByCategory: %v", err)
		}
		if count != 1 {
			t.Fatalf("food count = %d, want 1", count)
		}
	})
}

func TestProductRepoRestoreStock(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := catalog.NewProductRepo(db, testutil.TestLogger(t))

	testutil.WithRollback(t, db, func(tx *gorm.DB) {
		dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
		cat := testutil.CreateCategory(t, tx, "drinks")
		p := testutil.CreateProduct(t, tx, cat.ID, "coffee", "10.00", 5)

		if err := repo.RestoreStock(dbc, p.ID, 3); err != nil {
			t.Fatalf("RestoreStock: %v", err)
		}
		got, err := repo.GetByID(dbc, p.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Stock != 8 {
			t.Fatalf("stock = %d, want 8", got.Stock)
		}
		if got.Version != p.Version+1 {
			t.Fatalf("version = %d, want %d", got.Version, p.Version+1)
		}
	})
}

func TestProductRepoDeleteByCategory(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := catalog.NewProductRepo(db, testutil.TestLogger(t))

	testutil.WithRollback(t, db, func(tx *gorm.DB) {
		dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
		drinks := testutil.CreateCategory(t, tx, "drinks")
		food := testutil.CreateCategory(t, tx, "food")
		testutil.CreateProduct(t, tx, drinks.ID, "coffee", "10.00", 5)
		testutil.CreateProduct(t, tx, drinks.ID, "tea", "8.00", 3)
		keep := testutil.CreateProduct(t, tx, food.ID, "bread", "3.00", 9)

		removed, err := repo.DeleteByCategory(dbc, drinks.ID)
		if err != nil {
			t.Fatalf("DeleteByCategory: %v", err)
		}
		if removed != 2 {
			t.Fatalf("removed = %d, want 2", removed)
		}
		got, err := repo.GetByID(dbc, keep.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got == nil {
			t.Fatalf("unrelated product deleted")
		}
	})
}

func TestProductRepoForeignKeyEnforced(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := catalog.NewProductRepo(db, testutil.TestLogger(t))

	testutil.WithRollback(t, db, func(tx *gorm.DB) {
		dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
		_, err := repo.Create(dbc, []*types.Product{{
			Name:       "orphan",
			Price:      testutil.MustDecimal(t, "1.00"),
			CategoryID: 999999,
		}})
		if err == nil {
			t.Fatalf("expected foreign key violation for dangling category ref")
		}
	})
}
