package aggregates

import (
	"context"
	"fmt"

	"github.com/ledazaf/ms-order-api/internal/data/repos"
	types "github.com/ledazaf/ms-order-api/internal/domain"
	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
)

type CatalogAggregateDeps struct {
	Base BaseDeps

	Categories repos.CategoryRepo
	Products   repos.ProductRepo
	Items      repos.OrderItemRepo
}

type catalogAggregate struct {
	deps CatalogAggregateDeps
}

func NewCatalogAggregate(deps CatalogAggregateDeps) domainagg.CatalogAggregate {
	deps.Base = deps.Base.withDefaults()
	return &catalogAggregate{deps: deps}
}

func (a *catalogAggregate) Contract() domainagg.Contract {
	return domainagg.CatalogAggregateContract
}

func (a *catalogAggregate) AddProduct(ctx context.Context, in domainagg.AddProductInput) (domainagg.AddProductResult, error) {
	const op = "Catalog.Category.AddProduct"
	var out domainagg.AddProductResult

	if in.CategoryID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing category id", nil)
	}
	if in.Product.CategoryID != 0 && in.Product.CategoryID != in.CategoryID {
		return out, domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("product references category %d, not %d", in.Product.CategoryID, in.CategoryID), nil)
	}
	product := in.Product
	product.CategoryID = in.CategoryID
	if err := product.Validate(); err != nil {
		return out, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	if a.deps.Categories == nil || a.deps.Products == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cat, err := a.deps.Categories.LockByID(dbc, in.CategoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op,
				fmt.Sprintf("category not found: %d", in.CategoryID), nil)
		}

		if product.ID > 0 {
			existing, err := a.deps.Products.GetByID(dbc, product.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				out.Replaced = true
			}
			if err := a.deps.Products.Upsert(dbc, &product); err != nil {
				return err
			}
		} else {
			if _, err := a.deps.Products.Create(dbc, []*types.Product{&product}); err != nil {
				return err
			}
		}

		out.Product = product
		return nil
	})
	return out, err
}

func (a *catalogAggregate) RemoveCategory(ctx context.Context, in domainagg.RemoveCategoryInput) (domainagg.RemoveCategoryResult, error) {
	const op = "Catalog.Category.RemoveCategory"
	var out domainagg.RemoveCategoryResult

	if in.CategoryID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing category id", nil)
	}
	if a.deps.Categories == nil || a.deps.Products == nil || a.deps.Items == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cat, err := a.deps.Categories.LockByID(dbc, in.CategoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op,
				fmt.Sprintf("category not found: %d", in.CategoryID), nil)
		}

		count, err := a.deps.Products.CountByCategory(dbc, in.CategoryID)
		if err != nil {
			return err
		}
		if count > 0 && !in.Cascade {
			return IntegrityError(fmt.Sprintf("category %d still owns %d products", in.CategoryID, count))
		}

		if count > 0 {
			products, err := a.deps.Products.ListByCategory(dbc, in.CategoryID)
			if err != nil {
				return err
			}
			for _, p := range products {
				refs, err := a.deps.Items.CountByProduct(dbc, p.ID)
				if err != nil {
					return err
				}
				if refs > 0 {
					return IntegrityError(fmt.Sprintf("product %d is referenced by %d order items", p.ID, refs))
				}
			}
			removed, err := a.deps.Products.DeleteByCategory(dbc, in.CategoryID)
			if err != nil {
				return err
			}
			out.RemovedProducts = int(removed)
		}

		if err := a.deps.Categories.Delete(dbc, in.CategoryID); err != nil {
			return err
		}
		out.CategoryID = in.CategoryID
		return nil
	})
	return out, err
}

func (a *catalogAggregate) RemoveProduct(ctx context.Context, in domainagg.RemoveProductInput) (domainagg.RemoveProductResult, error) {
	const op = "Catalog.Product.RemoveProduct"
	var out domainagg.RemoveProductResult

	if in.ProductID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing product id", nil)
	}
	if a.deps.Products == nil || a.deps.Items == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		p, err := a.deps.Products.LockByID(dbc, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op,
				fmt.Sprintf("product not found: %d", in.ProductID), nil)
		}

		refs, err := a.deps.Items.CountByProduct(dbc, in.ProductID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return IntegrityError(fmt.Sprintf("product %d is referenced by %d order items", in.ProductID, refs))
		}

		if err := a.deps.Products.Delete(dbc, in.ProductID); err != nil {
			return err
		}
		out.ProductID = in.ProductID
		return nil
	})
	return out, err
}
