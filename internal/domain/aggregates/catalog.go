package aggregates

import (
	"context"

	types "github.com/ledazaf/ms-order-api/internal/domain"
)

var CatalogAggregateContract = Contract{
	Name:             "Catalog.CategoryAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns category/product referential integrity: category references must resolve, deletes never dangle.",
}

// CatalogAggregate owns the category/product association invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeIntegrity, CodeConcurrentModification,
// CodeRetryable, CodeInternal.
type CatalogAggregate interface {
	Aggregate

	// AddProduct inserts a product into its category's set. The product's
	// category reference must resolve to an existing category; an existing
	// product id is replaced, never duplicated.
	AddProduct(ctx context.Context, in AddProductInput) (AddProductResult, error)

	// RemoveCategory deletes a category. A non-empty product set is rejected
	// unless Cascade is set, in which case owned products go first, inside
	// the same transaction.
	RemoveCategory(ctx context.Context, in RemoveCategoryInput) (RemoveCategoryResult, error)

	// RemoveProduct deletes a product unless any order item references it.
	RemoveProduct(ctx context.Context, in RemoveProductInput) (RemoveProductResult, error)
}

type AddProductInput struct {
	CategoryID int64
	Product    types.Product
}

type AddProductResult struct {
	Product types.Product
	// Replaced reports whether an existing product row with the same id was
	// overwritten instead of inserted.
	Replaced bool
}

type RemoveCategoryInput struct {
	CategoryID int64
	Cascade    bool
}

type RemoveCategoryResult struct {
	CategoryID      int64
	RemovedProducts int
}

type RemoveProductInput struct {
	ProductID int64
}

type RemoveProductResult struct {
	ProductID int64
}
