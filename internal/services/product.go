package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	redisclient "github.com/ledazaf/ms-order-api/internal/clients/redis"
	"github.com/ledazaf/ms-order-api/internal/data/aggregates"
	"github.com/ledazaf/ms-order-api/internal/data/repos"
	types "github.com/ledazaf/ms-order-api/internal/domain"
	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

type ProductService interface {
	Create(ctx context.Context, in types.Product) (domainagg.AddProductResult, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Product, error)
	List(dbc dbctx.Context) ([]*types.Product, error)
	ListByCategory(dbc dbctx.Context, categoryID int64) ([]*types.Product, error)
	Update(dbc dbctx.Context, id int64, in UpdateProductInput) (*types.Product, error)
	Delete(ctx context.Context, id int64) (domainagg.RemoveProductResult, error)
}

// UpdateProductInput carries a partial update; nil fields are left untouched.
type UpdateProductInput struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
	Stock       *int
}

type productService struct {
	db      *gorm.DB
	log     *logger.Logger
	repo    repos.ProductRepo
	catalog domainagg.CatalogAggregate
	cache   redisclient.ProductCache
}

func NewProductService(
	db *gorm.DB,
	baseLog *logger.Logger,
	repo repos.ProductRepo,
	catalog domainagg.CatalogAggregate,
	cache redisclient.ProductCache,
) ProductService {
	return &productService{
		db:      db,
		log:     baseLog.With("service", "ProductService"),
		repo:    repo,
		catalog: catalog,
		cache:   cache,
	}
}

func (s *productService) Create(ctx context.Context, in types.Product) (domainagg.AddProductResult, error) {
	res, err := s.catalog.AddProduct(ctx, domainagg.AddProductInput{
		CategoryID: in.CategoryID,
		Product:    in,
	})
	if err != nil {
		return res, err
	}
	if res.Replaced {
		s.cache.Invalidate(ctx, res.Product.ID)
	}
	s.log.Info("product created", "id", res.Product.ID, "category_id", res.Product.CategoryID, "replaced", res.Replaced)
	return res, nil
}

func (s *productService) GetByID(dbc dbctx.Context, id int64) (*types.Product, error) {
	const op = "ProductService.GetByID"
	if cached, ok := s.cache.Get(dbc.Ctx, id); ok {
		return cached, nil
	}
	row, err := s.repo.GetByID(dbc, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op,
			fmt.Sprintf("product not found: %d", id), nil)
	}
	s.cache.Set(dbc.Ctx, row)
	return row, nil
}

func (s *productService) List(dbc dbctx.Context) ([]*types.Product, error) {
	const op = "ProductService.List"
	rows, err := s.repo.List(dbc)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return rows, nil
}

func (s *productService) ListByCategory(dbc dbctx.Context, categoryID int64) ([]*types.Product, error) {
	const op = "ProductService.ListByCategory"
	rows, err := s.repo.ListByCategory(dbc, categoryID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return rows, nil
}

func (s *productService) Update(dbc dbctx.Context, id int64, in UpdateProductInput) (*types.Product, error) {
	const op = "ProductService.Update"
	existing, err := s.repo.GetByID(dbc, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if existing == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op,
			fmt.Sprintf("product not found: %d", id), nil)
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		existing.Name = *in.Name
		updates["name_product"] = *in.Name
	}
	if in.Price != nil {
		existing.Price = *in.Price
		updates["price"] = *in.Price
	}
	if in.Description != nil {
		existing.Description = *in.Description
		updates["description_producto"] = *in.Description
	}
	if in.Stock != nil {
		existing.Stock = *in.Stock
		updates["stock_product"] = *in.Stock
		// Every stock write bumps the version so version-checked
		// reservations in flight see the row changed under them.
		updates["version"] = gorm.Expr("version + 1")
		existing.Version++
	}
	if err := existing.Validate(); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.UpdateFields(dbc, id, updates); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.cache.Invalidate(dbc.Ctx, id)
	return existing, nil
}

func (s *productService) Delete(ctx context.Context, id int64) (domainagg.RemoveProductResult, error) {
	res, err := s.catalog.RemoveProduct(ctx, domainagg.RemoveProductInput{ProductID: id})
	if err != nil {
		return res, err
	}
	s.cache.Invalidate(ctx, id)
	s.log.Info("product removed", "id", id)
	return res, nil
}
