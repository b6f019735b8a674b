package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ledazaf/ms-order-api/internal/data/aggregates"
	"github.com/ledazaf/ms-order-api/internal/data/repos"
	types "github.com/ledazaf/ms-order-api/internal/domain"
	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

type CategoryService interface {
	Create(dbc dbctx.Context, name string) (*types.Category, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Category, error)
	List(dbc dbctx.Context) ([]*types.Category, error)
	Update(dbc dbctx.Context, id int64, name string) (*types.Category, error)
	Delete(ctx context.Context, id int64, cascade bool) (domainagg.RemoveCategoryResult, error)
}

type categoryService struct {
	db      *gorm.DB
	log     *logger.Logger
	repo    repos.CategoryRepo
	catalog domainagg.CatalogAggregate
}

func NewCategoryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	repo repos.CategoryRepo,
	catalog domainagg.CatalogAggregate,
) CategoryService {
	return &categoryService{
		db:      db,
		log:     baseLog.With("service", "CategoryService"),
		repo:    repo,
		catalog: catalog,
	}
}

func (s *categoryService) Create(dbc dbctx.Context, name string) (*types.Category, error) {
	const op = "CategoryService.Create"
	row := &types.Category{Name: strings.TrimSpace(name)}
	if err := row.Validate(); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	created, err := s.repo.Create(dbc, []*types.Category{row})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.log.Info("category created", "id", created[0].ID, "name", created[0].Name)
	return created[0], nil
}

func (s *categoryService) GetByID(dbc dbctx.Context, id int64) (*types.Category, error) {
	const op = "CategoryService.GetByID"
	row, err := s.repo.GetWithProducts(dbc, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op,
			fmt.Sprintf("category not found: %d", id), nil)
	}
	return row, nil
}

func (s *categoryService) List(dbc dbctx.Context) ([]*types.Category, error) {
	const op = "CategoryService.List"
	rows, err := s.repo.List(dbc)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return rows, nil
}

func (s *categoryService) Update(dbc dbctx.Context, id int64, name string) (*types.Category, error) {
	const op = "CategoryService.Update"
	row := &types.Category{ID: id, Name: strings.TrimSpace(name)}
	if err := row.Validate(); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	existing, err := s.repo.GetByID(dbc, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if existing == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op,
			fmt.Sprintf("category not found: %d", id), nil)
	}
	if err := s.repo.UpdateFields(dbc, id, map[string]interface{}{
		"name_category": row.Name,
	}); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	existing.Name = row.Name
	return existing, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64, cascade bool) (domainagg.RemoveCategoryResult, error) {
	res, err := s.catalog.RemoveCategory(ctx, domainagg.RemoveCategoryInput{
		CategoryID: id,
		Cascade:    cascade,
	})
	if err != nil {
		return res, err
	}
	s.log.Info("category removed", "id", id, "cascade", cascade, "removed_products", res.RemovedProducts)
	return res, nil
}
