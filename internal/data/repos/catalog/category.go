package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

type CategoryRepo interface {
	Create(dbc dbctx.Context, rows []*types.Category) ([]*types.Category, error)

	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Category, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Category, error)
	GetWithProducts(dbc dbctx.Context, id int64) (*types.Category, error)
	List(dbc dbctx.Context) ([]*types.Category, error)

	LockByID(dbc dbctx.Context, id int64) (*types.Category, error)

	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id int64) error
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) Create(dbc dbctx.Context, rows []*types.Category) ([]*types.Category, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Category{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *categoryRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Category, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Category
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id_category IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) GetByID(dbc dbctx.Context, id int64) (*types.Category, error) {
	if id <= 0 {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *categoryRepo) GetWithProducts(dbc dbctx.Context, id int64) (*types.Category, error) {
	if id <= 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Category
	if err := t.WithContext(dbc.Ctx).
		Preload("Products").
		Where("id_category = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *categoryRepo) List(dbc dbctx.Context) ([]*types.Category, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Category
	if err := t.WithContext(dbc.Ctx).Order("id_category ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) LockByID(dbc dbctx.Context, id int64) (*types.Category, error) {
	if id <= 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Category
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id_category = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *categoryRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id <= 0 || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Category{}).
		Where("id_category = ?", id).
		Updates(updates).Error
}

func (r *categoryRepo) Delete(dbc dbctx.Context, id int64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id <= 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("id_category = ?", id).
		Delete(&types.Category{}).Error
}
