package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

type ProductRepo interface {
	Create(dbc dbctx.Context, rows []*types.Product) ([]*types.Product, error)
	// Upsert inserts or fully replaces a product row keyed on its id.
	Upsert(dbc dbctx.Context, row *types.Product) error

	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Product, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Product, error)
	List(dbc dbctx.Context) ([]*types.Product, error)
	ListByCategory(dbc dbctx.Context, categoryID int64) ([]*types.Product, error)
	CountByCategory(dbc dbctx.Context, categoryID int64) (int64, error)

	LockByID(dbc dbctx.Context, id int64) (*types.Product, error)

	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	// RestoreStock atomically adds quantity back to the product's stock and
	// bumps the concurrency version.
	RestoreStock(dbc dbctx.Context, id int64, quantity int) error
	Delete(dbc dbctx.Context, id int64) error
	DeleteByCategory(dbc dbctx.Context, categoryID int64) (int64, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) Create(dbc dbctx.Context, rows []*types.Product) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Product{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *productRepo) Upsert(dbc dbctx.Context, row *types.Product) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id_product"}},
			UpdateAll: true,
		}).
		Create(row).Error
}

func (r *productRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Product
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id_product IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) GetByID(dbc dbctx.Context, id int64) (*types.Product, error) {
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

func (r *productRepo) List(dbc dbctx.Context) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Product
	if err := t.WithContext(dbc.Ctx).Order("id_product ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) ListByCategory(dbc dbctx.Context, categoryID int64) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Product
	if categoryID <= 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("id_category = ?", categoryID).
		Order("id_product ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) CountByCategory(dbc dbctx.Context, categoryID int64) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if categoryID <= 0 {
		return 0, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Product{}).
		Where("id_category = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *productRepo) LockByID(dbc dbctx.Context, id int64) (*types.Product, error) {
	if id <= 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Product
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id_product = ?", id).
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

func (r *productRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id <= 0 || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Product{}).
		Where("id_product = ?", id).
		Updates(updates).Error
}

func (r *productRepo) RestoreStock(dbc dbctx.Context, id int64, quantity int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id <= 0 || quantity <= 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Product{}).
		Where("id_product = ?", id).
		Updates(map[string]interface{}{
			"stock_product": gorm.Expr("stock_product + ?", quantity),
			"version":       gorm.Expr("version + 1"),
		}).Error
}

func (r *productRepo) Delete(dbc dbctx.Context, id int64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id <= 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("id_product = ?", id).
		Delete(&types.Product{}).Error
}

func (r *productRepo) DeleteByCategory(dbc dbctx.Context, categoryID int64) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if categoryID <= 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Where("id_category = ?", categoryID).
		Delete(&types.Product{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
