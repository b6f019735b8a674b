package orders

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

type OrderRepo interface {
	Create(dbc dbctx.Context, rows []*types.Order) ([]*types.Order, error)

	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Order, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Order, error)
	GetWithItems(dbc dbctx.Context, id int64) (*types.Order, error)
	List(dbc dbctx.Context) ([]*types.Order, error)
	ListByStatus(dbc dbctx.Context, statuses []types.OrderStatus) ([]*types.Order, error)

	LockByID(dbc dbctx.Context, id int64) (*types.Order, error)

	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id int64) error
}

type orderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return &orderRepo{db: db, log: baseLog.With("repo", "OrderRepo")}
}

func (r *orderRepo) Create(dbc dbctx.Context, rows []*types.Order) ([]*types.Order, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Order{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *orderRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Order, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Order
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id_order IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) GetByID(dbc dbctx.Context, id int64) (*types.Order, error) {
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

func (r *orderRepo) GetWithItems(dbc dbctx.Context, id int64) (*types.Order, error) {
	if id <= 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Order
	if err := t.WithContext(dbc.Ctx).
		Preload("Items").
		Where("id_order = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *orderRepo) List(dbc dbctx.Context) ([]*types.Order, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Order
	if err := t.WithContext(dbc.Ctx).Order("id_order ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) ListByStatus(dbc dbctx.Context, statuses []types.OrderStatus) ([]*types.Order, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Order
	if len(statuses) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("status IN ?", statuses).
		Order("id_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) LockByID(dbc dbctx.Context, id int64) (*types.Order, error) {
	if id <= 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Order
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id_order = ?", id).
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

func (r *orderRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id <= 0 || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Order{}).
		Where("id_order = ?", id).
		Updates(updates).Error
}

func (r *orderRepo) Delete(dbc dbctx.Context, id int64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id <= 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("id_order = ?", id).
		Delete(&types.Order{}).Error
}
