package orders

import (
	"gorm.io/gorm"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

type OrderItemRepo interface {
	Create(dbc dbctx.Context, rows []*types.OrderItem) ([]*types.OrderItem, error)

	GetByID(dbc dbctx.Context, id int64) (*types.OrderItem, error)
	GetByOrderAndID(dbc dbctx.Context, orderID, itemID int64) (*types.OrderItem, error)
	ListByOrder(dbc dbctx.Context, orderID int64) ([]*types.OrderItem, error)
	CountByProduct(dbc dbctx.Context, productID int64) (int64, error)

	Delete(dbc dbctx.Context, id int64) error
	DeleteByOrder(dbc dbctx.Context, orderID int64) (int64, error)
}

type orderItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderItemRepo(db *gorm.DB, baseLog *logger.Logger) OrderItemRepo {
	return &orderItemRepo{db: db, log: baseLog.With("repo", "OrderItemRepo")}
}

func (r *orderItemRepo) Create(dbc dbctx.Context, rows []*types.OrderItem) ([]*types.OrderItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.OrderItem{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *orderItemRepo) GetByID(dbc dbctx.Context, id int64) (*types.OrderItem, error) {
	if id <= 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.OrderItem
	if err := t.WithContext(dbc.Ctx).
		Where("id_order_item = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *orderItemRepo) GetByOrderAndID(dbc dbctx.Context, orderID, itemID int64) (*types.OrderItem, error) {
	if orderID <= 0 || itemID <= 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.OrderItem
	if err := t.WithContext(dbc.Ctx).
		Where("id_order = ? AND id_order_item = ?", orderID, itemID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *orderItemRepo) ListByOrder(dbc dbctx.Context, orderID int64) ([]*types.OrderItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.OrderItem
	if orderID <= 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("id_order = ?", orderID).
		Order("id_order_item ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderItemRepo) CountByProduct(dbc dbctx.Context, productID int64) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if productID <= 0 {
		return 0, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.OrderItem{}).
		Where("id_product = ?", productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderItemRepo) Delete(dbc dbctx.Context, id int64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id <= 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("id_order_item = ?", id).
		Delete(&types.OrderItem{}).Error
}

func (r *orderItemRepo) DeleteByOrder(dbc dbctx.Context, orderID int64) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if orderID <= 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Where("id_order = ?", orderID).
		Delete(&types.OrderItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
