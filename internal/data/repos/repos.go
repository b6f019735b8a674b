package repos

import (
	"gorm.io/gorm"

	"github.com/ledazaf/ms-order-api/internal/data/repos/catalog"
	"github.com/ledazaf/ms-order-api/internal/data/repos/orders"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

type CategoryRepo = catalog.CategoryRepo
type ProductRepo = catalog.ProductRepo

type OrderRepo = orders.OrderRepo
type OrderItemRepo = orders.OrderItemRepo

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, baseLog)
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return orders.NewOrderRepo(db, baseLog)
}

func NewOrderItemRepo(db *gorm.DB, baseLog *logger.Logger) OrderItemRepo {
	return orders.NewOrderItemRepo(db, baseLog)
}
