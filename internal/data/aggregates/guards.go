package aggregates

import (
	"gorm.io/gorm"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
)

// StockGuard is the compare-and-set contract for shared product stock.
type StockGuard interface {
	// ReserveStockByVersion decrements stock only when the product's version
	// is unchanged since the caller read it. Returns false on a lost race.
	ReserveStockByVersion(dbc dbctx.Context, productID int64, expectedVersion, quantity int) (bool, error)
}

// CASGuard implements StockGuard on GORM.
type CASGuard struct {
	db *gorm.DB
}

var _ StockGuard = CASGuard{}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx), nil
	}
	if g.db != nil {
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, ValidationError("missing db transaction context")
}

// The write bumps the version, so a lost race leaves zero rows affected and
// no partial decrement.
func (g CASGuard) ReserveStockByVersion(dbc dbctx.Context, productID int64, expectedVersion, quantity int) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	if productID <= 0 {
		return false, ValidationError("product id is required for ReserveStockByVersion")
	}
	if expectedVersion < 0 {
		return false, ValidationError("expectedVersion must be >= 0")
	}
	if quantity <= 0 {
		return false, ValidationError("quantity must be positive")
	}
	res := db.Model(&types.Product{}).
		Where("id_product = ? AND version = ? AND stock_product >= ?", productID, expectedVersion, quantity).
		Updates(map[string]interface{}{
			"stock_product": gorm.Expr("stock_product - ?", quantity),
			"version":       gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess converts a failed compare-and-set into a typed conflict error.
func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return ConflictError(message)
}

// RequireMutableStatus rejects item mutation on terminal orders.
func RequireMutableStatus(current types.OrderStatus) error {
	if current.Terminal() {
		return InvalidTransitionError("order is in terminal status " + string(current))
	}
	return nil
}

// RequireTransitionAllowed validates an edge of the status DAG.
func RequireTransitionAllowed(from, to types.OrderStatus) error {
	if !from.CanTransitionTo(to) {
		return InvalidTransitionError("invalid order transition " + string(from) + " -> " + string(to))
	}
	return nil
}
