package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products. The products slice is a read-side view derived
// from the authoritative Product.CategoryID reference; it is populated on
// preload and never written through directly.
type Category struct {
	ID   int64  `gorm:"column:id_category;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name_category;not null" json:"name"`

	Products []Product `gorm:"foreignKey:CategoryID;references:ID" json:"products,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	return nil
}

// Product belongs to exactly one category. Version guards concurrent stock
// updates: every stock write must bump it, and compare-and-set writes match
// on it.
type Product struct {
	ID          int64           `gorm:"column:id_product;primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"column:name_product;not null" json:"name"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(16,2);not null" json:"price"`
	Description string          `gorm:"column:description_producto" json:"description"`
	Stock       int             `gorm:"column:stock_product;not null;default:0" json:"stock"`
	CategoryID  int64           `gorm:"column:id_category;not null;index" json:"category_id"`
	Version     int             `gorm:"column:version;not null;default:0" json:"version"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyProductName
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	if p.CategoryID <= 0 {
		return ErrMissingCategoryRef
	}
	return nil
}
