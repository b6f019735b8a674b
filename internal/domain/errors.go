package domain

import "errors"

var (
	ErrEmptyCategoryName  = errors.New("category name must not be empty")
	ErrEmptyProductName   = errors.New("product name must not be empty")
	ErrNegativePrice      = errors.New("product price must not be negative")
	ErrNegativeStock      = errors.New("product stock must not be negative")
	ErrMissingCategoryRef = errors.New("product must reference a category")

	ErrNonPositiveQuantity = errors.New("quantity must be positive")
	ErrUnknownStatus       = errors.New("unknown order status")
)
