package store

import "errors"

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrSaleFinal         = errors.New("sale is already final")
)
