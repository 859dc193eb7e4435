package market

import "errors"

var (
	// ErrForbidden: the caller's role (or ownership) does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound: a referenced product, demand, order or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientInventory: ordered quantity exceeds the product's availability.
	ErrInsufficientInventory = errors.New("insufficient quantity available")
	// ErrValidation: malformed or out-of-range input.
	ErrValidation = errors.New("invalid input")
)
