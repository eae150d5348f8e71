package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrderRequest = errors.New("user_id and items are required")
	ErrNoResolvableItems   = errors.New("no valid menu items found for the order")
	ErrUnresolvedItems     = errors.New("one or more menu items could not be resolved")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrStatusTransition    = errors.New("order status can no longer change")
)

// OrderCreationError is returned for every fatal failure of CreateOrder. The
// transaction has been rolled back when a caller sees it.
type OrderCreationError struct {
	Cause error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("order creation failed: %v", e.Cause)
}

func (e *OrderCreationError) Unwrap() error {
	return e.Cause
}
