package domain

import (
	"errors"
	"fmt"
)

var ErrOrderNotFound = errors.New("order not found")

// ValidationError marks a malformed request. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProductNotFoundError fails the whole order creation.
type ProductNotFoundError struct {
	ProductID uint64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError names the product and the shortfall so the caller
// can tell the customer which line failed.
type InsufficientStockError struct {
	ProductID uint64
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ReservationNotFoundError marks a stock commit that has no matching hold to
// consume.
type ReservationNotFoundError struct {
	OrderID   string
	ProductID uint64
	Requested int64
	Held      int64
}

func (e *ReservationNotFoundError) Error() string {
	return fmt.Sprintf("no reservation of %d units of product %d for order %s (held %d)",
		e.Requested, e.ProductID, e.OrderID, e.Held)
}

// InvalidStateTransitionError carries the current status so the caller can
// explain the conflict.
type InvalidStateTransitionError struct {
	OrderID   string
	Current   OrderStatus
	Attempted OrderStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("order %s is %s, cannot transition to %s", e.OrderID, e.Current, e.Attempted)
}

// PersistenceError wraps a gateway failure. Retryable at the caller's
// discretion; the core does not retry on its own.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
