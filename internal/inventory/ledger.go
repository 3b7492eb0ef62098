// Package inventory is the sole authority over product stock. Stock moves
// through a two-phase protocol: Reserve places a hold, Commit turns the hold
// into a permanent catalog decrement, Release returns the hold to
// availability. Available stock is the catalog count minus outstanding holds.
package inventory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"order-service/internal/domain"
	"order-service/internal/infra"
)

type holdKey struct {
	orderID   string
	productID uint64
}

// Ledger serializes all stock mutations per product id. Holds are bound to
// the order that made them, which is what makes Commit idempotent: committing
// the same (order, product) pair twice decrements the catalog only once.
type Ledger struct {
	catalog infra.CatalogGateway
	logger  *zap.SugaredLogger

	mu        sync.Mutex
	locks     map[uint64]*sync.Mutex
	reserved  map[uint64]int64
	holds     map[holdKey]int64
	committed map[holdKey]int64
}

func NewLedger(catalog infra.CatalogGateway, logger *zap.SugaredLogger) *Ledger {
	return &Ledger{
		catalog:   catalog,
		logger:    logger,
		locks:     make(map[uint64]*sync.Mutex),
		reserved:  make(map[uint64]int64),
		holds:     make(map[holdKey]int64),
		committed: make(map[holdKey]int64),
	}
}

// productLock returns the mutex serializing operations on one product.
func (l *Ledger) productLock(productID uint64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[productID] = lock
	}
	return lock
}

// Reserve atomically checks availability and places a hold for the order.
// The check and the hold happen inside one per-product critical section, so
// two orders racing for the last unit cannot both win.
func (l *Ledger) Reserve(ctx context.Context, orderID string, productID uint64, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	lock := l.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := l.catalog.GetProduct(ctx, productID)
	if err != nil {
		return &domain.PersistenceError{Op: "catalog lookup", Err: err}
	}
	if product == nil {
		return &domain.ProductNotFoundError{ProductID: productID}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	available := product.StockQuantity - l.reserved[productID]
	if available < quantity {
		return &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: available}
	}

	l.reserved[productID] += quantity
	l.holds[holdKey{orderID, productID}] += quantity
	l.logger.Debugw("stock reserved", "order_id", orderID, "product_id", productID, "quantity", quantity)
	return nil
}

// Commit converts the order's hold into a permanent stock decrement.
// Committing an already-committed pair is a no-op, so a failed accept can be
// retried without double-decrementing.
func (l *Ledger) Commit(ctx context.Context, orderID string, productID uint64, quantity int64) error {
	lock := l.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	key := holdKey{orderID, productID}

	l.mu.Lock()
	if l.committed[key] >= quantity {
		l.mu.Unlock()
		return nil
	}
	if l.holds[key] < quantity {
		held := l.holds[key]
		l.mu.Unlock()
		return &domain.ReservationNotFoundError{OrderID: orderID, ProductID: productID, Requested: quantity, Held: held}
	}
	l.mu.Unlock()

	if err := l.catalog.AdjustStock(ctx, productID, -quantity); err != nil {
		return &domain.PersistenceError{Op: "stock commit", Err: err}
	}

	l.mu.Lock()
	l.holds[key] -= quantity
	if l.holds[key] == 0 {
		delete(l.holds, key)
	}
	l.reserved[productID] -= quantity
	l.committed[key] += quantity
	l.mu.Unlock()

	l.logger.Debugw("stock committed", "order_id", orderID, "product_id", productID, "quantity", quantity)
	return nil
}

// RevertCommit undoes a prior Commit: the catalog decrement is re-applied in
// reverse and the hold is reinstated. Used as the compensation when a
// multi-item accept fails partway through.
func (l *Ledger) RevertCommit(ctx context.Context, orderID string, productID uint64, quantity int64) error {
	lock := l.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	key := holdKey{orderID, productID}

	l.mu.Lock()
	if l.committed[key] < quantity {
		quantity = l.committed[key]
	}
	l.mu.Unlock()
	if quantity == 0 {
		return nil
	}

	if err := l.catalog.AdjustStock(ctx, productID, quantity); err != nil {
		return &domain.PersistenceError{Op: "stock commit revert", Err: err}
	}

	l.mu.Lock()
	l.committed[key] -= quantity
	if l.committed[key] == 0 {
		delete(l.committed, key)
	}
	l.holds[key] += quantity
	l.reserved[productID] += quantity
	l.mu.Unlock()

	l.logger.Warnw("stock commit reverted", "order_id", orderID, "product_id", productID, "quantity", quantity)
	return nil
}

// Release returns the order's hold to availability. Releasing more than is
// held, or a hold that does not exist, is a no-op: every rollback path can
// call Release unconditionally.
func (l *Ledger) Release(orderID string, productID uint64, quantity int64) {
	lock := l.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	key := holdKey{orderID, productID}

	l.mu.Lock()
	defer l.mu.Unlock()

	held := l.holds[key]
	if held == 0 {
		return
	}
	if quantity > held {
		quantity = held
	}
	l.holds[key] -= quantity
	if l.holds[key] == 0 {
		delete(l.holds, key)
	}
	l.reserved[productID] -= quantity
	l.logger.Debugw("stock released", "order_id", orderID, "product_id", productID, "quantity", quantity)
}

// Available reports catalog stock minus outstanding holds for the product.
func (l *Ledger) Available(ctx context.Context, productID uint64) (int64, error) {
	lock := l.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := l.catalog.GetProduct(ctx, productID)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "catalog lookup", Err: err}
	}
	if product == nil {
		return 0, &domain.ProductNotFoundError{ProductID: productID}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return product.StockQuantity - l.reserved[productID], nil
}
