package repository

import (
	"context"

	"order-service/internal/domain"
)

// OrderRepository is the persistence gateway for orders. Implementations
// return (nil, nil) from FindByID when the order does not exist; translating
// that into domain.ErrOrderNotFound is the service's job.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
}
