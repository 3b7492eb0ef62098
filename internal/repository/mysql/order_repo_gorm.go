package mysql

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"order-service/internal/domain"
	"order-service/internal/repository"
)

type orderRepo struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewOrderRepository(db *gorm.DB, logger *zap.SugaredLogger) repository.OrderRepository {
	return &orderRepo{db: db, logger: logger}
}

// Save inserts the order and all of its items in one transaction so a reader
// can never observe an order whose total does not match its lines.
func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		r.logger.Errorw("order save failed", "order_id", order.ID, "err", err)
		return err
	}
	return nil
}

// Update persists a status transition. Items never change after creation, so
// only the order row is written.
func (r *orderRepo) Update(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":        order.Status,
			"accepted_at":   order.AcceptedAt,
			"rejected_at":   order.RejectedAt,
			"reject_reason": order.RejectReason,
		})
	if result.Error != nil {
		r.logger.Errorw("order update failed", "order_id", order.ID, "err", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("order row missing on update")
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("order lookup failed", "order_id", id, "err", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&out).Error
	if err != nil {
		r.logger.Errorw("order list failed", "err", err)
		return nil, err
	}
	return out, nil
}
