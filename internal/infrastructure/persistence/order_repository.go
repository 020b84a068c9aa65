package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/senkronix/b2b-bridge/internal/domain/order"
	"github.com/senkronix/b2b-bridge/internal/domain/shared"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ order.Repository = (*GormOrderRepository)(nil)

// Create persists the order and all items in one transaction. GORM inserts
// the association rows together with the parent, so a failed item rolls the
// whole order back.
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
	if err != nil {
		return shared.NewDomainError("PERSISTENCE_FAILURE", fmt.Sprintf("failed to save order: %v", err))
	}
	return nil
}

// FindByID loads an order with its items.
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order %d: %w", id, err)
	}
	return &o, nil
}

// UpdateStatus sets the order status and returns the updated order.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id int64, status order.OrderStatus) (*order.Order, error) {
	var updated *order.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o order.Order
		if err := tx.Preload("Items").First(&o, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrOrderNotFound
			}
			return err
		}
		if err := tx.Model(&o).Update("status", status).Error; err != nil {
			return err
		}
		o.Status = status
		updated = &o
		return nil
	})
	if err != nil {
		var derr *shared.DomainError
		if errors.As(err, &derr) {
			return nil, err
		}
		return nil, shared.NewDomainError("PERSISTENCE_FAILURE", fmt.Sprintf("failed to update order %d: %v", id, err))
	}
	return updated, nil
}

// List returns orders newest first.
func (r *GormOrderRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[order.Order], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&order.Order{}).Count(&total).Error; err != nil {
		return shared.Paginated[order.Order]{}, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&orders).Error
	if err != nil {
		return shared.Paginated[order.Order]{}, fmt.Errorf("failed to list orders: %w", err)
	}

	return shared.NewPaginated(orders, total, filter.Page, filter.Limit()), nil
}
