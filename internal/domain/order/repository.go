package order

import (
	"context"

	"github.com/senkronix/b2b-bridge/internal/domain/shared"
)

// Repository persists orders. Create must write the order and all of its
// items atomically.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[Order], error)
}
