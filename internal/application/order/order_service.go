package order

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
	"github.com/senkronix/b2b-bridge/internal/domain/order"
	"github.com/senkronix/b2b-bridge/internal/domain/shared"
)

// Service handles order capture and lifecycle management.
type Service struct {
	orders    order.Repository
	snapshots catalog.SnapshotStore
	logger    *zap.Logger
}

// NewService creates an order service.
func NewService(orders order.Repository, snapshots catalog.SnapshotStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: orders, snapshots: snapshots, logger: logger}
}

// Create validates and persists a new order. Validation happens before any
// storage work so a bad line never leaves a partial order behind. Barcodes
// are filled in from the catalog snapshot when available; a missing snapshot
// degrades to blank barcodes, never to a rejected order.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (OrderResponse, error) {
	if len(req.Items) == 0 {
		return OrderResponse{}, shared.ErrEmptyOrder
	}

	items := make([]order.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		item, err := order.NewOrderItem(line.ProductCode, line.ProductName, line.Quantity, line.UnitPrice)
		if err != nil {
			return OrderResponse{}, err
		}
		items = append(items, item)
	}

	s.enrichBarcodes(ctx, items)

	o, err := order.NewOrder(req.CustomerName, items)
	if err != nil {
		return OrderResponse{}, err
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return OrderResponse{}, err
	}

	s.logger.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.String("customer", o.CustomerName),
		zap.Int("lines", len(o.Items)),
		zap.String("total", o.TotalAmount.String()))

	return ToResponse(o), nil
}

// enrichBarcodes copies barcodes from the catalog snapshot onto matching
// lines. Best effort only.
func (s *Service) enrichBarcodes(ctx context.Context, items []order.OrderItem) {
	snapshot, err := s.snapshots.Catalog(ctx)
	if err != nil {
		s.logger.Warn("barcode enrichment skipped", zap.Error(err))
		return
	}

	barcodes := make(map[string]string, len(snapshot))
	for _, item := range snapshot {
		if item.Barcode != "" {
			barcodes[item.Code] = item.Barcode
		}
	}

	for i := range items {
		if barcode, ok := barcodes[items[i].ProductCode]; ok {
			items[i].Barcode = barcode
		}
	}
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, id int64) (OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return OrderResponse{}, err
	}
	return ToResponse(o), nil
}

// UpdateStatus applies an operator status change. Any valid status is
// accepted as a target; operators correct mistakes by setting the right
// state, not by replaying history.
func (s *Service) UpdateStatus(ctx context.Context, id int64, rawStatus string) (OrderResponse, error) {
	status, err := order.ParseStatus(rawStatus)
	if err != nil {
		return OrderResponse{}, err
	}

	o, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return OrderResponse{}, err
	}

	s.logger.Info("order status updated",
		zap.Int64("order_id", id),
		zap.String("status", status.String()))

	return ToResponse(o), nil
}

// List returns orders newest first.
func (s *Service) List(ctx context.Context, filter shared.Filter) (shared.Paginated[OrderResponse], error) {
	page, err := s.orders.List(ctx, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, fmt.Errorf("listing orders: %w", err)
	}

	responses := make([]OrderResponse, len(page.Items))
	for i := range page.Items {
		responses[i] = ToResponse(&page.Items[i])
	}

	return shared.Paginated[OrderResponse]{
		Items:      responses,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}
