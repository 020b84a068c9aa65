package order

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
	"github.com/senkronix/b2b-bridge/internal/domain/order"
	"github.com/senkronix/b2b-bridge/internal/domain/shared"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/snapshot"
)

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	if args.Error(0) == nil {
		o.ID = 42
	}
	return args.Error(0)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id int64, status order.OrderStatus) (*order.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[order.Order], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[order.Order]), args.Error(1)
}

func seededSnapshot(t *testing.T) catalog.SnapshotStore {
	t.Helper()
	store := snapshot.NewMemoryStore()
	err := store.ReplaceCatalog(context.Background(), []catalog.Item{
		{Code: "ST-001", Name: "Biber", Barcode: "8690001"},
		{Code: "ST-002", Name: "Tuz"},
	})
	require.NoError(t, err)
	return store
}

func validRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName: "Bakkal Mehmet",
		Items: []OrderLineRequest{
			{ProductCode: "ST-001", ProductName: "Biber", Quantity: 2, UnitPrice: decimal.RequireFromString("17.50")},
			{ProductCode: "ST-002", ProductName: "Tuz", Quantity: 1, UnitPrice: decimal.RequireFromString("3.25")},
		},
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("computes the total server side", func(t *testing.T) {
		repo := new(mockOrderRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		service := NewService(repo, seededSnapshot(t), nil)

		req := validRequest()
		clientTotal := decimal.NewFromInt(1)
		req.Total = &clientTotal // lies

		resp, err := service.Create(ctx, req)
		require.NoError(t, err)
		assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("38.25")),
			"client-supplied total must be ignored")
		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, order.StatusPending.String(), resp.Status)
	})

	t.Run("enriches barcodes from the snapshot", func(t *testing.T) {
		repo := new(mockOrderRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		service := NewService(repo, seededSnapshot(t), nil)

		resp, err := service.Create(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, "8690001", resp.Items[0].Barcode)
		assert.Empty(t, resp.Items[1].Barcode)
	})

	t.Run("empty order never reaches the repository", func(t *testing.T) {
		repo := new(mockOrderRepository)
		service := NewService(repo, seededSnapshot(t), nil)

		_, err := service.Create(ctx, CreateOrderRequest{CustomerName: "X"})
		assert.ErrorIs(t, err, shared.ErrEmptyOrder)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid line rejects before persistence", func(t *testing.T) {
		repo := new(mockOrderRepository)
		service := NewService(repo, seededSnapshot(t), nil)

		req := validRequest()
		req.Items[1].Quantity = 0

		_, err := service.Create(ctx, req)
		var derr *shared.DomainError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, "INVALID_LINE", derr.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("persistence failure is surfaced", func(t *testing.T) {
		repo := new(mockOrderRepository)
		repo.On("Create", mock.Anything, mock.Anything).
			Return(shared.NewDomainError("PERSISTENCE_FAILURE", "db down"))
		service := NewService(repo, seededSnapshot(t), nil)

		_, err := service.Create(ctx, validRequest())
		var derr *shared.DomainError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, "PERSISTENCE_FAILURE", derr.Code)
	})

	t.Run("missing customer name falls back to the sentinel", func(t *testing.T) {
		repo := new(mockOrderRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		service := NewService(repo, seededSnapshot(t), nil)

		req := validRequest()
		req.CustomerName = ""

		resp, err := service.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, order.DefaultCustomerName, resp.CustomerName)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("parses and applies the target status", func(t *testing.T) {
		repo := new(mockOrderRepository)
		updated := &order.Order{ID: 7, Status: order.StatusShipped}
		repo.On("UpdateStatus", mock.Anything, int64(7), order.StatusShipped).Return(updated, nil)
		service := NewService(repo, snapshot.NewMemoryStore(), nil)

		resp, err := service.UpdateStatus(ctx, 7, "shipped")
		require.NoError(t, err)
		assert.Equal(t, "SHIPPED", resp.Status)
	})

	t.Run("returned is reachable from any state", func(t *testing.T) {
		repo := new(mockOrderRepository)
		updated := &order.Order{ID: 7, Status: order.StatusReturned}
		repo.On("UpdateStatus", mock.Anything, int64(7), order.StatusReturned).Return(updated, nil)
		service := NewService(repo, snapshot.NewMemoryStore(), nil)

		resp, err := service.UpdateStatus(ctx, 7, "RETURNED")
		require.NoError(t, err)
		assert.Equal(t, "RETURNED", resp.Status)
	})

	t.Run("unknown status is rejected without touching storage", func(t *testing.T) {
		repo := new(mockOrderRepository)
		service := NewService(repo, snapshot.NewMemoryStore(), nil)

		_, err := service.UpdateStatus(ctx, 7, "LOST")
		require.Error(t, err)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing order maps to ORDER_NOT_FOUND", func(t *testing.T) {
		repo := new(mockOrderRepository)
		repo.On("UpdateStatus", mock.Anything, int64(99), order.StatusCanceled).
			Return(nil, shared.ErrOrderNotFound)
		service := NewService(repo, snapshot.NewMemoryStore(), nil)

		_, err := service.UpdateStatus(ctx, 99, "CANCELED")
		assert.ErrorIs(t, err, shared.ErrOrderNotFound)
	})
}

func TestList(t *testing.T) {
	repo := new(mockOrderRepository)
	repo.On("List", mock.Anything, mock.Anything).Return(shared.Paginated[order.Order]{
		Items: []order.Order{{ID: 2}, {ID: 1}},
		Total: 2, Page: 1, PageSize: 20, TotalPages: 1,
	}, nil)
	service := NewService(repo, snapshot.NewMemoryStore(), nil)

	page, err := service.List(context.Background(), shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.Items[0].ID)
}
