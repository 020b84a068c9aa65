package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) FetchProducts(ctx context.Context, excludedGroups []string) ([]catalog.SourceRow, error) {
	args := m.Called(ctx, excludedGroups)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.SourceRow), args.Error(1)
}

func (m *mockReader) FetchCustomerBalances(ctx context.Context, selectedGroups []string) ([]catalog.BalanceRow, error) {
	args := m.Called(ctx, selectedGroups)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.BalanceRow), args.Error(1)
}

func (m *mockReader) DistinctProductGroups(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockReader) DistinctCustomerGroups(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCatalog(ctx context.Context, items []catalog.Item) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *mockPublisher) PublishBalances(ctx context.Context, balances []catalog.CustomerBalance) error {
	args := m.Called(ctx, balances)
	return args.Error(0)
}

type stubResolver struct {
	calls int
}

func (r *stubResolver) Resolve(_ context.Context, code, _, _ string) string {
	r.calls++
	return "images/product_" + catalog.SanitizeCode(code) + ".jpg"
}

type stubPrefs struct {
	groups []string
	err    error
}

func (p *stubPrefs) ExcludedGroups() []string { return p.groups }
func (p *stubPrefs) SetExcludedGroups(groups []string) error {
	if p.err != nil {
		return p.err
	}
	p.groups = groups
	return nil
}

func TestRunCatalogCycle(t *testing.T) {
	sourceRows := []catalog.SourceRow{
		{Code: "Z-1", Name: "SEKER", Balance: "5", Price: "2.50", GroupCode: "SEKER"},
		{Code: "A-1", Name: "BÝBER", Balance: "3", Price: "17.50", GroupCode: "BAHARAT", Barcode: "869001"},
		{Code: "  ", Name: "HAYALET"},
		{Code: "B-1", Name: "BOZUK", Balance: "xx", Price: "1", GroupCode: "BAHARAT"},
	}

	t.Run("full cycle publishes curated items", func(t *testing.T) {
		reader := new(mockReader)
		pub := new(mockPublisher)
		resolver := &stubResolver{}
		prefs := &stubPrefs{groups: []string{"SARF"}}

		reader.On("FetchProducts", mock.Anything, []string{"SARF"}).Return(sourceRows, nil)

		var published []catalog.Item
		pub.On("PublishCatalog", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			published = args.Get(1).([]catalog.Item)
		}).Return(nil)

		service := NewService(reader, resolver, pub, prefs, nil)
		result, err := service.RunCatalogCycle(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 3, result.Items)
		assert.Equal(t, 1, result.Skipped)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "B-1", result.Warnings[0].Code)

		// Curated ordering: group, then code
		require.Len(t, published, 3)
		assert.Equal(t, "A-1", published[0].Code)
		assert.Equal(t, "B-1", published[1].Code)
		assert.Equal(t, "Z-1", published[2].Code)

		// Name repair and image references applied
		assert.Equal(t, "BİBER", published[0].Name)
		assert.Equal(t, "images/product_A-1.jpg", published[0].ImagePath)
		assert.Equal(t, 3, resolver.calls)

		reader.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("extraction failure aborts before publishing", func(t *testing.T) {
		reader := new(mockReader)
		pub := new(mockPublisher)

		reader.On("FetchProducts", mock.Anything, mock.Anything).
			Return(nil, errors.New("source offline"))

		service := NewService(reader, &stubResolver{}, pub, &stubPrefs{}, nil)
		_, err := service.RunCatalogCycle(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "extraction failed")
		pub.AssertNotCalled(t, "PublishCatalog", mock.Anything, mock.Anything)
	})

	t.Run("publish failure is surfaced", func(t *testing.T) {
		reader := new(mockReader)
		pub := new(mockPublisher)

		reader.On("FetchProducts", mock.Anything, mock.Anything).Return(sourceRows, nil)
		pub.On("PublishCatalog", mock.Anything, mock.Anything).Return(errors.New("401"))

		service := NewService(reader, &stubResolver{}, pub, &stubPrefs{}, nil)
		_, err := service.RunCatalogCycle(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "publish failed")
	})

	t.Run("cancellation stops image resolution", func(t *testing.T) {
		reader := new(mockReader)
		pub := new(mockPublisher)

		reader.On("FetchProducts", mock.Anything, mock.Anything).Return(sourceRows, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		service := NewService(reader, &stubResolver{}, pub, &stubPrefs{}, nil)
		_, err := service.RunCatalogCycle(ctx)

		require.Error(t, err)
		assert.True(t, IsCanceled(err))
		pub.AssertNotCalled(t, "PublishCatalog", mock.Anything, mock.Anything)
	})
}

func TestRunLedgerCycle(t *testing.T) {
	t.Run("publishes normalized balances", func(t *testing.T) {
		reader := new(mockReader)
		pub := new(mockPublisher)

		reader.On("FetchCustomerBalances", mock.Anything, []string(nil)).Return([]catalog.BalanceRow{
			{Code: "120-001", Name: "ÞÝRKET", Debit: "100", Credit: "40", GroupCode: "TOPTAN"},
		}, nil)

		var published []catalog.CustomerBalance
		pub.On("PublishBalances", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			published = args.Get(1).([]catalog.CustomerBalance)
		}).Return(nil)

		service := NewService(reader, &stubResolver{}, pub, &stubPrefs{}, nil)
		result, err := service.RunLedgerCycle(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, result.Items)
		require.Len(t, published, 1)
		assert.Equal(t, "ŞİRKET", published[0].Name)
		assert.True(t, published[0].Net.IntPart() == 60)
	})

	t.Run("selected customer groups reach the reader", func(t *testing.T) {
		reader := new(mockReader)
		pub := new(mockPublisher)

		reader.On("FetchCustomerBalances", mock.Anything, []string{"TOPTAN"}).
			Return([]catalog.BalanceRow{}, nil)
		pub.On("PublishBalances", mock.Anything, mock.Anything).Return(nil)

		service := NewService(reader, &stubResolver{}, pub, &stubPrefs{}, nil)
		service.SetLedgerGroups([]string{"TOPTAN"})

		_, err := service.RunLedgerCycle(context.Background())
		require.NoError(t, err)
		reader.AssertExpectations(t)
	})
}

func TestRunImageBackfill(t *testing.T) {
	sourceRows := []catalog.SourceRow{
		{Code: "A-1", Name: "BÝBER", Balance: "3", Price: "17.50", GroupCode: "BAHARAT", Barcode: "869001"},
		{Code: "Z-1", Name: "SEKER", Balance: "5", Price: "2.50", GroupCode: "SEKER"},
		{Code: "  ", Name: "HAYALET"},
	}

	t.Run("resolves every item without publishing", func(t *testing.T) {
		reader := new(mockReader)
		pub := new(mockPublisher)
		resolver := &stubResolver{}

		reader.On("FetchProducts", mock.Anything, mock.Anything).Return(sourceRows, nil)

		service := NewService(reader, resolver, pub, &stubPrefs{}, nil)
		result, err := service.RunImageBackfill(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, result.Items)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 2, resolver.calls)
		pub.AssertNotCalled(t, "PublishCatalog", mock.Anything, mock.Anything)
		pub.AssertNotCalled(t, "PublishBalances", mock.Anything, mock.Anything)
	})

	t.Run("cancellation stops between items", func(t *testing.T) {
		reader := new(mockReader)
		reader.On("FetchProducts", mock.Anything, mock.Anything).Return(sourceRows, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		service := NewService(reader, &stubResolver{}, new(mockPublisher), &stubPrefs{}, nil)
		_, err := service.RunImageBackfill(ctx)

		require.Error(t, err)
		assert.True(t, IsCanceled(err))
	})
}

func TestCustomerGroups(t *testing.T) {
	reader := new(mockReader)
	reader.On("DistinctCustomerGroups", mock.Anything).
		Return([]string{"PERAKENDE", "TOPTAN"}, nil)

	service := NewService(reader, &stubResolver{}, new(mockPublisher), &stubPrefs{}, nil)
	groups, err := service.CustomerGroups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"PERAKENDE", "TOPTAN"}, groups)
}

func TestExclusions(t *testing.T) {
	t.Run("set persists through the pref store", func(t *testing.T) {
		prefs := &stubPrefs{}
		service := NewService(new(mockReader), &stubResolver{}, new(mockPublisher), prefs, nil)

		require.NoError(t, service.SetExcludedGroups([]string{"SARF"}))
		assert.Equal(t, []string{"SARF"}, service.ExcludedGroups())
	})

	t.Run("persistence failure is reported", func(t *testing.T) {
		prefs := &stubPrefs{err: errors.New("disk full")}
		service := NewService(new(mockReader), &stubResolver{}, new(mockPublisher), prefs, nil)

		err := service.SetExcludedGroups([]string{"SARF"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "saving exclusions")
	})
}
