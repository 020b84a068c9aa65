package snapshot

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store serves empty snapshots", func(t *testing.T) {
		store := NewMemoryStore()

		items, err := store.Catalog(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)

		balances, err := store.Balances(ctx)
		require.NoError(t, err)
		assert.Empty(t, balances)
	})

	t.Run("replace is a full overwrite", func(t *testing.T) {
		store := NewMemoryStore()

		require.NoError(t, store.ReplaceCatalog(ctx, []catalog.Item{
			{Code: "A"}, {Code: "B"},
		}))
		require.NoError(t, store.ReplaceCatalog(ctx, []catalog.Item{
			{Code: "C"},
		}))

		items, err := store.Catalog(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "C", items[0].Code)
	})

	t.Run("replacing with empty clears the snapshot", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.ReplaceCatalog(ctx, []catalog.Item{{Code: "A"}}))
		require.NoError(t, store.ReplaceCatalog(ctx, nil))

		items, err := store.Catalog(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("readers do not observe later mutations", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.ReplaceBalances(ctx, []catalog.CustomerBalance{
			{Code: "120-001", Net: decimal.NewFromInt(10)},
		}))

		first, err := store.Balances(ctx)
		require.NoError(t, err)
		require.NoError(t, store.ReplaceBalances(ctx, nil))
		assert.Len(t, first, 1)
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		store := NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = store.ReplaceCatalog(ctx, []catalog.Item{{Code: "X"}})
			}()
			go func() {
				defer wg.Done()
				_, _ = store.Catalog(ctx)
			}()
		}
		wg.Wait()
	})
}
