package catalog

import "context"

// SnapshotStore holds the latest published catalog and ledger. Each write is
// a full replacement; there is no incremental update.
type SnapshotStore interface {
	ReplaceCatalog(ctx context.Context, items []Item) error
	Catalog(ctx context.Context) ([]Item, error)
	ReplaceBalances(ctx context.Context, balances []CustomerBalance) error
	Balances(ctx context.Context) ([]CustomerBalance, error)
}
