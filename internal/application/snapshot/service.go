package snapshot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
)

// Service mediates between the HTTP layer and the snapshot store. Writes are
// full replacements; an empty payload legitimately clears the snapshot.
type Service struct {
	store  catalog.SnapshotStore
	logger *zap.Logger
}

// NewService creates a snapshot service.
func NewService(store catalog.SnapshotStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// ReplaceCatalog swaps in a new product catalog and returns the item count.
func (s *Service) ReplaceCatalog(ctx context.Context, items []catalog.Item) (int, error) {
	if err := s.store.ReplaceCatalog(ctx, items); err != nil {
		return 0, fmt.Errorf("replacing catalog snapshot: %w", err)
	}
	s.logger.Info("catalog snapshot replaced", zap.Int("items", len(items)))
	return len(items), nil
}

// Catalog returns the current product catalog.
func (s *Service) Catalog(ctx context.Context) ([]catalog.Item, error) {
	items, err := s.store.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog snapshot: %w", err)
	}
	return items, nil
}

// ReplaceBalances swaps in a new customer ledger and returns the row count.
func (s *Service) ReplaceBalances(ctx context.Context, balances []catalog.CustomerBalance) (int, error) {
	if err := s.store.ReplaceBalances(ctx, balances); err != nil {
		return 0, fmt.Errorf("replacing ledger snapshot: %w", err)
	}
	s.logger.Info("ledger snapshot replaced", zap.Int("rows", len(balances)))
	return len(balances), nil
}

// Balances returns the current customer ledger.
func (s *Service) Balances(ctx context.Context) ([]catalog.CustomerBalance, error) {
	balances, err := s.store.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ledger snapshot: %w", err)
	}
	return balances, nil
}
