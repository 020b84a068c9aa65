package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
)

// SourceReader pulls raw rows out of the ERP database.
type SourceReader interface {
	FetchProducts(ctx context.Context, excludedGroups []string) ([]catalog.SourceRow, error)
	FetchCustomerBalances(ctx context.Context, selectedGroups []string) ([]catalog.BalanceRow, error)
	DistinctProductGroups(ctx context.Context) ([]string, error)
	DistinctCustomerGroups(ctx context.Context) ([]string, error)
}

// ImageResolver maps a product to its published image reference.
type ImageResolver interface {
	Resolve(ctx context.Context, code, name, barcode string) string
}

// Publisher pushes snapshots to the portal.
type Publisher interface {
	PublishCatalog(ctx context.Context, items []catalog.Item) error
	PublishBalances(ctx context.Context, balances []catalog.CustomerBalance) error
}

// PrefStore persists operator preferences.
type PrefStore interface {
	ExcludedGroups() []string
	SetExcludedGroups(groups []string) error
}

// Service runs end-to-end sync cycles: extract, normalize, resolve images,
// curate, publish.
type Service struct {
	reader   SourceReader
	resolver ImageResolver
	pub      Publisher
	prefs    PrefStore
	logger   *zap.Logger

	// ledgerGroups narrows the next ledger cycle to these customer groups.
	// Set before starting a cycle; empty means all groups.
	ledgerGroups []string
}

// NewService wires a sync service.
func NewService(reader SourceReader, resolver ImageResolver, pub Publisher, prefs PrefStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reader:   reader,
		resolver: resolver,
		pub:      pub,
		prefs:    prefs,
		logger:   logger,
	}
}

// RunCatalogCycle executes one full catalog sync. Cancellation is checked
// between products during image resolution, which is the long tail of a
// cycle. Images are resolved one at a time on purpose: the search backend
// throttles bursts.
func (s *Service) RunCatalogCycle(ctx context.Context) (Result, error) {
	excluded := s.prefs.ExcludedGroups()

	rows, err := s.reader.FetchProducts(ctx, excluded)
	if err != nil {
		return Result{}, fmt.Errorf("extraction failed: %w", err)
	}
	s.logger.Info("extraction complete", zap.Int("rows", len(rows)))

	var items []catalog.Item
	var warnings []catalog.Warning
	skipped := 0
	for _, row := range rows {
		item, rowWarnings, ok := catalog.NormalizeRow(row)
		if !ok {
			skipped++
			continue
		}
		warnings = append(warnings, rowWarnings...)
		items = append(items, item)
	}
	for _, w := range warnings {
		s.logger.Warn("transformation warning", zap.String("detail", w.String()))
	}
	if skipped > 0 {
		s.logger.Warn("skipped unusable rows", zap.Int("count", skipped))
	}

	for i := range items {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("cycle canceled: %w", err)
		}
		items[i].ImagePath = s.resolver.Resolve(ctx, items[i].Code, items[i].Name, items[i].Barcode)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("cycle canceled: %w", err)
	}

	curated := catalog.Curate(items, excluded)

	if err := s.pub.PublishCatalog(ctx, curated); err != nil {
		return Result{}, fmt.Errorf("publish failed: %w", err)
	}

	return Result{
		Items:    len(curated),
		Skipped:  skipped,
		Warnings: warnings,
	}, nil
}

// RunLedgerCycle publishes the customer ledger, narrowed to any selected
// customer groups. No images, no curation.
func (s *Service) RunLedgerCycle(ctx context.Context) (Result, error) {
	rows, err := s.reader.FetchCustomerBalances(ctx, s.ledgerGroups)
	if err != nil {
		return Result{}, fmt.Errorf("extraction failed: %w", err)
	}

	var balances []catalog.CustomerBalance
	var warnings []catalog.Warning
	skipped := 0
	for _, row := range rows {
		cb, rowWarnings, ok := catalog.NormalizeBalanceRow(row)
		if !ok {
			skipped++
			continue
		}
		warnings = append(warnings, rowWarnings...)
		balances = append(balances, cb)
	}
	for _, w := range warnings {
		s.logger.Warn("transformation warning", zap.String("detail", w.String()))
	}

	if err := s.pub.PublishBalances(ctx, balances); err != nil {
		return Result{}, fmt.Errorf("publish failed: %w", err)
	}

	return Result{
		Items:    len(balances),
		Skipped:  skipped,
		Warnings: warnings,
	}, nil
}

// RunImageBackfill extracts and normalizes the catalog, then resolves an
// image for every item without publishing anything. Useful for warming the
// image directory ahead of a publish, since downloads dominate cycle time.
func (s *Service) RunImageBackfill(ctx context.Context) (Result, error) {
	rows, err := s.reader.FetchProducts(ctx, s.prefs.ExcludedGroups())
	if err != nil {
		return Result{}, fmt.Errorf("extraction failed: %w", err)
	}

	var warnings []catalog.Warning
	skipped := 0
	resolved := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("cycle canceled: %w", err)
		}
		item, rowWarnings, ok := catalog.NormalizeRow(row)
		if !ok {
			skipped++
			continue
		}
		warnings = append(warnings, rowWarnings...)
		s.resolver.Resolve(ctx, item.Code, item.Name, item.Barcode)
		resolved++
	}

	return Result{
		Items:    resolved,
		Skipped:  skipped,
		Warnings: warnings,
	}, nil
}

// ProductGroups lists distinct product groups from the source for the
// operator's exclusion picker.
func (s *Service) ProductGroups(ctx context.Context) ([]string, error) {
	return s.reader.DistinctProductGroups(ctx)
}

// CustomerGroups lists distinct customer groups from the ledger for the
// operator's selection picker.
func (s *Service) CustomerGroups(ctx context.Context) ([]string, error) {
	return s.reader.DistinctCustomerGroups(ctx)
}

// SetLedgerGroups selects the customer groups the next ledger cycle extracts.
// Empty restores the full ledger.
func (s *Service) SetLedgerGroups(groups []string) {
	s.ledgerGroups = groups
}

// ExcludedGroups returns the current operator exclusion list.
func (s *Service) ExcludedGroups() []string {
	return s.prefs.ExcludedGroups()
}

// SetExcludedGroups replaces the exclusion list. The change is durable once
// this returns.
func (s *Service) SetExcludedGroups(groups []string) error {
	if err := s.prefs.SetExcludedGroups(groups); err != nil {
		return fmt.Errorf("saving exclusions: %w", err)
	}
	s.logger.Info("exclusion list updated", zap.Strings("groups", groups))
	return nil
}

// IsCanceled reports whether an error chain stems from context cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
