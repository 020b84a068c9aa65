package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
	"github.com/senkronix/b2b-bridge/internal/domain/shared"
)

// BuiltinExcludedGroups are product groups that are never sellable through
// the portal regardless of operator preferences.
var BuiltinExcludedGroups = []string{"KULLANMA", "INT", "PALET"}

// excludedCustomerPrefixes filters internal and transit accounts out of the
// customer ledger.
var excludedCustomerPrefixes = []string{"GG%", "135%"}

// Reader pulls raw product and ledger rows from the ERP database. All values
// are read as text; normalization happens downstream.
type Reader struct {
	db           *sql.DB
	queryTimeout time.Duration
	logger       *zap.Logger
}

// Config holds the connection settings the reader needs.
type Config struct {
	Driver         string
	DSN            string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

// Connect opens and verifies a connection to the ERP database. An unreachable
// source maps to shared.ErrSourceUnavailable so callers can distinguish it
// from query failures.
func Connect(cfg Config, logger *zap.Logger) (*Reader, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}

	return NewReader(db, cfg.QueryTimeout, logger), nil
}

// NewReader wraps an already open connection. Used by Connect and by tests.
func NewReader(db *sql.DB, queryTimeout time.Duration, logger *zap.Logger) *Reader {
	if queryTimeout == 0 {
		queryTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{db: db, queryTimeout: queryTimeout, logger: logger}
}

// Close releases the underlying connection pool.
func (r *Reader) Close() error {
	return r.db.Close()
}

// FetchProducts reads sellable product rows: positive stock presence, a
// non-blank code, and a group outside both the built-in and the operator
// exclusion lists. Rows come back ordered by group then code so downstream
// output is stable.
func (r *Reader) FetchProducts(ctx context.Context, excludedGroups []string) ([]catalog.SourceRow, error) {
	groups := make([]string, 0, len(BuiltinExcludedGroups)+len(excludedGroups))
	groups = append(groups, BuiltinExcludedGroups...)
	groups = append(groups, excludedGroups...)

	placeholders := make([]string, len(groups))
	args := make([]any, len(groups))
	for i, g := range groups {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = g
	}

	query := fmt.Sprintf(`
		SELECT RTRIM(LTRIM(s.STOK_KODU)) AS kod,
		       s.STOK_ADI,
		       CAST(b.BAKIYE AS VARCHAR(40)) AS bakiye,
		       CAST(f.SATIS_FIAT1 AS VARCHAR(40)) AS fiyat,
		       RTRIM(LTRIM(s.GRUP_KODU)) AS grup,
		       s.BARKOD1
		FROM TBLSTSABIT s
		LEFT JOIN STOK_BAKIYE b ON b.STOK_KODU = s.STOK_KODU
		LEFT JOIN TBLSTOKFIAT f ON f.STOK_KODU = s.STOK_KODU AND f.FIAT_NO = 1
		WHERE COALESCE(b.BAKIYE, 0) <> 0
		  AND RTRIM(LTRIM(s.STOK_KODU)) <> ''
		  AND RTRIM(LTRIM(s.GRUP_KODU)) NOT IN (%s)
		ORDER BY s.GRUP_KODU, s.STOK_KODU`,
		strings.Join(placeholders, ", "))

	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("product query failed: %w", err)
	}
	defer rows.Close()

	var result []catalog.SourceRow
	for rows.Next() {
		var code, name, balance, price, group, barcode sql.NullString
		if err := rows.Scan(&code, &name, &balance, &price, &group, &barcode); err != nil {
			return nil, fmt.Errorf("product row scan failed: %w", err)
		}
		result = append(result, catalog.SourceRow{
			Code:      code.String,
			Name:      name.String,
			Balance:   balance.String,
			Price:     price.String,
			GroupCode: group.String,
			Barcode:   barcode.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("product row iteration failed: %w", err)
	}

	r.logger.Info("fetched product rows", zap.Int("count", len(result)))
	return result, nil
}

// FetchCustomerBalances reads the customer ledger, skipping internal account
// prefixes. A non-empty selectedGroups narrows the extraction to those
// customer groups; empty means all groups.
func (r *Reader) FetchCustomerBalances(ctx context.Context, selectedGroups []string) ([]catalog.BalanceRow, error) {
	conditions := make([]string, len(excludedCustomerPrefixes))
	args := make([]any, 0, len(excludedCustomerPrefixes)+len(selectedGroups))
	for i, p := range excludedCustomerPrefixes {
		conditions[i] = fmt.Sprintf("c.CARI_KOD NOT LIKE $%d", i+1)
		args = append(args, p)
	}

	groupFilter := ""
	if len(selectedGroups) > 0 {
		placeholders := make([]string, len(selectedGroups))
		for i, g := range selectedGroups {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, g)
		}
		groupFilter = fmt.Sprintf("  AND RTRIM(LTRIM(c.GRUP_KODU)) IN (%s)\n\t\t",
			strings.Join(placeholders, ", "))
	}

	query := fmt.Sprintf(`
		SELECT RTRIM(LTRIM(c.CARI_KOD)) AS kod,
		       c.CARI_ISIM,
		       CAST(c.BORC AS VARCHAR(40)) AS borc,
		       CAST(c.ALACAK AS VARCHAR(40)) AS alacak,
		       RTRIM(LTRIM(c.GRUP_KODU)) AS grup
		FROM TBLCASABIT c
		WHERE RTRIM(LTRIM(c.CARI_KOD)) <> ''
		  AND %s
		%sORDER BY c.CARI_KOD`,
		strings.Join(conditions, " AND "), groupFilter)

	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("customer ledger query failed: %w", err)
	}
	defer rows.Close()

	var result []catalog.BalanceRow
	for rows.Next() {
		var code, name, debit, credit, group sql.NullString
		if err := rows.Scan(&code, &name, &debit, &credit, &group); err != nil {
			return nil, fmt.Errorf("customer row scan failed: %w", err)
		}
		result = append(result, catalog.BalanceRow{
			Code:      code.String,
			Name:      name.String,
			Debit:     debit.String,
			Credit:    credit.String,
			GroupCode: group.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("customer row iteration failed: %w", err)
	}

	r.logger.Info("fetched customer ledger rows", zap.Int("count", len(result)))
	return result, nil
}

// DistinctProductGroups lists every product group present in the source.
// Operators use it to build the exclusion list.
func (r *Reader) DistinctProductGroups(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT RTRIM(LTRIM(GRUP_KODU)) AS grup
		FROM TBLSTSABIT
		WHERE RTRIM(LTRIM(GRUP_KODU)) <> ''
		ORDER BY grup`
	return r.distinctGroups(ctx, query)
}

// DistinctCustomerGroups lists every customer group present in the ledger,
// skipping internal account prefixes. Operators use it to narrow a ledger
// extraction.
func (r *Reader) DistinctCustomerGroups(ctx context.Context) ([]string, error) {
	conditions := make([]string, len(excludedCustomerPrefixes))
	args := make([]any, len(excludedCustomerPrefixes))
	for i, p := range excludedCustomerPrefixes {
		conditions[i] = fmt.Sprintf("CARI_KOD NOT LIKE $%d", i+1)
		args[i] = p
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT RTRIM(LTRIM(GRUP_KODU)) AS grup
		FROM TBLCASABIT
		WHERE RTRIM(LTRIM(GRUP_KODU)) <> ''
		  AND %s
		ORDER BY grup`,
		strings.Join(conditions, " AND "))
	return r.distinctGroups(ctx, query, args...)
}

func (r *Reader) distinctGroups(ctx context.Context, query string, args ...any) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("group query failed: %w", err)
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g sql.NullString
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("group row scan failed: %w", err)
		}
		if g.String != "" {
			groups = append(groups, g.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("group row iteration failed: %w", err)
	}
	return groups, nil
}
