package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SourceRow is a raw product row as read from the ERP database, before any
// cleanup. All fields arrive as text because the source collation mangles
// both encodings and numerics.
type SourceRow struct {
	Code      string
	Name      string
	Balance   string
	Price     string
	GroupCode string
	Barcode   string
}

// BalanceRow is a raw customer ledger row from the ERP database.
type BalanceRow struct {
	Code      string
	Name      string
	Debit     string
	Credit    string
	GroupCode string
}

// Warning records a non-fatal defect found while normalizing a source row.
// The row is still published; the warning surfaces in logs and sync results.
type Warning struct {
	Code  string `json:"code"`
	Field string `json:"field"`
	Value string `json:"value"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: unparseable %s value %q, defaulted to zero", w.Code, w.Field, w.Value)
}

// turkishRepairer fixes the characters the source's legacy codepage mangles.
// The mapping is exact and idempotent: none of the replacement characters
// appear on the left-hand side.
var turkishRepairer = strings.NewReplacer(
	"Ý", "İ",
	"ý", "i",
	"Þ", "Ş",
	"þ", "ş",
	"Ð", "Ğ",
	"ð", "ğ",
)

// RepairText applies the Turkish charset repair to free-text fields.
func RepairText(s string) string {
	return turkishRepairer.Replace(s)
}

// ParseAmount converts a textual numeric from the source into an exact
// decimal. Scientific notation such as "0E-8" is accepted. Empty and
// unparseable values yield zero; the caller decides whether that deserves a
// warning.
func ParseAmount(s string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// NormalizeRow turns a raw source row into a publishable catalog item.
// Charset repair touches only the name and group fields; codes and barcodes
// pass through verbatim. Rows with a blank code are unusable and rejected.
func NormalizeRow(row SourceRow) (Item, []Warning, bool) {
	code := strings.TrimSpace(row.Code)
	if code == "" {
		return Item{}, nil, false
	}

	var warnings []Warning
	balance, ok := ParseAmount(row.Balance)
	if !ok {
		warnings = append(warnings, Warning{Code: code, Field: "balance", Value: row.Balance})
	}
	price, ok := ParseAmount(row.Price)
	if !ok {
		warnings = append(warnings, Warning{Code: code, Field: "price", Value: row.Price})
	}

	item := Item{
		Code:      code,
		Name:      RepairText(strings.TrimSpace(row.Name)),
		Balance:   balance,
		Price:     price,
		GroupCode: RepairText(strings.TrimSpace(row.GroupCode)),
		Barcode:   strings.TrimSpace(row.Barcode),
		ImagePath: DefaultImagePath(code),
	}
	return item, warnings, true
}

// NormalizeBalanceRow turns a raw ledger row into a publishable customer
// balance. Net is always recomputed as debit minus credit.
func NormalizeBalanceRow(row BalanceRow) (CustomerBalance, []Warning, bool) {
	code := strings.TrimSpace(row.Code)
	if code == "" {
		return CustomerBalance{}, nil, false
	}

	var warnings []Warning
	debit, ok := ParseAmount(row.Debit)
	if !ok {
		warnings = append(warnings, Warning{Code: code, Field: "debit", Value: row.Debit})
	}
	credit, ok := ParseAmount(row.Credit)
	if !ok {
		warnings = append(warnings, Warning{Code: code, Field: "credit", Value: row.Credit})
	}

	cb := CustomerBalance{
		Code:      code,
		Name:      RepairText(strings.TrimSpace(row.Name)),
		Debit:     debit,
		Credit:    credit,
		Net:       debit.Sub(credit),
		GroupCode: RepairText(strings.TrimSpace(row.GroupCode)),
	}
	return cb, warnings, true
}
