package catalog

import (
	"path"
	"regexp"

	"github.com/shopspring/decimal"
)

// PlaceholderImagePath is published for products whose image could not be
// located or downloaded.
const PlaceholderImagePath = "images/placeholder.png"

// Item is a single sellable product as published to the portal.
type Item struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Price     decimal.Decimal `json:"price"`
	GroupCode string          `json:"group"`
	Barcode   string          `json:"barcode"`
	ImagePath string          `json:"imagePath"`
}

// CustomerBalance is one row of the customer ledger as published to the portal.
type CustomerBalance struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Net       decimal.Decimal `json:"net"`
	GroupCode string          `json:"group"`
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// SanitizeCode maps a product code to a filesystem-safe token. Product codes
// can contain slashes and other separators that must not leak into paths.
func SanitizeCode(code string) string {
	return unsafeFilenameChars.ReplaceAllString(code, "_")
}

// DefaultImagePath returns the canonical image reference for a product code.
// The reference is computed deterministically whether or not the file exists;
// image resolution later replaces it with the real extension or the
// placeholder.
func DefaultImagePath(code string) string {
	return path.Join("images", "product_"+SanitizeCode(code)+".png")
}
