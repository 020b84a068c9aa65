package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/senkronix/b2b-bridge/internal/domain/shared"
)

// OrderStatus represents the lifecycle state of a customer order
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCanceled   OrderStatus = "CANCELED"
	StatusReturned   OrderStatus = "RETURNED"
)

// DefaultCustomerName is recorded when the caller does not identify the
// customer.
const DefaultCustomerName = "Bilinmeyen Cari"

// IsValid checks whether the status is one of the known lifecycle states.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusCanceled, StatusReturned:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// ParseStatus normalizes a textual status to the enum. Matching is
// case-insensitive because the value arrives from operator tooling.
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.NewDomainError("INVALID_INPUT", "unknown order status: "+raw)
	}
	return s, nil
}

// Order is a customer order captured through the portal. The total is always
// derived from the items; values supplied by callers are ignored.
type Order struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerName string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	Status       OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OrderItem is a single line of an order.
type OrderItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64           `gorm:"index;not null" json:"-"`
	ProductCode string          `gorm:"type:varchar(64);not null" json:"product_code"`
	ProductName string          `gorm:"type:varchar(255)" json:"product_name"`
	Barcode     string          `gorm:"type:varchar(64)" json:"barcode"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
}

// LineTotal returns quantity times unit price for this line.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrderItem validates and builds one order line.
func NewOrderItem(productCode, productName string, quantity int, unitPrice decimal.Decimal) (OrderItem, error) {
	code := strings.TrimSpace(productCode)
	if code == "" {
		return OrderItem{}, shared.NewDomainError("INVALID_LINE", "order line is missing a product code")
	}
	if quantity <= 0 {
		return OrderItem{}, shared.NewDomainError("INVALID_LINE", "order line quantity must be positive: "+code)
	}
	if unitPrice.IsNegative() {
		return OrderItem{}, shared.NewDomainError("INVALID_LINE", "order line unit price must not be negative: "+code)
	}
	return OrderItem{
		ProductCode: code,
		ProductName: strings.TrimSpace(productName),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}, nil
}

// NewOrder builds an order in the pending state and computes its total.
func NewOrder(customerName string, items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, shared.ErrEmptyOrder
	}
	name := strings.TrimSpace(customerName)
	if name == "" {
		name = DefaultCustomerName
	}
	o := &Order{
		CustomerName: name,
		Status:       StatusPending,
		Items:        items,
		CreatedAt:    time.Now(),
	}
	o.recalculateTotal()
	return o, nil
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	o.TotalAmount = total
}
