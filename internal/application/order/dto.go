package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/senkronix/b2b-bridge/internal/domain/order"
)

// CreateOrderRequest is the inbound payload for placing an order. Any total
// the caller sends is accepted and discarded; the server recomputes it.
type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name"`
	Total        *decimal.Decimal   `json:"total,omitempty"`
	Items        []OrderLineRequest `json:"items"`
}

// OrderLineRequest is a single requested order line.
type OrderLineRequest struct {
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// UpdateStatusRequest carries an operator status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,orderstatus"`
}

// OrderResponse is the outbound representation of an order.
type OrderResponse struct {
	ID           int64              `json:"id"`
	CustomerName string             `json:"customer_name"`
	Status       string             `json:"status"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	Items        []OrderLineDetail  `json:"items"`
	CreatedAt    time.Time          `json:"created_at"`
}

// OrderLineDetail is the outbound representation of one order line.
type OrderLineDetail struct {
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Barcode     string          `json:"barcode,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// ToResponse maps a domain order to its API shape.
func ToResponse(o *order.Order) OrderResponse {
	items := make([]OrderLineDetail, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderLineDetail{
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Barcode:     item.Barcode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal(),
		}
	}
	return OrderResponse{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Status:       o.Status.String(),
		TotalAmount:  o.TotalAmount,
		Items:        items,
		CreatedAt:    o.CreatedAt,
	}
}
