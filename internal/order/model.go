package order

import (
	"time"

	"kopimas-be/internal/catalog"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID           int64           `json:"id"`
	CustomerName string          `json:"customerName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	IsPaid       bool            `json:"isPaid"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Items        []OrderItem     `json:"orderItems"`
}

// OrderItem captures the product price at the time of sale; it does not follow
// later catalog price changes.
type OrderItem struct {
	ID        int64            `json:"id"`
	OrderID   int64            `json:"orderId"`
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Product   *catalog.Product `json:"product,omitempty"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type ItemInput struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderInput struct {
	CustomerName string      `json:"customerName"`
	Items        []ItemInput `json:"orderItems"`
}

// UpdateOrderInput: a nil Items leaves the item set and total untouched; an
// empty non-nil Items replaces the set with nothing and zeroes the total.
type UpdateOrderInput struct {
	CustomerName *string      `json:"customerName"`
	Items        *[]ItemInput `json:"orderItems"`
}

// Total is the single total-recalculation path; every mutation that changes
// the item set derives the order total from it.
func Total(items []ItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
