package order

import (
	"time"

	"tienda-be/internal/client"
	"tienda-be/internal/product"
)

type Order struct {
	ID        int64
	ClientID  int64
	Client    client.Summary
	Status    Status
	Total     float64
	CreatedAt time.Time
	Items     []OrderItem
}

// OrderItem freezes quantity, unit price and subtotal at creation time.
// Product is the live catalog projection loaded alongside the order.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice float64
	Subtotal  float64
	Product   product.Summary
}

// NewOrderItem is one requested (product, quantity) pair of a create call.
type NewOrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}
