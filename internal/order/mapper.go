package order

import (
	"time"

	"tienda-be/internal/client"
	"tienda-be/internal/product"
)

// Response is the persisted/serialized shape of an order.
type Response struct {
	ID        int64          `json:"id"`
	Client    client.Summary `json:"client"`
	Items     []ItemResponse `json:"lines"`
	Total     float64        `json:"total"`
	Status    Status         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

type ItemResponse struct {
	Product   product.Summary `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice float64         `json:"unitPrice"`
	Subtotal  float64         `json:"subtotal"`
}

// Summary is the trimmed projection used when listing a client's orders.
type Summary struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Total     float64   `json:"total"`
	Status    Status    `json:"status"`
	ItemCount int       `json:"itemCount"`
}

func ToResponse(o *Order) Response {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemResponse{
			Product:   it.Product,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return Response{
		ID:        o.ID,
		Client:    o.Client,
		Items:     items,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}

func ToResponses(orders []*Order) []Response {
	out := make([]Response, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToResponse(o))
	}
	return out
}

// ToSummary aggregates the total quantity across lines, the way client
// detail responses list orders without their full line detail.
func ToSummary(o *Order) Summary {
	count := 0
	for _, it := range o.Items {
		count += it.Quantity
	}
	return Summary{
		ID:        o.ID,
		CreatedAt: o.CreatedAt,
		Total:     o.Total,
		Status:    o.Status,
		ItemCount: count,
	}
}
