package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g. "order-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ItemSummary is the condensed line shape pushed to admin listeners:
// name and quantity only, no prices.
type ItemSummary struct {
	Name string `json:"name"`
	Qty  int    `json:"quantity"`
}

// OrderEventPayload is shared by both event types; Kind distinguishes them
// downstream where only the envelope header has been read.
type OrderEventPayload struct {
	Kind         string        `json:"kind"` // "order_created" | "status_changed"
	OrderID      string        `json:"orderId"`
	OrderNumber  string        `json:"orderNumber"`
	TotalCents   int           `json:"totalAmount"`
	Status       Status        `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	CustomerName string        `json:"customerName"`
	Phone        string        `json:"phone"`
	Email        string        `json:"email"`
	Address      string        `json:"address,omitempty"`
	City         string        `json:"city,omitempty"`
	Items        []ItemSummary `json:"items"`
}

func NewOrderEventPayload(kind string, o *Order) OrderEventPayload {
	items := make([]ItemSummary, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, ItemSummary{Name: l.Name, Qty: l.Qty})
	}
	return OrderEventPayload{
		Kind:         kind,
		OrderID:      o.ID,
		OrderNumber:  o.Number,
		TotalCents:   o.TotalCents,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Email:        o.Email,
		Address:      o.Address,
		City:         o.City,
		Items:        items,
	}
}
