package notify

import (
	"context"
	"log"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/burgerhouseweligama-hub/burger-house-sub000/internal/kafka"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/orders"
)

// Publisher is the async event sink; *kafka.Producer satisfies it.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// EventDispatcher turns committed order changes into events on the order
// topic. Publishing is fire-and-forget: the caller's request path never
// waits on, or learns about, broker failures.
type EventDispatcher struct {
	Producer Publisher
	Service  string
}

func (d *EventDispatcher) OrderCreated(ctx context.Context, o *orders.Order) {
	d.dispatch(ctx, orders.EventOrderCreated, "order_created", o)
}

func (d *EventDispatcher) OrderStatusChanged(ctx context.Context, o *orders.Order) {
	d.dispatch(ctx, orders.EventOrderStatusChanged, "status_changed", o)
}

func (d *EventDispatcher) dispatch(ctx context.Context, eventType, kind string, o *orders.Order) {
	// Template check sits at this boundary: a status without a message
	// template is a configuration bug, and emitting the event anyway would
	// turn it into a runtime failure downstream.
	if !HasTemplate(o.Status) {
		log.Printf("dispatch refused: status %q has no template (order %s)", o.Status, o.Number)
		return
	}

	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      d.Service,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: o.ID,
		Payload:       kafkax.MustMarshal(orders.NewOrderEventPayload(kind, o)),
	}
	d.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

var _ orders.Dispatcher = (*EventDispatcher)(nil)
