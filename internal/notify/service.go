package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/burgerhouseweligama-hub/burger-house-sub000/internal/kafka"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/orders"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/redisx"
)

// Deduper suppresses reprocessing of an already-seen event id.
type Deduper interface {
	SeenBefore(ctx context.Context, eventID string) bool
}

// RealtimePublisher pushes the condensed payload to whoever is listening
// right now. No delivery guarantee, no replay.
type RealtimePublisher interface {
	PublishLive(ctx context.Context, payload []byte) error
}

type RedisDeduper struct {
	RDB     *redis.Client
	Service string
}

func (d *RedisDeduper) SeenBefore(ctx context.Context, eventID string) bool {
	key := fmt.Sprintf(redisx.KeyDedup, d.Service, eventID)
	if ok, _ := redisx.Exists(ctx, d.RDB, key); ok {
		return true
	}
	_ = d.RDB.Set(ctx, key, "1", redisx.TTLDedup).Err()
	return false
}

type RedisRealtime struct{ RDB *redis.Client }

func (p *RedisRealtime) PublishLive(ctx context.Context, payload []byte) error {
	return p.RDB.Publish(ctx, redisx.ChannelOrderEvents, payload).Err()
}

// Service is the notifier worker: one consumed order event fans out into
// two independent best-effort legs, the admin realtime push and the
// customer email. A failure in one leg never touches the other, and
// neither ever fails the consumed event.
type Service struct {
	Dedup    Deduper
	Realtime RealtimePublisher
	Mailer   Mailer

	// MailSent, when set, observes the boolean outcome of each email
	// attempt. The pipeline itself ignores it.
	MailSent func(orderNumber string, ok bool)
}

// HandleOrderEvent is mounted as the Kafka consumer handler.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	switch env.EventType {
	case orders.EventOrderCreated, orders.EventOrderStatusChanged:
	default:
		return nil // ignore
	}

	if s.Dedup != nil && s.Dedup.SeenBefore(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderEventPayload](env.Payload)
	if err != nil {
		return err
	}

	s.pushRealtime(ctx, p)
	s.sendEmail(ctx, p)
	return nil
}

func (s *Service) pushRealtime(ctx context.Context, p orders.OrderEventPayload) {
	if err := s.Realtime.PublishLive(ctx, kafkax.MustMarshal(p)); err != nil {
		// listeners can always poll the admin list instead
		log.Printf("realtime push failed for order %s: %v", p.OrderNumber, err)
	}
}

func (s *Service) sendEmail(ctx context.Context, p orders.OrderEventPayload) {
	o := orderFromPayload(p)
	subject, html, err := RenderEmail(o)
	if err != nil {
		log.Printf("email render failed for order %s: %v", p.OrderNumber, err)
		s.observeMail(p.OrderNumber, false)
		return
	}
	if err := s.Mailer.Send(ctx, o.Email, subject, html); err != nil {
		log.Printf("email send failed for order %s: %v", p.OrderNumber, err)
		s.observeMail(p.OrderNumber, false)
		return
	}
	s.observeMail(p.OrderNumber, true)
}

func (s *Service) observeMail(number string, ok bool) {
	if s.MailSent != nil {
		s.MailSent(number, ok)
	}
}

// orderFromPayload rebuilds just enough of the order for rendering. The
// condensed items carry no prices, so line subtotals render from the
// event's frozen total only.
func orderFromPayload(p orders.OrderEventPayload) *orders.Order {
	o := &orders.Order{
		ID:           p.OrderID,
		Number:       p.OrderNumber,
		CustomerName: p.CustomerName,
		Email:        p.Email,
		Phone:        p.Phone,
		Address:      p.Address,
		City:         p.City,
		TotalCents:   p.TotalCents,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    time.Now().UTC(),
	}
	for _, it := range p.Items {
		o.Lines = append(o.Lines, orders.OrderLine{Name: it.Name, Qty: it.Qty})
	}
	return o
}
