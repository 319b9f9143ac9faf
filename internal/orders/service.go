package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stores the service depends on. Postgres implementations live in this
// package (repo*.go); memory.go has in-process ones for tests and local dev.

type OrderStore interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	// UpdateStatus is a conditional write: it applies only when the stored
	// status still equals from, and returns ErrStatusConflict otherwise.
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error
	List(ctx context.Context, f ListFilter) ([]Order, int, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}

type CartStore interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	SetLine(ctx context.Context, userID, productID string, qty int) error
	RemoveLine(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

// Catalog is the read-only collaborator that owns products and categories.
type Catalog interface {
	Product(ctx context.Context, id string) (*Product, error)
}

// Dispatcher receives exactly one call per genuine state change. It must
// not block and must never return the failure of a side effect.
type Dispatcher interface {
	OrderCreated(ctx context.Context, o *Order)
	OrderStatusChanged(ctx context.Context, o *Order)
}

type Service struct {
	Orders     OrderStore
	Carts      CartStore
	Catalog    Catalog
	Dispatcher Dispatcher
}

type CheckoutRequest struct {
	UserID        string
	CustomerName  string
	Email         string
	Phone         string
	Address       string
	City          string
	PostalCode    string
	Lat           *float64
	Lng           *float64
	PaymentMethod PaymentMethod
}

// Local mobile numbers: 07XXXXXXXX or +947XXXXXXXX.
var phoneRe = regexp.MustCompile(`^(?:\+94|0)7\d{8}$`)

func (r *CheckoutRequest) validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrNoIdentity
	}
	if !phoneRe.MatchString(strings.TrimSpace(r.Phone)) {
		return ErrInvalidPhone
	}
	if e := strings.TrimSpace(r.Email); e == "" || !strings.Contains(e, "@") {
		return ErrInvalidEmail
	}
	if !r.PaymentMethod.Valid() {
		return ErrInvalidPayment
	}
	if strings.TrimSpace(r.CustomerName) == "" {
		return fmt.Errorf("%w: name", ErrMissingDelivery)
	}
	// Pickup orders reserve at the counter: no address to validate.
	if r.PaymentMethod == PayStorePickup {
		return nil
	}
	for _, f := range []struct{ name, v string }{
		{"address", r.Address},
		{"city", r.City},
		{"postal code", r.PostalCode},
	} {
		if strings.TrimSpace(f.v) == "" {
			return fmt.Errorf("%w: %s", ErrMissingDelivery, f.name)
		}
	}
	return nil
}

// Checkout drains the caller's cart into a new immutable order.
//
// Order of effects: snapshot prices from the catalog, write the order, then
// clear the cart, then dispatch. A failed order write leaves the cart
// untouched so the customer can retry. A failed cart clear after a durable
// order write is reported as success - the order is the financial source of
// truth and the stale cart heals on its next mutation.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	cart, err := s.Carts.Get(ctx, req.UserID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	// Evaluated here, right before snapshotting, not only at request entry:
	// a concurrent checkout may have drained the cart since the request
	// started, and that must read as "cart became empty".
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	now := time.Now().UTC()
	o := &Order{
		ID:            uuid.NewString(),
		Number:        NewOrderNumber(now),
		UserID:        req.UserID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		Address:       strings.TrimSpace(req.Address),
		City:          strings.TrimSpace(req.City),
		PostalCode:    strings.TrimSpace(req.PostalCode),
		Lat:           req.Lat,
		Lng:           req.Lng,
		Status:        StatusReceived,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Denormalize each cart line at this instant. Prices come from the
	// catalog now, never from the cart.
	for _, cl := range cart.Lines {
		if cl.Qty < 1 {
			return nil, ErrInvalidQty
		}
		p, err := s.Catalog.Product(ctx, cl.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", cl.ProductID, err)
		}
		if !p.Available {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, p.Name)
		}
		o.Lines = append(o.Lines, OrderLine{
			ID:             uuid.NewString(),
			OrderID:        o.ID,
			ProductID:      p.ID,
			Name:           p.Name,
			UnitPriceCents: p.PriceCents,
			Qty:            cl.Qty,
			ImageURL:       p.ImageURL,
		})
		o.TotalCents += p.PriceCents * cl.Qty
	}

	if err := s.Orders.Insert(ctx, o); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	// Only after the order write is durable. Failure here is the one
	// accepted inconsistency: logged, not surfaced.
	if err := s.Carts.Clear(ctx, req.UserID); err != nil {
		log.Printf("order %s created but cart clear failed for user %s: %v", o.Number, req.UserID, err)
	}

	s.Dispatcher.OrderCreated(ctx, o)
	return o, nil
}

// UpdateStatus applies one transition of the fulfillment state machine.
// Terminal statuses reject everything; setting the current value again is
// an accepted no-op that does not re-dispatch.
func (s *Service) UpdateStatus(ctx context.Context, orderID, token string) (*Order, error) {
	to, err := ParseStatus(token)
	if err != nil {
		return nil, err
	}

	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrTerminalStatus, o.Status)
	}
	if o.Status == to {
		return o, nil // idempotent, no notification
	}

	now := time.Now().UTC()
	// Conditional on the status we read, so two staff members racing from
	// the same prior state cannot both win.
	if err := s.Orders.UpdateStatus(ctx, orderID, o.Status, to, now); err != nil {
		return nil, err
	}
	o.Status = to
	o.UpdatedAt = now

	s.Dispatcher.OrderStatusChanged(ctx, o)
	return o, nil
}

type ListFilter struct {
	Search   string // matches order number or contact email, case-insensitive
	Status   Status // empty = all
	Page     int
	PageSize int
}

type ListResult struct {
	Orders     []Order `json:"orders"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListOrders is the staff read path. Never mutates state.
func (s *Service) ListOrders(ctx context.Context, f ListFilter) (*ListResult, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	if f.Status != "" {
		if _, err := ParseStatus(string(f.Status)); err != nil {
			return nil, err
		}
	}

	items, total, err := s.Orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	pages := total / f.PageSize
	if total%f.PageSize != 0 {
		pages++
	}
	return &ListResult{
		Orders:     items,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: pages,
	}, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.Orders.Get(ctx, id)
}

func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	return s.Orders.GetByNumber(ctx, number)
}

// History returns the caller's own orders, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrNoIdentity
	}
	return s.Orders.ListByUser(ctx, userID)
}
