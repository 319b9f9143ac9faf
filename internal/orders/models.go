package orders

import "time"

type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Product struct {
	ID         string
	CategoryID string
	Name       string
	ImageURL   string
	PriceCents int
	Available  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Cart is mutable and scoped per customer. It is emptied, never deleted,
// when a checkout succeeds.
type Cart struct {
	UserID    string
	Lines     []CartLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cart) IsEmpty() bool { return c == nil || len(c.Lines) == 0 }

// CartLine carries no price: pricing is resolved from the catalog at
// checkout time, so an open cart never pins a stale price.
type CartLine struct {
	ProductID string
	Qty       int
}

type PaymentMethod string

const (
	PayCashOnDelivery PaymentMethod = "cash_on_delivery" // pay on fulfillment
	PayStorePickup    PaymentMethod = "store_pickup"     // reserve for pickup
)

func (p PaymentMethod) Valid() bool {
	return p == PayCashOnDelivery || p == PayStorePickup
}

// Order is the financial record: created once, then only Status, UpdatedAt
// and delivery metadata may change. TotalCents is frozen at creation and is
// never recomputed from the live catalog.
type Order struct {
	ID            string
	Number        string // human-readable, unique, immutable
	UserID        string
	CustomerName  string
	Email         string
	Phone         string
	Address       string
	City          string
	PostalCode    string
	Lat           *float64
	Lng           *float64
	Lines         []OrderLine
	TotalCents    int
	Status        Status
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderLine is a frozen snapshot of one product at order-creation time.
// Later catalog edits cannot alter it.
type OrderLine struct {
	ID             string
	OrderID        string
	ProductID      string
	Name           string
	UnitPriceCents int
	Qty            int
	ImageURL       string
}

func (l OrderLine) SubtotalCents() int { return l.UnitPriceCents * l.Qty }
