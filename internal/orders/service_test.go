package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countDispatcher records every dispatch so tests can assert the
// one-notification-per-genuine-change contract.
type countDispatcher struct {
	created int
	changed int
	last    *Order
}

func (d *countDispatcher) OrderCreated(_ context.Context, o *Order) {
	d.created++
	d.last = o
}

func (d *countDispatcher) OrderStatusChanged(_ context.Context, o *Order) {
	d.changed++
	d.last = o
}

type failingOrderStore struct {
	*MemoryOrderStore
}

func (s *failingOrderStore) Insert(context.Context, *Order) error {
	return errors.New("storage down")
}

type failingClearCartStore struct {
	*MemoryCartStore
}

func (s *failingClearCartStore) Clear(context.Context, string) error {
	return errors.New("cart write failed")
}

func newTestService(t *testing.T) (*Service, *MemoryOrderStore, *MemoryCartStore, *MemoryCatalog, *countDispatcher) {
	t.Helper()
	os := NewMemoryOrderStore()
	cs := NewMemoryCartStore()
	cat := NewMemoryCatalog()
	d := &countDispatcher{}
	return &Service{Orders: os, Carts: cs, Catalog: cat, Dispatcher: d}, os, cs, cat, d
}

func seedProduct(cat *MemoryCatalog, name string, price int) string {
	id := uuid.NewString()
	cat.Put(Product{ID: id, Name: name, PriceCents: price, Available: true, ImageURL: "/img/" + name + ".jpg"})
	return id
}

func validCheckout(userID string) CheckoutRequest {
	return CheckoutRequest{
		UserID:        userID,
		CustomerName:  "Nimal Perera",
		Email:         "nimal@example.com",
		Phone:         "0771234567",
		Address:       "12 Beach Road",
		City:          "Weligama",
		PostalCode:    "81700",
		PaymentMethod: PayCashOnDelivery,
	}
}

func TestCheckout_CreatesOrderAndClearsCart(t *testing.T) {
	svc, store, carts, cat, d := newTestService(t)
	ctx := context.Background()

	burger := seedProduct(cat, "Classic Beef Burger", 1000)
	fries := seedProduct(cat, "French Fries", 500)
	require.NoError(t, carts.SetLine(ctx, "u1", burger, 2))
	require.NoError(t, carts.SetLine(ctx, "u1", fries, 1))

	o, err := svc.Checkout(ctx, validCheckout("u1"))
	require.NoError(t, err)

	assert.Equal(t, 2500, o.TotalCents)
	assert.Equal(t, StatusReceived, o.Status)
	assert.Len(t, o.Lines, 2)
	assert.NotEmpty(t, o.Number)

	sum := 0
	for _, l := range o.Lines {
		sum += l.SubtotalCents()
	}
	assert.Equal(t, o.TotalCents, sum, "total must equal sum of line subtotals")

	// exactly one order persisted
	got, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Number, got.Number)

	// cart observed empty afterwards, but still existing
	c, err := carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	assert.Equal(t, 1, d.created)
	assert.Equal(t, 0, d.changed)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, store, carts, cat, _ := newTestService(t)
	ctx := context.Background()

	// a cart that exists but holds nothing must fail the same way as no
	// cart at all
	id := seedProduct(cat, "Cheese Burger", 1650)
	require.NoError(t, carts.SetLine(ctx, "u1", id, 1))
	require.NoError(t, carts.Clear(ctx, "u1"))

	_, err := svc.Checkout(ctx, validCheckout("u1"))
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.Checkout(ctx, validCheckout("never-shopped"))
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, total, err := store.List(ctx, ListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total, "no order may be created")
}

func TestCheckout_ValidationFailures(t *testing.T) {
	svc, store, carts, cat, d := newTestService(t)
	ctx := context.Background()

	id := seedProduct(cat, "Crispy Chicken Burger", 1350)
	require.NoError(t, carts.SetLine(ctx, "u1", id, 1))

	cases := []struct {
		name   string
		mutate func(*CheckoutRequest)
		want   error
	}{
		{"missing identity", func(r *CheckoutRequest) { r.UserID = "" }, ErrNoIdentity},
		{"malformed phone", func(r *CheckoutRequest) { r.Phone = "abc" }, ErrInvalidPhone},
		{"short phone", func(r *CheckoutRequest) { r.Phone = "077123" }, ErrInvalidPhone},
		{"bad email", func(r *CheckoutRequest) { r.Email = "not-an-email" }, ErrInvalidEmail},
		{"bad payment method", func(r *CheckoutRequest) { r.PaymentMethod = "card" }, ErrInvalidPayment},
		{"missing name", func(r *CheckoutRequest) { r.CustomerName = " " }, ErrMissingDelivery},
		{"missing address", func(r *CheckoutRequest) { r.Address = "" }, ErrMissingDelivery},
		{"missing city", func(r *CheckoutRequest) { r.City = "" }, ErrMissingDelivery},
		{"missing postal code", func(r *CheckoutRequest) { r.PostalCode = "" }, ErrMissingDelivery},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCheckout("u1")
			tc.mutate(&req)
			_, err := svc.Checkout(ctx, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// nothing written, nothing dispatched, cart intact
	_, total, err := store.List(ctx, ListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, d.created)
	c, err := carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())
}

func TestCheckout_PickupRelaxesDeliveryFields(t *testing.T) {
	svc, _, carts, cat, _ := newTestService(t)
	ctx := context.Background()

	id := seedProduct(cat, "Lime Soda", 400)
	require.NoError(t, carts.SetLine(ctx, "u1", id, 1))

	req := validCheckout("u1")
	req.PaymentMethod = PayStorePickup
	req.Address, req.City, req.PostalCode = "", "", ""

	o, err := svc.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, PayStorePickup, o.PaymentMethod)
}

func TestCheckout_PhoneFormats(t *testing.T) {
	svc, _, carts, cat, _ := newTestService(t)
	ctx := context.Background()
	id := seedProduct(cat, "Iced Milo", 450)

	for i, phone := range []string{"0771234567", "+94771234567"} {
		user := fmt.Sprintf("u%d", i)
		require.NoError(t, carts.SetLine(ctx, user, id, 1))
		req := validCheckout(user)
		req.Phone = phone
		_, err := svc.Checkout(ctx, req)
		assert.NoError(t, err, phone)
	}
}

func TestCheckout_TotalFrozenAfterPriceChange(t *testing.T) {
	svc, store, carts, cat, _ := newTestService(t)
	ctx := context.Background()

	burger := seedProduct(cat, "Classic Beef Burger", 1000)
	fries := seedProduct(cat, "French Fries", 500)
	require.NoError(t, carts.SetLine(ctx, "u1", burger, 2))
	require.NoError(t, carts.SetLine(ctx, "u1", fries, 1))

	o, err := svc.Checkout(ctx, validCheckout("u1"))
	require.NoError(t, err)
	require.Equal(t, 2500, o.TotalCents)

	// catalog edit after the fact must not touch the financial record
	cat.Put(Product{ID: burger, Name: "Classic Beef Burger", PriceCents: 9999, Available: true})

	got, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 2500, got.TotalCents)
	for _, l := range got.Lines {
		if l.ProductID == burger {
			assert.Equal(t, 1000, l.UnitPriceCents)
		}
	}
}

func TestCheckout_UnavailableProduct(t *testing.T) {
	svc, _, carts, cat, _ := newTestService(t)
	ctx := context.Background()

	id := uuid.NewString()
	cat.Put(Product{ID: id, Name: "Seasonal Special", PriceCents: 2000, Available: false})
	require.NoError(t, carts.SetLine(ctx, "u1", id, 1))

	_, err := svc.Checkout(ctx, validCheckout("u1"))
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCheckout_OrderWriteFails_CartUntouched(t *testing.T) {
	svc, _, carts, cat, d := newTestService(t)
	svc.Orders = &failingOrderStore{NewMemoryOrderStore()}
	ctx := context.Background()

	id := seedProduct(cat, "Onion Rings", 700)
	require.NoError(t, carts.SetLine(ctx, "u1", id, 1))

	_, err := svc.Checkout(ctx, validCheckout("u1"))
	require.Error(t, err)
	assert.False(t, IsValidation(err))

	c, err := carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, c.IsEmpty(), "failed order write must leave the cart for retry")
	assert.Zero(t, d.created)
}

func TestCheckout_CartClearFails_StillSuccess(t *testing.T) {
	svc, store, _, cat, d := newTestService(t)
	base := NewMemoryCartStore()
	svc.Carts = &failingClearCartStore{base}
	ctx := context.Background()

	id := seedProduct(cat, "Cheese Burger", 1650)
	require.NoError(t, base.SetLine(ctx, "u1", id, 1))

	o, err := svc.Checkout(ctx, validCheckout("u1"))
	require.NoError(t, err, "a stale cart is a recoverable inconsistency, not a lost order")
	assert.Equal(t, 1, d.created)

	got, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.TotalCents, got.TotalCents)
}

func makeOrder(t *testing.T, store *MemoryOrderStore, number, email string, status Status, at time.Time) *Order {
	t.Helper()
	o := &Order{
		ID:            uuid.NewString(),
		Number:        number,
		UserID:        "u1",
		CustomerName:  "Nimal Perera",
		Email:         email,
		Phone:         "0771234567",
		Status:        status,
		PaymentMethod: PayCashOnDelivery,
		TotalCents:    1000,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	require.NoError(t, store.Insert(context.Background(), o))
	return o
}

func TestUpdateStatus_HappyPath(t *testing.T) {
	svc, store, _, _, d := newTestService(t)
	ctx := context.Background()
	o := makeOrder(t, store, "BH-1", "a@b.lk", StatusReceived, time.Now().UTC())

	got, err := svc.UpdateStatus(ctx, o.ID, "preparing")
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, got.Status)
	assert.Equal(t, 1, d.changed)

	persisted, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, persisted.Status)
}

func TestUpdateStatus_TerminalIsFinal(t *testing.T) {
	svc, store, _, _, d := newTestService(t)
	ctx := context.Background()

	for _, terminal := range []Status{StatusDelivered, StatusPickedUp, StatusCancelled} {
		for _, target := range []string{"order_received", "preparing", "out_for_delivery", "cancelled", "delivered"} {
			o := makeOrder(t, store, "BH-"+uuid.NewString()[:8], "a@b.lk", terminal, time.Now().UTC())

			_, err := svc.UpdateStatus(ctx, o.ID, target)
			assert.ErrorIs(t, err, ErrTerminalStatus, "%s -> %s", terminal, target)

			got, err := store.Get(ctx, o.ID)
			require.NoError(t, err)
			assert.Equal(t, terminal, got.Status, "status must be left unchanged")
		}
	}
	assert.Zero(t, d.changed)
}

func TestUpdateStatus_NoOpDoesNotDispatch(t *testing.T) {
	svc, store, _, _, d := newTestService(t)
	ctx := context.Background()
	o := makeOrder(t, store, "BH-2", "a@b.lk", StatusPreparing, time.Now().UTC())

	got, err := svc.UpdateStatus(ctx, o.ID, "preparing")
	require.NoError(t, err, "setting the current value is an accepted no-op")
	assert.Equal(t, StatusPreparing, got.Status)
	assert.Zero(t, d.changed, "a no-op must not re-trigger a notification")
}

func TestUpdateStatus_UnknownToken(t *testing.T) {
	svc, store, _, _, _ := newTestService(t)
	ctx := context.Background()
	o := makeOrder(t, store, "BH-3", "a@b.lk", StatusReceived, time.Now().UTC())

	_, err := svc.UpdateStatus(ctx, o.ID, "SHIPPED")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	got, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, got.Status)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	_, err := svc.UpdateStatus(context.Background(), "no-such-id", "preparing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatus_ConcurrentConflict(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()
	o := makeOrder(t, store, "BH-4", "a@b.lk", StatusReceived, time.Now().UTC())

	// first staff member wins the compare-and-set
	require.NoError(t, store.UpdateStatus(ctx, o.ID, StatusReceived, StatusPreparing, time.Now().UTC()))
	// second one raced from the same prior state and must lose
	err := store.UpdateStatus(ctx, o.ID, StatusReceived, StatusCancelled, time.Now().UTC())
	assert.ErrorIs(t, err, ErrStatusConflict)

	got, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, got.Status)
}

func TestListOrders_Pagination(t *testing.T) {
	svc, store, _, _, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		makeOrder(t, store, fmt.Sprintf("BH-%03d", i), "a@b.lk", StatusReceived, base.Add(time.Duration(i)*time.Minute))
	}

	p1, err := svc.ListOrders(ctx, ListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	p2, err := svc.ListOrders(ctx, ListFilter{Page: 2, PageSize: 10})
	require.NoError(t, err)

	assert.Len(t, p1.Orders, 10)
	assert.Len(t, p2.Orders, 10)
	assert.Equal(t, 25, p2.Total)
	assert.Equal(t, 3, p2.TotalPages)

	seen := map[string]bool{}
	for _, o := range p1.Orders {
		seen[o.ID] = true
	}
	for _, o := range p2.Orders {
		assert.False(t, seen[o.ID], "page 2 must be disjoint from page 1")
	}

	// strictly newest-first within and across pages
	all := append(append([]Order{}, p1.Orders...), p2.Orders...)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
	}
	assert.Equal(t, "BH-024", p1.Orders[0].Number)

	p3, err := svc.ListOrders(ctx, ListFilter{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, p3.Orders, 5)
}

func TestListOrders_SearchAndFilter(t *testing.T) {
	svc, store, _, _, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	makeOrder(t, store, "BH-20260801-AAAA", "sunil@example.com", StatusReceived, now)
	makeOrder(t, store, "BH-20260801-BBBB", "kamala@example.com", StatusPreparing, now.Add(time.Minute))
	makeOrder(t, store, "BH-20260802-AABB", "sunil@other.lk", StatusPreparing, now.Add(2*time.Minute))

	res, err := svc.ListOrders(ctx, ListFilter{Search: "aaaa", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "BH-20260801-AAAA", res.Orders[0].Number)

	res, err = svc.ListOrders(ctx, ListFilter{Search: "SUNIL", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, res.Orders, 2)

	res, err = svc.ListOrders(ctx, ListFilter{Status: StatusPreparing, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, res.Orders, 2)

	_, err = svc.ListOrders(ctx, ListFilter{Status: "bogus", Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestListOrders_ClampsPageSize(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	res, err := svc.ListOrders(context.Background(), ListFilter{Page: 0, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 100, res.PageSize)
}

func TestHistory_NewestFirstOwnOrdersOnly(t *testing.T) {
	svc, store, _, _, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := makeOrder(t, store, "BH-OLD", "a@b.lk", StatusDelivered, now.Add(-time.Hour))
	newer := makeOrder(t, store, "BH-NEW", "a@b.lk", StatusReceived, now)

	// someone else's order must never show up
	require.NoError(t, store.Insert(ctx, &Order{
		ID: uuid.NewString(), Number: "BH-OTHER", UserID: "u2",
		Email: "c@d.lk", Status: StatusReceived, CreatedAt: now, UpdatedAt: now,
	}))

	got, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.Number, got[0].Number)
	assert.Equal(t, old.Number, got[1].Number)

	_, err = svc.History(ctx, "")
	assert.ErrorIs(t, err, ErrNoIdentity)
}
