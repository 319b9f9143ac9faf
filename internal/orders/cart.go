package orders

import (
	"context"
	"errors"
	"fmt"
)

// CartService owns pre-purchase cart mutation. The cart is created lazily
// on first add and survives until a checkout drains it.
type CartService struct {
	Carts   CartStore
	Catalog Catalog
}

func (s *CartService) Get(ctx context.Context, userID string) (*Cart, error) {
	if userID == "" {
		return nil, ErrNoIdentity
	}
	c, err := s.Carts.Get(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return &Cart{UserID: userID}, nil
	}
	return c, err
}

// Add puts qty more of a product into the cart, merging into an existing
// line so a product never appears twice.
func (s *CartService) Add(ctx context.Context, userID, productID string, qty int) error {
	if userID == "" {
		return ErrNoIdentity
	}
	if qty < 1 {
		return ErrInvalidQty
	}
	p, err := s.Catalog.Product(ctx, productID)
	if err != nil {
		return err
	}
	if !p.Available {
		return fmt.Errorf("%w: %s", ErrProductUnavailable, p.Name)
	}

	current := 0
	if c, err := s.Carts.Get(ctx, userID); err == nil {
		for _, l := range c.Lines {
			if l.ProductID == productID {
				current = l.Qty
				break
			}
		}
	} else if !errors.Is(err, ErrCartNotFound) {
		return err
	}
	return s.Carts.SetLine(ctx, userID, productID, current+qty)
}

// SetQty overwrites a line's quantity. Removing is explicit, not qty 0.
func (s *CartService) SetQty(ctx context.Context, userID, productID string, qty int) error {
	if userID == "" {
		return ErrNoIdentity
	}
	if qty < 1 {
		return ErrInvalidQty
	}
	if _, err := s.Catalog.Product(ctx, productID); err != nil {
		return err
	}
	return s.Carts.SetLine(ctx, userID, productID, qty)
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return ErrNoIdentity
	}
	return s.Carts.RemoveLine(ctx, userID, productID)
}
