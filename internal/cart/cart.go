// Package cart caches the one server-owned cart per session. The backend
// computes every total; after each mutation the cache is replaced with the
// server's full response, never patched locally. Callers serialize
// mutations on a cart id; the store assumes at most one in flight.
package cart

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/magpos/magpos/internal/magento"
)

// Backend is the slice of the API client the cart store needs.
type Backend interface {
	CreateEmptyCart(ctx context.Context) (string, error)
	FetchCart(ctx context.Context, cartID string) (magento.Cart, error)
	AddProductsToCart(ctx context.Context, cartID, sku string, quantity float64) (magento.Cart, error)
	RemoveItemFromCart(ctx context.Context, cartID string, itemID int) (magento.Cart, error)
	PlaceOrder(ctx context.Context, cartID string) (string, error)
}

type Store struct {
	api Backend
	log zerolog.Logger

	cartID      string
	items       []magento.CartItem
	total       magento.Money
	err         error
	orderNumber string
	busy        bool
}

func NewStore(api Backend, log zerolog.Logger) *Store {
	return &Store{api: api, log: log.With().Str("component", "cart").Logger()}
}

// Create asks the backend for a new cart id. Must be issued once per
// session; the backend does not guarantee idempotent creation.
func (s *Store) Create(ctx context.Context) (string, error) {
	return s.api.CreateEmptyCart(ctx)
}

// Fetch reads the authoritative cart state.
func (s *Store) Fetch(ctx context.Context, cartID string) (magento.Cart, error) {
	return s.api.FetchCart(ctx, cartID)
}

// Add puts quantity of sku into the cart. Callers route quantity <= 0 to
// Remove; a non-positive quantity here is a programming error surfaced as
// validation failure rather than sent to the backend.
func (s *Store) Add(ctx context.Context, cartID, sku string, quantity float64) (magento.Cart, error) {
	if quantity <= 0 {
		return magento.Cart{}, fmt.Errorf("%w: quantity must be positive, route removals to Remove", magento.ErrValidation)
	}
	return s.api.AddProductsToCart(ctx, cartID, sku, quantity)
}

// Remove deletes a line item. Primary path is the remove mutation; if the
// backend rejects it, re-adding the SKU at quantity 0 achieves removal on
// older backends; if that also fails, a plain re-fetch keeps the cache
// honest instead of showing a stale optimistic removal.
func (s *Store) Remove(ctx context.Context, cartID string, itemID int, sku string) (magento.Cart, error) {
	c, err := s.api.RemoveItemFromCart(ctx, cartID, itemID)
	if err == nil {
		return c, nil
	}
	s.log.Warn().Err(err).Int("item_id", itemID).Msg("remove mutation failed, trying quantity 0")

	if sku != "" {
		c, qErr := s.api.AddProductsToCart(ctx, cartID, sku, 0)
		if qErr == nil {
			return c, nil
		}
		s.log.Warn().Err(qErr).Str("sku", sku).Msg("quantity 0 fallback failed, re-fetching cart")
	}
	return s.api.FetchCart(ctx, cartID)
}

// ClearAll removes every line item, strictly sequentially; the backend's
// behavior under concurrent mutations on one cart id is unspecified. A
// failed removal is logged and skipped so the rest still get an attempt.
// The returned cart is definitionally empty rather than trusting a partial
// backend sync.
func (s *Store) ClearAll(ctx context.Context, cartID string, items []magento.CartItem) (magento.Cart, error) {
	for _, item := range items {
		_, err := s.api.RemoveItemFromCart(ctx, cartID, item.NumericID())
		if err == nil {
			continue
		}
		s.log.Warn().Err(err).Str("item", item.ID.String()).Msg("remove failed during clear, trying quantity 0")
		if item.Product.SKU == "" {
			continue
		}
		if _, err := s.api.AddProductsToCart(ctx, cartID, item.Product.SKU, 0); err != nil {
			s.log.Warn().Err(err).Str("sku", item.Product.SKU).Msg("quantity 0 failed during clear, skipping item")
		}
	}
	return magento.Cart{
		ID:    cartID,
		Items: nil,
		Prices: magento.CartPrices{
			GrandTotal: magento.Money{Value: decimal.Zero},
		},
	}, nil
}

// Place submits the order. An empty cart is rejected locally; no request
// goes out and no order number is produced.
func (s *Store) Place(ctx context.Context, cartID string, itemCount int) (string, error) {
	if itemCount == 0 {
		return "", fmt.Errorf("%w: cannot place an order on an empty cart", magento.ErrValidation)
	}
	return s.api.PlaceOrder(ctx, cartID)
}

// ApplyCreate reduces a Create result.
func (s *Store) ApplyCreate(cartID string, err error) {
	s.busy = false
	if err != nil {
		s.err = err
		return
	}
	s.cartID = cartID
	s.items = nil
	s.total = magento.Money{}
	s.err = nil
}

// ApplyCart replaces the cached items and total with the server response.
func (s *Store) ApplyCart(c magento.Cart, err error) {
	s.busy = false
	if err != nil {
		s.err = err
		return
	}
	if c.ID != "" {
		s.cartID = c.ID
	}
	s.items = c.Items
	s.total = c.GrandTotal()
	s.err = nil
}

// ApplyOrder reduces a Place result. On success the local cache is purged;
// the backend retires the cart id.
func (s *Store) ApplyOrder(orderNumber string, err error) {
	s.busy = false
	if err != nil {
		s.err = err
		return
	}
	s.orderNumber = orderNumber
	s.items = nil
	s.total = magento.Money{}
	s.err = nil
}

// Begin marks a mutation in flight; the UI disables cart controls until the
// matching Apply lands.
func (s *Store) Begin() { s.busy = true; s.err = nil }

// Reset drops all local cart state, e.g. on logout.
func (s *Store) Reset() {
	s.cartID = ""
	s.items = nil
	s.total = magento.Money{}
	s.err = nil
	s.orderNumber = ""
	s.busy = false
}

// ClearOrderNumber dismisses the order confirmation.
func (s *Store) ClearOrderNumber() { s.orderNumber = "" }

func (s *Store) ID() string                { return s.cartID }
func (s *Store) Items() []magento.CartItem { return s.items }
func (s *Store) Total() magento.Money      { return s.total }
func (s *Store) Err() error                { return s.err }
func (s *Store) OrderNumber() string       { return s.orderNumber }
func (s *Store) Busy() bool                { return s.busy }
func (s *Store) Empty() bool               { return len(s.items) == 0 }

// ItemCount is the number of units across all line items.
func (s *Store) ItemCount() int {
	n := 0.0
	for _, it := range s.items {
		n += it.Quantity
	}
	return int(n)
}
