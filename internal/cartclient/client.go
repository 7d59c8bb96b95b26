package cartclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"shopcart/internal/domain"
	"go.uber.org/zap"
)

// Remote is the cart API surface the client depends on.
type Remote interface {
	Get(ctx context.Context, ownerKey string) (*domain.Cart, error)
	AddItem(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, ownerKey, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, ownerKey string) (*domain.Cart, error)
	Delete(ctx context.Context, ownerKey string) error
	Checkout(ctx context.Context, ownerKey string) (*domain.Order, error)
	Merge(ctx context.Context, accountKey, anonymousID string) (*domain.Cart, error)
}

// Client is the storefront-side cart: it resolves the acting identity, keeps
// a persistent local cache, and mirrors every mutation to the remote store.
// When the server is unreachable, mutations are applied locally and the state
// is flagged provisional until the next successful sync.
type Client struct {
	remote   Remote
	identity *Resolver
	cache    *cartCache
	session  *Session
	store    Store
	logger   *zap.Logger

	mu       sync.Mutex
	inflight atomic.Int32
}

func New(remote Remote, store Store, session *Session, logger *zap.Logger) *Client {
	c := &Client{
		remote:   remote,
		identity: NewResolver(store, logger),
		cache:    &cartCache{store: store, logger: logger},
		session:  session,
		store:    store,
		logger:   logger,
	}
	session.Subscribe(c.handleSessionChange)
	return c
}

// Cart returns the current cart state for the acting owner without touching
// the network.
func (c *Client) Cart() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Load(c.identity.OwnerKey())
}

// CartCount is the sum of line quantities, for badge display.
func (c *Client) CartCount() int {
	st := c.Cart()
	return st.Cart.Count()
}

// IsLoading reports whether any remote call is in flight.
func (c *Client) IsLoading() bool {
	return c.inflight.Load() > 0
}

// Refresh fetches the authoritative cart from the server. A missing remote
// cart syncs as empty unless unpushed provisional lines exist locally; when
// the server is unreachable the cached state is returned untouched.
func (c *Client) Refresh(ctx context.Context) (State, error) {
	owner := c.identity.OwnerKey()
	cart, err := c.call(func() (*domain.Cart, error) { return c.remote.Get(ctx, owner) })
	switch {
	case err == nil:
		return c.adopt(*cart), nil
	case errors.Is(err, domain.ErrNotFound):
		c.mu.Lock()
		st := c.cache.Load(owner)
		c.mu.Unlock()
		if st.Provisional && len(st.Cart.Items) > 0 {
			// Lines added while the server was unreachable have not been
			// pushed yet; the missing remote cart is not authoritative over
			// them.
			return st, nil
		}
		return c.adopt(domain.EmptyCart(owner)), nil
	case errors.Is(err, ErrUnavailable):
		c.logger.Warn("cart refresh failed, serving cached state", zap.Error(err))
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.cache.Load(owner), nil
	default:
		return c.Cart(), err
	}
}

// AddToCart adds quantity units of the product. The product carries the
// name/price snapshot so the local fallback can price the line without a
// catalog round-trip.
func (c *Client) AddToCart(ctx context.Context, product domain.Product, quantity int) (State, error) {
	if quantity <= 0 {
		return c.Cart(), fmt.Errorf("quantity must be positive")
	}
	localOnly := !domain.ValidProductID(product.ID)
	return c.mutate(localOnly,
		func() (*domain.Cart, error) {
			return c.remote.AddItem(ctx, c.identity.OwnerKey(), product.ID, quantity)
		},
		func(cart *domain.Cart) {
			cart.Add(product.Snapshot(quantity))
		})
}

// RemoveFromCart deletes the product's line entirely.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) (State, error) {
	localOnly := !domain.ValidProductID(productID)
	return c.mutate(localOnly,
		func() (*domain.Cart, error) {
			return c.remote.RemoveItem(ctx, c.identity.OwnerKey(), productID)
		},
		func(cart *domain.Cart) {
			cart.Remove(productID)
		})
}

// UpdateQuantity sets the line's quantity; zero or below removes the line.
func (c *Client) UpdateQuantity(ctx context.Context, productID string, quantity int) (State, error) {
	localOnly := !domain.ValidProductID(productID)
	return c.mutate(localOnly,
		func() (*domain.Cart, error) {
			return c.remote.UpdateItem(ctx, c.identity.OwnerKey(), productID, quantity)
		},
		func(cart *domain.Cart) {
			cart.SetQuantity(productID, quantity)
		})
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) (State, error) {
	return c.mutate(false,
		func() (*domain.Cart, error) {
			return c.remote.Clear(ctx, c.identity.OwnerKey())
		},
		func(cart *domain.Cart) {
			cart.Clear()
		})
}

// Checkout converts the cart into an order. There is no local fallback: an
// order cannot be minted client-side, so transient failures surface as
// errors and the cart is left untouched.
func (c *Client) Checkout(ctx context.Context) (*domain.Order, error) {
	owner := c.identity.OwnerKey()
	c.inflight.Add(1)
	order, err := c.remote.Checkout(ctx, owner)
	c.inflight.Add(-1)
	if err != nil {
		return nil, err
	}
	c.adopt(domain.EmptyCart(owner))
	return order, nil
}

// mutate runs one cart mutation: remote first, local arithmetic as the
// fallback for transient failures. Semantic failures adopt nothing and are
// returned as-is.
func (c *Client) mutate(localOnly bool, remoteCall func() (*domain.Cart, error), apply func(*domain.Cart)) (State, error) {
	owner := c.identity.OwnerKey()
	if !localOnly {
		cart, err := c.call(remoteCall)
		switch {
		case err == nil:
			return c.adopt(*cart), nil
		case errors.Is(err, ErrUnavailable):
			c.logger.Warn("cart mutation falling back to local state", zap.Error(err))
		default:
			c.mu.Lock()
			st := c.cache.Load(owner)
			c.mu.Unlock()
			return st, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.cache.Load(owner)
	apply(&st.Cart)
	st.Provisional = true
	c.cache.Save(st)
	return st, nil
}

// adopt overwrites the cache with a server-authoritative cart.
func (c *Client) adopt(cart domain.Cart) State {
	if cart.Items == nil {
		cart.Items = []domain.LineItem{}
	}
	st := State{Cart: cart, Provisional: false, SyncedAt: time.Now()}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Save(st)
	return st
}

func (c *Client) call(fn func() (*domain.Cart, error)) (*domain.Cart, error) {
	c.inflight.Add(1)
	defer c.inflight.Add(-1)
	return fn()
}
