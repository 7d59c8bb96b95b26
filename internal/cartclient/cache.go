package cartclient

import (
	"time"

	"shopcart/internal/domain"
	"go.uber.org/zap"
)

const cacheKey = "cart"

// State is what the client hands to callers: the cart plus whether it
// reflects the server (synced) or local arithmetic applied while the server
// was unreachable (provisional).
type State struct {
	Cart        domain.Cart `json:"cart"`
	Provisional bool        `json:"provisional"`
	SyncedAt    time.Time   `json:"syncedAt"`
}

// cartCache persists the last known cart state. Missing, corrupt or
// foreign-owner data loads as an empty cart; the cache never blocks an
// operation.
type cartCache struct {
	store  Store
	logger *zap.Logger
}

func (c *cartCache) Load(ownerKey string) State {
	var st State
	if err := c.store.Load(cacheKey, &st); err != nil {
		return State{Cart: domain.EmptyCart(ownerKey)}
	}
	if st.Cart.OwnerKey != ownerKey {
		return State{Cart: domain.EmptyCart(ownerKey)}
	}
	if st.Cart.Items == nil {
		st.Cart.Items = []domain.LineItem{}
	}
	return st
}

func (c *cartCache) Save(st State) {
	if err := c.store.Save(cacheKey, st); err != nil {
		c.logger.Warn("failed to persist cart cache", zap.Error(err))
	}
}

func (c *cartCache) Clear() {
	if err := c.store.Delete(cacheKey); err != nil {
		c.logger.Warn("failed to clear cart cache", zap.Error(err))
	}
}
