package cartclient

import (
	"context"
	"errors"

	"shopcart/internal/domain"
	"go.uber.org/zap"
)

const progressKey = "merge-progress"

// mergeProgress marks a reconciliation in flight. Applied holds product ids
// already replayed onto the account cart, so a resumed merge never adds the
// same line twice.
type mergeProgress struct {
	AnonymousID string   `json:"anonymousId"`
	Applied     []string `json:"applied"`
}

func (p mergeProgress) applied(productID string) bool {
	for _, id := range p.Applied {
		if id == productID {
			return true
		}
	}
	return false
}

func (c *Client) handleSessionChange(ch Change) {
	if !ch.Authenticated {
		c.identity.ClearAccountKey()
		c.mu.Lock()
		c.cache.Clear()
		c.mu.Unlock()
		return
	}
	c.identity.SetAccountKey(ch.AccountKey)
	c.reconcile(context.Background(), ch.AccountKey)
}

// reconcile folds the anonymous cart into the freshly authenticated account
// cart. Failures are logged, never surfaced; a partial merge leaves its
// progress marker behind and resumes on the next login.
func (c *Client) reconcile(ctx context.Context, accountKey string) {
	anonymousID := c.identity.PersistedAnonymous()
	if anonymousID == "" {
		c.refreshAfterMerge(ctx, accountKey)
		return
	}

	prog := c.loadProgress(anonymousID)

	c.mu.Lock()
	local := c.cache.Load(anonymousID)
	c.mu.Unlock()

	// Fast path: one server-side transaction. Only safe before any line has
	// been replayed individually, and only when the local view holds nothing
	// the server has not seen yet.
	if len(prog.Applied) == 0 && !local.Provisional {
		cart, err := c.remote.Merge(ctx, accountKey, anonymousID)
		switch {
		case err == nil:
			c.adopt(*cart)
			c.finishMerge(ctx, anonymousID, false)
			return
		case errors.Is(err, domain.ErrNotFound):
			if len(local.Cart.Items) == 0 {
				c.refreshAfterMerge(ctx, accountKey)
				c.finishMerge(ctx, anonymousID, false)
				return
			}
		default:
			c.logger.Warn("server-side merge unavailable, replaying items",
				zap.String("anonymous_id", anonymousID), zap.Error(err))
		}
	}

	// The local cart is the replay source: it already mirrors the remote
	// anonymous cart plus any provisional lines added while the server was
	// unreachable. The remote copy only matters when there is no local state
	// at all (fresh device with a carried-over identity).
	lines := local.Cart.Items
	if len(lines) == 0 {
		anonCart, err := c.remote.Get(ctx, anonymousID)
		if errors.Is(err, domain.ErrNotFound) {
			c.refreshAfterMerge(ctx, accountKey)
			c.finishMerge(ctx, anonymousID, false)
			return
		}
		if err != nil {
			c.saveProgress(prog)
			c.logger.Warn("cart merge interrupted, will resume",
				zap.String("anonymous_id", anonymousID), zap.Error(err))
			return
		}
		lines = anonCart.Items
	}
	if len(lines) == 0 {
		c.refreshAfterMerge(ctx, accountKey)
		c.finishMerge(ctx, anonymousID, true)
		return
	}

	for _, item := range lines {
		if prog.applied(item.ProductID) {
			continue
		}
		if _, err := c.remote.AddItem(ctx, accountKey, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Product left the catalog while the cart sat idle; drop it.
				prog.Applied = append(prog.Applied, item.ProductID)
				c.saveProgress(prog)
				continue
			}
			c.saveProgress(prog)
			c.logger.Warn("cart merge interrupted, will resume",
				zap.String("anonymous_id", anonymousID),
				zap.String("product_id", item.ProductID),
				zap.Error(err))
			return
		}
		prog.Applied = append(prog.Applied, item.ProductID)
		c.saveProgress(prog)
	}

	c.refreshAfterMerge(ctx, accountKey)
	c.finishMerge(ctx, anonymousID, true)
}

func (c *Client) refreshAfterMerge(ctx context.Context, accountKey string) {
	cart, err := c.remote.Get(ctx, accountKey)
	switch {
	case err == nil:
		c.adopt(*cart)
	case errors.Is(err, domain.ErrNotFound):
		c.adopt(domain.EmptyCart(accountKey))
	default:
		c.logger.Warn("failed to refresh account cart after merge", zap.Error(err))
	}
}

// finishMerge drops the anonymous identity and progress marker; remote cart
// deletion is best-effort cleanup.
func (c *Client) finishMerge(ctx context.Context, anonymousID string, deleteRemote bool) {
	if deleteRemote {
		if err := c.remote.Delete(ctx, anonymousID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("failed to delete merged anonymous cart",
				zap.String("anonymous_id", anonymousID), zap.Error(err))
		}
	}
	c.identity.DropAnonymous()
	if err := c.store.Delete(progressKey); err != nil {
		c.logger.Warn("failed to clear merge progress", zap.Error(err))
	}
}

func (c *Client) loadProgress(anonymousID string) mergeProgress {
	var prog mergeProgress
	if err := c.store.Load(progressKey, &prog); err == nil && prog.AnonymousID == anonymousID {
		return prog
	}
	return mergeProgress{AnonymousID: anonymousID}
}

func (c *Client) saveProgress(prog mergeProgress) {
	if err := c.store.Save(progressKey, prog); err != nil {
		c.logger.Warn("failed to persist merge progress", zap.Error(err))
	}
}
