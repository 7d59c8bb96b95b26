package cartclient

import (
	"sync"

	"shopcart/internal/domain"
	"go.uber.org/zap"
)

const identityKey = "identity"

type identityRecord struct {
	AnonymousID string `json:"anonymousId"`
}

// Resolver decides which owner key the client acts under: the account key
// while authenticated, otherwise a persisted anonymous key generated on first
// use. OwnerKey never fails; storage errors degrade to an in-memory key.
type Resolver struct {
	mu         sync.Mutex
	store      Store
	logger     *zap.Logger
	accountKey string
	anonymous  string
}

func NewResolver(store Store, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

func (r *Resolver) OwnerKey() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.accountKey != "" {
		return r.accountKey
	}
	return r.anonymousLocked()
}

// AnonymousKey returns the persisted anonymous key, generating one if needed.
// It keeps returning the anonymous key even while authenticated, which is
// what reconciliation needs.
func (r *Resolver) AnonymousKey() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.anonymousLocked()
}

func (r *Resolver) anonymousLocked() string {
	if r.anonymous != "" {
		return r.anonymous
	}
	var rec identityRecord
	if err := r.store.Load(identityKey, &rec); err == nil && domain.ValidOwnerKey(rec.AnonymousID) {
		r.anonymous = rec.AnonymousID
		return r.anonymous
	}
	r.anonymous = domain.NewAnonymousKey()
	if err := r.store.Save(identityKey, identityRecord{AnonymousID: r.anonymous}); err != nil {
		r.logger.Warn("failed to persist anonymous identity", zap.Error(err))
	}
	return r.anonymous
}

// PersistedAnonymous returns the stored anonymous key without generating a
// fresh one. Empty means there is no anonymous identity to reconcile.
func (r *Resolver) PersistedAnonymous() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.anonymous != "" {
		return r.anonymous
	}
	var rec identityRecord
	if err := r.store.Load(identityKey, &rec); err == nil && domain.ValidOwnerKey(rec.AnonymousID) {
		r.anonymous = rec.AnonymousID
		return r.anonymous
	}
	return ""
}

func (r *Resolver) SetAccountKey(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accountKey = key
}

func (r *Resolver) ClearAccountKey() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accountKey = ""
}

func (r *Resolver) Authenticated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accountKey != ""
}

// DropAnonymous forgets the anonymous identity after its cart has been
// merged. The next anonymous session gets a fresh key.
func (r *Resolver) DropAnonymous() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anonymous = ""
	if err := r.store.Delete(identityKey); err != nil {
		r.logger.Warn("failed to delete anonymous identity", zap.Error(err))
	}
}
