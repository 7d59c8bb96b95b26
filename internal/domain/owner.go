package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

// Owner keys identify carts in the remote store: either an account id or a
// locally generated anonymous identifier. Anonymous keys carry a fixed prefix
// so the server can refuse checkout for them.
const anonymousPrefix = "anon-"

var (
	ownerKeyPattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)
	productIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)
)

// NewAnonymousKey generates a fresh anonymous owner key from the current
// timestamp plus a random suffix. Collisions are negligible, not guaranteed
// impossible.
func NewAnonymousKey() string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%s%d-%s", anonymousPrefix, time.Now().UnixMilli(), hex.EncodeToString(b[:]))
}

// IsAnonymousKey reports whether the owner key denotes an anonymous identity.
func IsAnonymousKey(key string) bool {
	return len(key) > len(anonymousPrefix) && key[:len(anonymousPrefix)] == anonymousPrefix
}

// ValidOwnerKey reports whether the key is well-formed enough to dispatch to
// the remote store.
func ValidOwnerKey(key string) bool {
	return ownerKeyPattern.MatchString(key)
}

// ValidProductID reports whether the id matches the opaque 24-char hex key
// format used by the catalog.
func ValidProductID(id string) bool {
	return productIDPattern.MatchString(id)
}

// NewProductID mints a product id in the catalog's 24-char hex format.
func NewProductID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
