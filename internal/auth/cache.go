package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// KeyCache remembers keys that already passed a bcrypt check so the hash
// comparison runs once per TTL. Keys are stored as SHA-256 digests.
type KeyCache struct {
	store sync.Map // map[string]*keyCacheEntry
	ttl   time.Duration
}

type keyCacheEntry struct {
	principal *Principal
	expiresAt time.Time
}

// NewKeyCache creates a cache with the given TTL.
func NewKeyCache(ttl time.Duration) *KeyCache {
	return &KeyCache{ttl: ttl}
}

func digest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached principal for key if it has not expired.
func (c *KeyCache) Get(key string) (*Principal, bool) {
	val, ok := c.store.Load(digest(key))
	if !ok {
		return nil, false
	}
	entry := val.(*keyCacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.store.Delete(digest(key))
		return nil, false
	}
	return entry.principal, true
}

// Set stores a verified key with a fresh TTL.
func (c *KeyCache) Set(key string, p *Principal) {
	c.store.Store(digest(key), &keyCacheEntry{
		principal: p,
		expiresAt: time.Now().Add(c.ttl),
	})
}
