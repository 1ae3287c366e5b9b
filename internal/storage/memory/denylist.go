package memory

import (
	"context"
	"sync"
	"time"
)

// TokenDenylist is the in-memory counterpart of the redis denylist.
type TokenDenylist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time // token -> expiry
}

func NewTokenDenylist() *TokenDenylist {
	return &TokenDenylist{tokens: make(map[string]time.Time)}
}

func (d *TokenDenylist) InvalidateToken(_ context.Context, token string, expiration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tokens[token] = time.Now().Add(expiration)
	return nil
}

func (d *TokenDenylist) IsTokenInvalidated(_ context.Context, token string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	expiry, ok := d.tokens[token]
	if !ok {
		return false, nil
	}
	return time.Now().Before(expiry), nil
}
