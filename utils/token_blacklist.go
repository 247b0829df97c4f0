package utils

import (
	"context"
	"sync"
	"time"
)

const blacklistKeyPrefix = "session:revoked:"

type revokedEntry struct {
	expiresAt time.Time
}

var (
	revokedTokens   = map[string]revokedEntry{}
	revokedTokensMu sync.RWMutex
)

// RevokeToken records a JWT as invalid until its natural expiration,
// so logout takes effect immediately. Redis is preferred so the
// revocation survives restarts; without Redis an in-memory map serves.
func RevokeToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rc.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err()
		return
	}
	revokedTokensMu.Lock()
	revokedTokens[token] = revokedEntry{expiresAt: expiresAt}
	revokedTokensMu.Unlock()
}

// IsTokenRevoked reports whether a token was revoked before expiring.
func IsTokenRevoked(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, blacklistKeyPrefix+token).Result()
		if err == nil {
			return n > 0
		}
		// Fail open on Redis errors rather than locking every user out.
		return false
	}
	revokedTokensMu.RLock()
	entry, ok := revokedTokens[token]
	revokedTokensMu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(entry.expiresAt) {
		revokedTokensMu.Lock()
		delete(revokedTokens, token)
		revokedTokensMu.Unlock()
		return false
	}
	return true
}
