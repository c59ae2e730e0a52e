package cruddals

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Cache stores the raw rows of SQL store reads. A nil value from Get is
// a miss. Writes drop every key of the tables they touch through
// DeletePrefix, so implementations must support prefix deletion.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; a zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// CacheKey names one cached read of a table.
type CacheKey struct {
	Table     string
	Operation string
	Query     string
	Args      []any
}

// Prefix is shared by all keys of the table.
func (k CacheKey) Prefix() string {
	return "cruddals:" + k.Table + ":"
}

// String returns the key. The statement and its arguments are hashed,
// which keeps keys short enough for memcached.
func (k CacheKey) String() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%#v", k.Query, k.Args)
	return k.Prefix() + k.Operation + ":" + hex.EncodeToString(h.Sum(nil)[:16])
}
