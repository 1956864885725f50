package cache

import (
	"context"
	"time"
)

// Storage is a namespaced byte cache. Misses and storage failures are both reported as !ok.
type Storage interface {
	Get(ctx context.Context, key Key) ([]byte, bool)
	Add(ctx context.Context, key Key, value []byte)
	NamespaceTTL(namespace Namespace, ttl time.Duration)
}
