package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider wraps another provider with a Redis cache keyed by a
// hash of the text and task type. Re-indexing the same document or
// re-asking the same question then skips the embedding backend.
//
// Cache failures are never fatal: on any Redis error the wrapped
// provider is called directly.
type CachedProvider struct {
	inner EmbeddingProvider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProvider(inner EmbeddingProvider, rdb *redis.Client, ttl time.Duration) EmbeddingProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

func (p *CachedProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	ctx := context.Background()
	key := cacheKey(text, taskType)

	if raw, err := p.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached EmbeddingResponse
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		// Corrupt entry, fall through and overwrite it.
	}

	res, err := p.inner.Generate(text, taskType)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(res); err == nil {
		// Best effort; a failed SET only costs a future cache miss.
		p.rdb.Set(ctx, key, raw, p.ttl)
	}

	return res, nil
}

func cacheKey(text, taskType string) string {
	sum := sha256.Sum256([]byte(taskType + "\x00" + text))
	return fmt.Sprintf("embedding:%x", sum)
}
