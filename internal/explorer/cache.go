package explorer

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

// CachedLookup keeps successful answers of another lookup in memory for a while.
type CachedLookup struct {
	next  MetadataLookup
	cache *expirable.LRU[string, *models.ContractMetadata]
}

func NewCachedLookup(next MetadataLookup, size int, ttl time.Duration) *CachedLookup {
	return &CachedLookup{
		next:  next,
		cache: expirable.NewLRU[string, *models.ContractMetadata](size, nil, ttl),
	}
}

func (c *CachedLookup) Name() string {
	return c.next.Name()
}

func (c *CachedLookup) ContractMetadata(ctx context.Context, address string) (*models.ContractMetadata, error) {
	key := strings.ToLower(address)
	if metadata, ok := c.cache.Get(key); ok {
		return metadata, nil
	}

	metadata, err := c.next.ContractMetadata(ctx, address)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, metadata)
	return metadata, nil
}

// Len returns the number of cached entries.
func (c *CachedLookup) Len() int {
	return c.cache.Len()
}
