package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

// StoreLookup serves metadata from the store while it is younger than maxAge
// and refreshes it from next otherwise. A zero maxAge never expires rows.
type StoreLookup struct {
	store  *PostgresStore
	next   explorer.MetadataLookup
	maxAge time.Duration
	now    func() time.Time
}

func NewStoreLookup(store *PostgresStore, next explorer.MetadataLookup, maxAge time.Duration) *StoreLookup {
	return &StoreLookup{
		store:  store,
		next:   next,
		maxAge: maxAge,
		now:    time.Now,
	}
}

func (l *StoreLookup) Name() string {
	return l.next.Name()
}

func (l *StoreLookup) ContractMetadata(ctx context.Context, address string) (*models.ContractMetadata, error) {
	cached, err := l.store.Get(ctx, address)
	if err != nil {
		slog.Warn("Failed to read cached contract metadata", "address", address, "error", err)
	}
	if cached != nil && l.fresh(cached) {
		return cached, nil
	}

	metadata, err := l.next.ContractMetadata(ctx, address)
	if err != nil {
		return nil, err
	}
	if err := l.store.Upsert(ctx, metadata); err != nil {
		slog.Warn("Failed to cache contract metadata", "address", address, "error", err)
	}
	return metadata, nil
}

func (l *StoreLookup) fresh(metadata *models.ContractMetadata) bool {
	return l.maxAge == 0 || l.now().Sub(metadata.UpdatedAt) < l.maxAge
}
