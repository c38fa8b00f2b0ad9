package explorer

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

// Chain asks each lookup in order and returns the first hit.
type Chain struct {
	lookups []MetadataLookup
}

func NewChain(lookups ...MetadataLookup) *Chain {
	return &Chain{lookups: lookups}
}

func (c *Chain) Name() string {
	names := make([]string, 0, len(c.lookups))
	for _, l := range c.lookups {
		names = append(names, l.Name())
	}
	return strings.Join(names, ",")
}

// ContractMetadata moves on to the next lookup when one misses or fails. It
// reports ErrNotFound only if every lookup missed.
func (c *Chain) ContractMetadata(ctx context.Context, address string) (*models.ContractMetadata, error) {
	var errs []error
	for _, l := range c.lookups {
		metadata, err := l.ContractMetadata(ctx, address)
		if err == nil {
			return metadata, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, ErrNotFound) {
			slog.Debug("Contract metadata not found", "client", l.Name(), "address", address)
			continue
		}
		slog.Warn("Explorer lookup failed", "client", l.Name(), "address", address, "error", err)
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, &ClientError{Client: c.Name(), Op: "contract metadata", Err: ErrNotFound}
	}
	return nil, errors.Join(errs...)
}
