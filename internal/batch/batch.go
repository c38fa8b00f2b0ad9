// Package batch resolves contract metadata for many addresses at once.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
	"github.com/zircuit-multisig/safe-eth-go/internal/config"
	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
	"github.com/zircuit-multisig/safe-eth-go/internal/models"
	"github.com/zircuit-multisig/safe-eth-go/internal/output"
	"github.com/zircuit-multisig/safe-eth-go/internal/utils"
)

// Summary counts what happened to each input address.
type Summary struct {
	Found    int64 `json:"found"`
	NotFound int64 `json:"not_found"`
	Invalid  int64 `json:"invalid"`
	Failed   int64 `json:"failed"`
}

func (s Summary) Total() int64 {
	return s.Found + s.NotFound + s.Invalid + s.Failed
}

// ReadAddresses reads one address per line, skipping blank lines and # comments.
func ReadAddresses(r io.Reader) ([]string, error) {
	var addresses []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addresses = append(addresses, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read addresses: %w", err)
	}
	return addresses, nil
}

// Run looks up every valid address and writes the hits to out. Invalid
// addresses are reported and skipped. Only cancellation or an output failure
// aborts the run; lookup failures are counted.
func Run(ctx context.Context, addresses []string, lookup explorer.MetadataLookup, out output.OutputHandler, cfg config.BatchConfig) (Summary, error) {
	var summary Summary

	valid := make([]string, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for _, address := range addresses {
		if _, err := codec.ValidateAddress(address, codec.AddressOptions{}); err != nil {
			slog.Warn("Skipping invalid address", "address", address, "error", err)
			summary.Invalid++
			continue
		}
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}
		valid = append(valid, address)
	}

	if len(valid) == 0 {
		return summary, nil
	}
	slog.Info("Looking up contract metadata", "addresses", len(valid), "client", lookup.Name())

	var bar *progressbar.ProgressBar
	if cfg.ShowProgress && len(valid) > 1 {
		bar = progressbar.NewOptions(
			len(valid),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetDescription("Looking up contracts..."),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		if err := bar.RenderBlank(); err != nil {
			return summary, fmt.Errorf("failed to render progress bar: %w", err)
		}
	}

	var found, notFound, failed atomic.Int64
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(int(max(cfg.MaxConcurrency, 1)))

	for _, address := range valid {
		if gctx.Err() != nil {
			break
		}

		eg.Go(func() error {
			metadata, err := lookupWithRetry(gctx, lookup, address, cfg)
			switch {
			case err == nil:
				if err := out.WriteMetadata(gctx, metadata); err != nil {
					return fmt.Errorf("failed to write metadata for %s: %w", address, err)
				}
				found.Add(1)
			case errors.Is(err, explorer.ErrNotFound):
				notFound.Add(1)
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				slog.Error("Contract lookup failed", "address", address, "error", err)
				failed.Add(1)
			}

			if bar != nil {
				if err := bar.Add(1); err != nil {
					slog.Warn("Failed to update progress bar", "error", err)
				}
			}
			return nil
		})
	}

	err := eg.Wait()
	summary.Found = found.Load()
	summary.NotFound = notFound.Load()
	summary.Failed = failed.Load()
	if err != nil {
		return summary, fmt.Errorf("error while looking up contracts: %w", err)
	}
	if ctx.Err() != nil {
		slog.Info("Lookup cancelled")
		return summary, ctx.Err()
	}

	if bar != nil {
		if err := bar.Finish(); err != nil {
			return summary, fmt.Errorf("failed to finish progress bar: %w", err)
		}
	}

	slog.Info("Lookup finished",
		"found", summary.Found,
		"not_found", summary.NotFound,
		"invalid", summary.Invalid,
		"failed", summary.Failed)
	return summary, nil
}

// lookupWithRetry retries failures other than a plain miss or a configuration problem.
func lookupWithRetry(ctx context.Context, lookup explorer.MetadataLookup, address string, cfg config.BatchConfig) (*models.ContractMetadata, error) {
	return utils.Retry(ctx, "contract metadata "+address, cfg.MaxRetries, utils.LinearBackoff(cfg.RetryDelay),
		func(err error) bool {
			return !errors.Is(err, explorer.ErrNotFound) && !errors.Is(err, explorer.ErrConfiguration)
		},
		func(ctx context.Context) (*models.ContractMetadata, error) {
			return lookup.ContractMetadata(ctx, address)
		})
}
