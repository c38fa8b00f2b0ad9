package safeeth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/zircuit-multisig/safe-eth-go/internal/config"
	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
	"github.com/zircuit-multisig/safe-eth-go/internal/metrics"
	"github.com/zircuit-multisig/safe-eth-go/internal/store"
)

// lookupStack is the metadata lookup assembled from the CLI configuration,
// together with the resources it owns.
type lookupStack struct {
	lookup  explorer.MetadataLookup
	store   *store.PostgresStore
	metrics *http.Server
}

// newLookupStack builds instrumented explorer clients -> chain -> memory cache -> store.
// The store and metrics server are only started when configured.
func newLookupStack(ctx context.Context) (*lookupStack, error) {
	explorerConfig := config.LoadExplorerConfigFromCLI()
	if err := explorerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid explorer configuration: %w", err)
	}
	metricsConfig := config.LoadMetricsConfigFromCLI()
	if err := metricsConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metrics configuration: %w", err)
	}
	slog.Debug("Command-line arguments", "network", explorerConfig.Network, "explorers", explorerConfig.Clients, "metricsConfig", metricsConfig)

	var lookupMetrics *metrics.LookupMetrics
	if metricsConfig.Enable {
		lookupMetrics = metrics.NewLookupMetrics()
	}
	lookup, err := newExplorerChain(ctx, explorerConfig, lookupMetrics)
	if err != nil {
		return nil, err
	}

	stack := &lookupStack{}
	if explorerConfig.CacheSize > 0 {
		lookup = explorer.NewCachedLookup(lookup, explorerConfig.CacheSize, explorerConfig.CacheTTL)
	}

	var db *sql.DB
	if pgConfig := config.LoadPostgresConfigFromCLI(); pgConfig.ConnString != "" {
		if err := pgConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid PostgreSQL configuration: %w", err)
		}
		stack.store, err = store.NewPostgresStore(pgConfig.ConnString, pgConfig.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("failed to open metadata store: %w", err)
		}
		db = stack.store.DB()
		lookup = store.NewStoreLookup(stack.store, lookup, pgConfig.MaxAge)
	}

	if lookupMetrics != nil {
		stack.metrics, err = metrics.CreateMetricsServer(db, metricsConfig.Addr, lookupMetrics)
		if err != nil {
			stack.Close()
			return nil, fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	stack.lookup = lookup
	return stack, nil
}

// newExplorerChain creates the configured explorer clients in order. Clients
// that do not support the network are skipped. With m set, each client is
// instrumented on its own so metrics carry the client that answered.
func newExplorerChain(ctx context.Context, cfg config.ExplorerConfig, m *metrics.LookupMetrics) (explorer.MetadataLookup, error) {
	network, err := explorer.ParseNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}

	opts := []explorer.Option{
		explorer.WithTimeout(cfg.Timeout),
		explorer.WithRateLimit(cfg.RateLimit),
		explorer.WithRetries(cfg.MaxRetries, cfg.RetryDelay),
	}
	withURL := func(url string, extra ...explorer.Option) []explorer.Option {
		o := append(append([]explorer.Option{}, opts...), extra...)
		if url != "" {
			o = append(o, explorer.WithBaseURL(url))
		}
		return o
	}

	var lookups []explorer.MetadataLookup
	for _, name := range cfg.Clients {
		var (
			lookup explorer.MetadataLookup
			err    error
		)
		switch name {
		case config.ClientEtherscan:
			lookup, err = explorer.NewEtherscanClient(network, cfg.EtherscanAPIKey, withURL(cfg.EtherscanURL)...)
		case config.ClientBlockscout:
			lookup, err = explorer.NewBlockscoutClient(network, withURL(cfg.BlockscoutURL)...)
		case config.ClientSourcify:
			lookup, err = explorer.NewSourcifyClient(ctx, network, withURL(cfg.SourcifyURL, explorer.WithRepoURL(cfg.SourcifyRepoURL))...)
		}
		if errors.Is(err, explorer.ErrConfiguration) {
			slog.Warn("Explorer does not support network, skipping", "client", name, "network", network, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", name, err)
		}
		if m != nil {
			lookup = m.Instrument(lookup)
		}
		lookups = append(lookups, lookup)
	}

	if len(lookups) == 0 {
		return nil, fmt.Errorf("%w: no explorer supports network %s", explorer.ErrConfiguration, network)
	}
	if len(lookups) == 1 {
		return lookups[0], nil
	}
	return explorer.NewChain(lookups...), nil
}

func (s *lookupStack) Close() {
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.metrics.Shutdown(ctx); err != nil {
			slog.Warn("Failed to shut down metrics server", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Warn("Failed to close metadata store", "error", err)
		}
	}
}
