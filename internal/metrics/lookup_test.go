package metrics_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
	"github.com/zircuit-multisig/safe-eth-go/internal/metrics"
	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

type scriptedLookup struct {
	name string
	errs []error
}

func (s *scriptedLookup) Name() string { return s.name }

func (s *scriptedLookup) ContractMetadata(_ context.Context, address string) (*models.ContractMetadata, error) {
	err := s.errs[0]
	s.errs = s.errs[1:]
	if err != nil {
		return nil, err
	}
	return &models.ContractMetadata{Address: address}, nil
}

func TestInstrumentedLookupOutcomes(t *testing.T) {
	next := &scriptedLookup{name: "etherscan", errs: []error{
		nil,
		nil,
		fmt.Errorf("wrapped: %w", explorer.ErrNotFound),
		explorer.ErrRateLimited,
		errors.New("boom"),
	}}
	m := metrics.NewLookupMetrics()
	lookup := m.Instrument(next)
	assert.Equal(t, "etherscan", lookup.Name())

	for i := 0; i < 5; i++ {
		_, _ = lookup.ContractMetadata(context.Background(), "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	}

	expected := `
# HELP safe_eth_explorer_lookups_total Contract metadata lookups by client and outcome
# TYPE safe_eth_explorer_lookups_total counter
safe_eth_explorer_lookups_total{client="etherscan",outcome="error"} 1
safe_eth_explorer_lookups_total{client="etherscan",outcome="found"} 2
safe_eth_explorer_lookups_total{client="etherscan",outcome="not_found"} 1
safe_eth_explorer_lookups_total{client="etherscan",outcome="rate_limited"} 1
`
	require.NoError(t, testutil.CollectAndCompare(m, strings.NewReader(expected), "safe_eth_explorer_lookups_total"))
	assert.Equal(t, 5, testutil.CollectAndCount(m))
}

func TestInstrumentEachClientInChain(t *testing.T) {
	m := metrics.NewLookupMetrics()
	etherscan := &scriptedLookup{name: "etherscan", errs: []error{explorer.ErrNotFound, explorer.ErrNotFound}}
	sourcify := &scriptedLookup{name: "sourcify", errs: []error{nil, explorer.ErrRateLimited}}
	chain := explorer.NewChain(m.Instrument(etherscan), m.Instrument(sourcify))

	_, err := chain.ContractMetadata(context.Background(), "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)
	_, err = chain.ContractMetadata(context.Background(), "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.Error(t, err)

	expected := `
# HELP safe_eth_explorer_lookups_total Contract metadata lookups by client and outcome
# TYPE safe_eth_explorer_lookups_total counter
safe_eth_explorer_lookups_total{client="etherscan",outcome="not_found"} 2
safe_eth_explorer_lookups_total{client="sourcify",outcome="found"} 1
safe_eth_explorer_lookups_total{client="sourcify",outcome="rate_limited"} 1
`
	require.NoError(t, testutil.CollectAndCompare(m, strings.NewReader(expected), "safe_eth_explorer_lookups_total"))

	// A single registration covers every instrumented client.
	registry := prometheus.NewPedanticRegistry()
	require.NoError(t, registry.Register(m))
}
