package explorer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

type stubLookup struct {
	name  string
	calls int
	data  *models.ContractMetadata
	err   error
}

func (s *stubLookup) Name() string { return s.name }

func (s *stubLookup) ContractMetadata(_ context.Context, address string) (*models.ContractMetadata, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	md := *s.data
	md.Address = address
	return &md, nil
}

func notFound(name string) *stubLookup {
	return &stubLookup{name: name, err: &explorer.ClientError{Client: name, Op: "contract metadata", Err: explorer.ErrNotFound}}
}

func TestChainFirstHitWins(t *testing.T) {
	first := notFound("first")
	second := &stubLookup{name: "second", data: &models.ContractMetadata{Name: "GnosisSafe", Source: "second"}}
	third := &stubLookup{name: "third", data: &models.ContractMetadata{Name: "Other"}}

	chain := explorer.NewChain(first, second, third)
	assert.Equal(t, "first,second,third", chain.Name())

	metadata, err := chain.ContractMetadata(context.Background(), safeAddress)
	require.NoError(t, err)
	assert.Equal(t, "GnosisSafe", metadata.Name)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 0, third.calls)
}

func TestChainAllMiss(t *testing.T) {
	chain := explorer.NewChain(notFound("a"), notFound("b"))
	_, err := chain.ContractMetadata(context.Background(), safeAddress)
	assert.ErrorIs(t, err, explorer.ErrNotFound)
}

func TestChainJoinsFailures(t *testing.T) {
	boom := errors.New("boom")
	chain := explorer.NewChain(&stubLookup{name: "a", err: boom}, notFound("b"))

	_, err := chain.ContractMetadata(context.Background(), safeAddress)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, explorer.ErrNotFound)

	// A failing client does not hide a later hit.
	hit := &stubLookup{name: "c", data: &models.ContractMetadata{Name: "Safe"}}
	chain = explorer.NewChain(&stubLookup{name: "a", err: boom}, hit)
	_, err = chain.ContractMetadata(context.Background(), safeAddress)
	assert.NoError(t, err)
}

func TestChainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	second := notFound("b")
	chain := explorer.NewChain(&stubLookup{name: "a", err: context.Canceled}, second)

	_, err := chain.ContractMetadata(ctx, safeAddress)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, second.calls)
}

func TestCachedLookup(t *testing.T) {
	stub := &stubLookup{name: "stub", data: &models.ContractMetadata{Name: "GnosisSafe"}}
	cached := explorer.NewCachedLookup(stub, 16, time.Minute)
	assert.Equal(t, "stub", cached.Name())

	for i := 0; i < 3; i++ {
		metadata, err := cached.ContractMetadata(context.Background(), safeAddress)
		require.NoError(t, err)
		assert.Equal(t, "GnosisSafe", metadata.Name)
	}
	// Keys are case-insensitive.
	_, err := cached.ContractMetadata(context.Background(), "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 1, cached.Len())

	miss := notFound("miss")
	cachedMiss := explorer.NewCachedLookup(miss, 16, time.Minute)
	for i := 0; i < 2; i++ {
		_, err := cachedMiss.ContractMetadata(context.Background(), safeAddress)
		assert.ErrorIs(t, err, explorer.ErrNotFound)
	}
	assert.Equal(t, 2, miss.calls, "misses are not cached")
}

func TestCachedLookupExpires(t *testing.T) {
	stub := &stubLookup{name: "stub", data: &models.ContractMetadata{Name: "GnosisSafe"}}
	cached := explorer.NewCachedLookup(stub, 16, 20*time.Millisecond)

	_, err := cached.ContractMetadata(context.Background(), safeAddress)
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = cached.ContractMetadata(context.Background(), safeAddress)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}
