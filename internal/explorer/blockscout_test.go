package explorer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
	"github.com/zircuit-multisig/safe-eth-go/internal/testutil"
)

func TestBlockscoutContractMetadata(t *testing.T) {
	fake := newFakeExplorer(t)
	client, err := explorer.NewBlockscoutClient(explorer.Gnosis, explorer.WithBaseURL(fake.URL+"/graphql"))
	require.NoError(t, err)
	assert.Equal(t, "blockscout", client.Name())

	metadata, err := client.ContractMetadata(context.Background(), safeAddress)
	require.NoError(t, err)
	assert.Equal(t, "GnosisSafe", metadata.Name)
	assert.Equal(t, "blockscout", metadata.Source)
	assert.JSONEq(t, testutil.SafeABI, string(metadata.ABI))

	_, err = client.ContractMetadata(context.Background(), unknownAddress)
	assert.ErrorIs(t, err, explorer.ErrNotFound)

	fake.Fail(true)
	_, err = client.ContractMetadata(context.Background(), safeAddress)
	assert.ErrorIs(t, err, explorer.ErrNotFound)
}

func TestBlockscoutInvalidABI(t *testing.T) {
	fake := newFakeExplorer(t)
	fake.AddContract(testutil.FakeContract{Address: unknownAddress, Name: "Broken", ABI: "[{"})
	client, err := explorer.NewBlockscoutClient(explorer.Gnosis, explorer.WithBaseURL(fake.URL+"/graphql"))
	require.NoError(t, err)

	_, err = client.ContractMetadata(context.Background(), unknownAddress)
	require.Error(t, err)
	assert.NotErrorIs(t, err, explorer.ErrNotFound)
}

func TestBlockscoutRejectsMalformedAddress(t *testing.T) {
	fake := newFakeExplorer(t)
	client, err := explorer.NewBlockscoutClient(explorer.Gnosis, explorer.WithBaseURL(fake.URL+"/graphql"))
	require.NoError(t, err)

	for _, address := range []string{
		"0x1234",
		`0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed") { hash } x: address(hash: "0x0`,
		"not an address",
	} {
		_, err := client.ContractMetadata(context.Background(), address)
		assert.ErrorIs(t, err, codec.ErrMalformedAddress, address)
		assert.NotErrorIs(t, err, explorer.ErrNotFound, address)
	}
	assert.Zero(t, fake.Requests("/graphql"))
}

func TestNewBlockscoutClientUnsupportedNetwork(t *testing.T) {
	_, err := explorer.NewBlockscoutClient(explorer.Network(999999))
	assert.ErrorIs(t, err, explorer.ErrConfiguration)
}
