package safeeth_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zircuit-multisig/safe-eth-go/cmd/safeeth"
	"github.com/zircuit-multisig/safe-eth-go/internal/models"
	"github.com/zircuit-multisig/safe-eth-go/internal/testutil"
)

// useFakeExplorer points the etherscan client at a fake explorer through the
// environment, which leaves the shared command flags untouched.
func useFakeExplorer(t *testing.T) *testutil.FakeExplorer {
	t.Helper()
	fake := testutil.NewFakeExplorer(t, 1)
	fake.AddContract(testutil.FakeContract{Address: safeAddress, Name: "GnosisSafe"})

	t.Setenv("SAFE_ETH_NETWORK", "mainnet")
	t.Setenv("SAFE_ETH_EXPLORERS", "etherscan")
	t.Setenv("SAFE_ETH_ETHERSCAN_URL", fake.URL)
	t.Setenv("SAFE_ETH_EXPLORER_RETRIES", "0")
	return fake
}

func TestMetadataCmd(t *testing.T) {
	useFakeExplorer(t)

	output, err := executeCommand(safeeth.RootCmd, "metadata", lowercaseAddress)
	require.NoError(t, err)

	var metadata models.ContractMetadata
	require.NoError(t, json.Unmarshal([]byte(output), &metadata))
	assert.Equal(t, safeAddress, metadata.Address)
	assert.Equal(t, "GnosisSafe", metadata.Name)
	assert.Equal(t, "etherscan", metadata.Source)
	assert.JSONEq(t, testutil.SafeABI, string(metadata.ABI))

	_, err = executeCommand(safeeth.RootCmd, "metadata", unknownAddress)
	assert.ErrorContains(t, err, "no metadata found for "+unknownAddress)

	_, err = executeCommand(safeeth.RootCmd, "metadata", "0xnope")
	assert.Error(t, err)
}

func TestMetadataCmdWithMetrics(t *testing.T) {
	fake := useFakeExplorer(t)
	t.Setenv("SAFE_ETH_CACHE_SIZE", "16")
	t.Setenv("SAFE_ETH_ENABLE_METRICS", "true")
	t.Setenv("SAFE_ETH_METRICS_ADDR", "127.0.0.1:0")

	_, err := executeCommand(safeeth.RootCmd, "metadata", safeAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.Requests("/api"))
}

func TestMetadataCmdWithMetricsAndSeveralExplorers(t *testing.T) {
	fake := useFakeExplorer(t)
	t.Setenv("SAFE_ETH_EXPLORERS", "etherscan,blockscout")
	t.Setenv("SAFE_ETH_BLOCKSCOUT_URL", fake.URL+"/graphql")
	t.Setenv("SAFE_ETH_ENABLE_METRICS", "true")
	t.Setenv("SAFE_ETH_METRICS_ADDR", "127.0.0.1:0")

	_, err := executeCommand(safeeth.RootCmd, "metadata", unknownAddress)
	assert.ErrorContains(t, err, "no metadata found for "+unknownAddress)
	assert.Equal(t, 1, fake.Requests("/api"))
	assert.Equal(t, 1, fake.Requests("/graphql"))
}

func TestMetadataCmdConfiguration(t *testing.T) {
	useFakeExplorer(t)

	t.Setenv("SAFE_ETH_NETWORK", "atlantis")
	_, err := executeCommand(safeeth.RootCmd, "metadata", safeAddress)
	assert.ErrorContains(t, err, "atlantis")

	t.Setenv("SAFE_ETH_NETWORK", "mainnet")
	t.Setenv("SAFE_ETH_EXPLORERS", "bscscan")
	_, err = executeCommand(safeeth.RootCmd, "metadata", safeAddress)
	assert.ErrorContains(t, err, `unknown explorer client "bscscan"`)

	t.Setenv("SAFE_ETH_EXPLORERS", "blockscout")
	t.Setenv("SAFE_ETH_NETWORK", "48899")
	_, err = executeCommand(safeeth.RootCmd, "metadata", safeAddress)
	assert.ErrorContains(t, err, "no explorer supports network")
}
