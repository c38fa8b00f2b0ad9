package explorer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
)

func TestParseNetwork(t *testing.T) {
	tests := []struct {
		input string
		want  explorer.Network
	}{
		{"mainnet", explorer.Mainnet},
		{"Gnosis", explorer.Gnosis},
		{" sepolia ", explorer.Sepolia},
		{"100", explorer.Gnosis},
		{"48899", explorer.ZircuitTestnet},
		{"31337", explorer.Network(31337)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := explorer.ParseNetwork(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, input := range []string{"", "0", "atlantis", "-1"} {
		_, err := explorer.ParseNetwork(input)
		assert.Error(t, err, input)
	}
}

func TestNetworkString(t *testing.T) {
	assert.Equal(t, "mainnet", explorer.Mainnet.String())
	assert.Equal(t, "31337", explorer.Network(31337).String())
	assert.Equal(t, "11155111", explorer.Sepolia.ChainID())
	assert.Contains(t, explorer.KnownNetworks(), "zircuit-testnet")
}
