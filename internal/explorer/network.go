package explorer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Network is an EVM chain id.
type Network uint64

const (
	Mainnet         Network = 1
	Optimism        Network = 10
	Cronos          Network = 25
	Rootstock       Network = 30
	BNBSmartChain   Network = 56
	Gnosis          Network = 100
	Polygon         Network = 137
	Fantom          Network = 250
	Fraxtal         Network = 252
	ZkSync          Network = 324
	PolygonZkEVM    Network = 1101
	Moonbeam        Network = 1284
	Moonriver       Network = 1285
	Mantle          Network = 5000
	Base            Network = 8453
	Holesky         Network = 17000
	Arbitrum        Network = 42161
	ArbitrumNova    Network = 42170
	Celo            Network = 42220
	Avalanche       Network = 43114
	ZircuitTestnet  Network = 48899
	Linea           Network = 59144
	Blast           Network = 81457
	BaseSepolia     Network = 84532
	Taiko           Network = 167000
	ArbitrumSepolia Network = 421614
	Scroll          Network = 534352
	Sepolia         Network = 11155111
	OptimismSepolia Network = 11155420
)

var networkNames = map[Network]string{
	Mainnet:         "mainnet",
	Optimism:        "optimism",
	Cronos:          "cronos",
	Rootstock:       "rootstock",
	BNBSmartChain:   "bnb",
	Gnosis:          "gnosis",
	Polygon:         "polygon",
	Fantom:          "fantom",
	Fraxtal:         "fraxtal",
	ZkSync:          "zksync",
	PolygonZkEVM:    "polygon-zkevm",
	Moonbeam:        "moonbeam",
	Moonriver:       "moonriver",
	Mantle:          "mantle",
	Base:            "base",
	Holesky:         "holesky",
	Arbitrum:        "arbitrum",
	ArbitrumNova:    "arbitrum-nova",
	Celo:            "celo",
	Avalanche:       "avalanche",
	ZircuitTestnet:  "zircuit-testnet",
	Linea:           "linea",
	Blast:           "blast",
	BaseSepolia:     "base-sepolia",
	Taiko:           "taiko",
	ArbitrumSepolia: "arbitrum-sepolia",
	Scroll:          "scroll",
	Sepolia:         "sepolia",
	OptimismSepolia: "optimism-sepolia",
}

func (n Network) String() string {
	if name, ok := networkNames[n]; ok {
		return name
	}
	return strconv.FormatUint(uint64(n), 10)
}

// ChainID returns the decimal chain id.
func (n Network) ChainID() string {
	return strconv.FormatUint(uint64(n), 10)
}

// ParseNetwork accepts a known network name (case-insensitive) or a decimal chain id.
func ParseNetwork(s string) (Network, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty network")
	}
	if id, err := strconv.ParseUint(s, 10, 64); err == nil {
		if id == 0 {
			return 0, fmt.Errorf("invalid chain id 0")
		}
		return Network(id), nil
	}
	for n, name := range networkNames {
		if name == s {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown network %q (known: %s)", s, strings.Join(KnownNetworks(), ", "))
}

// KnownNetworks lists the named networks in alphabetical order.
func KnownNetworks() []string {
	names := make([]string, 0, len(networkNames))
	for _, name := range networkNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
