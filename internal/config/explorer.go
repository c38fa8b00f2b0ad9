package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Explorer client names accepted in ExplorerConfig.Clients.
const (
	ClientEtherscan  = "etherscan"
	ClientBlockscout = "blockscout"
	ClientSourcify   = "sourcify"
)

type ExplorerConfig struct {
	Network         string
	Clients         []string
	EtherscanAPIKey string
	EtherscanURL    string
	BlockscoutURL   string
	SourcifyURL     string
	SourcifyRepoURL string
	Timeout         time.Duration
	RateLimit       float64
	MaxRetries      uint
	RetryDelay      time.Duration
	CacheSize       int
	CacheTTL        time.Duration
}

func (c ExplorerConfig) Validate() error {
	if c.Network == "" {
		return fmt.Errorf("missing network")
	}
	if len(c.Clients) == 0 {
		return fmt.Errorf("at least one explorer client is required")
	}
	for _, client := range c.Clients {
		switch client {
		case ClientEtherscan, ClientBlockscout, ClientSourcify:
		default:
			return fmt.Errorf("unknown explorer client %q", client)
		}
	}
	if c.Timeout < 0 || c.RetryDelay < 0 || c.CacheTTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative")
	}
	return nil
}

func LoadExplorerConfigFromCLI() ExplorerConfig {
	var clients []string
	// The environment yields a single string, so commas are split here too.
	for _, value := range viper.GetStringSlice("explorers") {
		for _, client := range strings.Split(value, ",") {
			if client = strings.ToLower(strings.TrimSpace(client)); client != "" {
				clients = append(clients, client)
			}
		}
	}
	return ExplorerConfig{
		Network:         viper.GetString("network"),
		Clients:         clients,
		EtherscanAPIKey: viper.GetString("etherscan-api-key"),
		EtherscanURL:    viper.GetString("etherscan-url"),
		BlockscoutURL:   viper.GetString("blockscout-url"),
		SourcifyURL:     viper.GetString("sourcify-url"),
		SourcifyRepoURL: viper.GetString("sourcify-repo-url"),
		Timeout:         viper.GetDuration("timeout"),
		RateLimit:       viper.GetFloat64("rate-limit"),
		MaxRetries:      viper.GetUint("explorer-retries"),
		RetryDelay:      viper.GetDuration("explorer-retry-delay"),
		CacheSize:       viper.GetInt("cache-size"),
		CacheTTL:        viper.GetDuration("cache-ttl"),
	}
}

type ENSConfig struct {
	URL        string
	APIKey     string
	SubgraphID string
	Timeout    time.Duration
}

func (c ENSConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("missing ENS subgraph url")
	}
	if (c.APIKey == "") != (c.SubgraphID == "") {
		return fmt.Errorf("ENS api key and subgraph id must be set together")
	}
	return nil
}

func LoadENSConfigFromCLI() ENSConfig {
	return ENSConfig{
		URL:        viper.GetString("ens-url"),
		APIKey:     viper.GetString("ens-api-key"),
		SubgraphID: viper.GetString("ens-subgraph-id"),
		Timeout:    viper.GetDuration("timeout"),
	}
}
