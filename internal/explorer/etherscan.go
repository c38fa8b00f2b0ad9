package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
	"github.com/zircuit-multisig/safe-eth-go/internal/models"
	"github.com/zircuit-multisig/safe-eth-go/internal/utils"
)

const etherscanName = "etherscan"

var etherscanAPIURLs = map[Network]string{
	Mainnet:         "https://api.etherscan.io",
	Optimism:        "https://api-optimistic.etherscan.io",
	Cronos:          "https://api.cronoscan.com",
	BNBSmartChain:   "https://api.bscscan.com",
	Gnosis:          "https://api.gnosisscan.io",
	Polygon:         "https://api.polygonscan.com",
	Fantom:          "https://api.ftmscan.com",
	Fraxtal:         "https://api.fraxscan.com",
	ZkSync:          "https://block-explorer-api.mainnet.zksync.io",
	PolygonZkEVM:    "https://api-zkevm.polygonscan.com",
	Moonbeam:        "https://api-moonbeam.moonscan.io",
	Moonriver:       "https://api-moonriver.moonscan.io",
	Mantle:          "https://explorer.mantle.xyz",
	Base:            "https://api.basescan.org",
	Holesky:         "https://api-holesky.etherscan.io",
	Arbitrum:        "https://api.arbiscan.io",
	ArbitrumNova:    "https://api-nova.arbiscan.io",
	Celo:            "https://api.celoscan.io",
	Avalanche:       "https://api.snowtrace.io",
	ZircuitTestnet:  "https://explorer.zircuit.com",
	Linea:           "https://api.lineascan.build",
	Blast:           "https://api.blastscan.io",
	BaseSepolia:     "https://api-sepolia.basescan.org",
	Taiko:           "https://api.taikoscan.io",
	ArbitrumSepolia: "https://api-sepolia.arbiscan.io",
	Scroll:          "https://api.scrollscan.com",
	Sepolia:         "https://api-sepolia.etherscan.io",
}

// SourceCode is one row of the Etherscan getsourcecode reply.
type SourceCode struct {
	SourceCode           string          `json:"SourceCode"`
	ABI                  json.RawMessage `json:"ABI"`
	ContractName         string          `json:"ContractName"`
	CompilerVersion      string          `json:"CompilerVersion"`
	OptimizationUsed     string          `json:"OptimizationUsed"`
	Runs                 string          `json:"Runs"`
	ConstructorArguments string          `json:"ConstructorArguments"`
	EVMVersion           string          `json:"EVMVersion"`
	Library              string          `json:"Library"`
	LicenseType          string          `json:"LicenseType"`
	Proxy                string          `json:"Proxy"`
	Implementation       string          `json:"Implementation"`
	SwarmSource          string          `json:"SwarmSource"`
}

// IsProxy reports whether Etherscan flagged the contract as a proxy.
func (s *SourceCode) IsProxy() bool {
	return s.Proxy == "1"
}

type etherscanReply struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// EtherscanClient talks to Etherscan and its API-compatible forks.
type EtherscanClient struct {
	network    Network
	apiKey     string
	http       *resty.Client
	limiter    *rate.Limiter
	maxRetries uint
	retryDelay time.Duration
}

// NewEtherscanClient returns a client for network. The API key may be empty.
func NewEtherscanClient(network Network, apiKey string, opts ...Option) (*EtherscanClient, error) {
	o := buildOptions(opts)
	baseURL := o.baseURL
	if baseURL == "" {
		var ok bool
		if baseURL, ok = etherscanAPIURLs[network]; !ok {
			return nil, clientError(etherscanName, "configure", fmt.Errorf("%w: %s", ErrConfiguration, network))
		}
	}

	return &EtherscanClient{
		network:    network,
		apiKey:     apiKey,
		http:       newHTTPClient(baseURL, o),
		limiter:    rate.NewLimiter(o.rateLimit, o.burst),
		maxRetries: o.maxRetries,
		retryDelay: o.retryDelay,
	}, nil
}

func (c *EtherscanClient) Name() string {
	return etherscanName
}

// Network returns the chain the client was built for.
func (c *EtherscanClient) Network() Network {
	return c.network
}

// ContractSourceCode fetches the verified source row for address.
func (c *EtherscanClient) ContractSourceCode(ctx context.Context, address string) (*SourceCode, error) {
	result, err := c.call(ctx, "getsourcecode", address)
	if err != nil {
		return nil, clientError(etherscanName, "getsourcecode", err)
	}

	var rows []struct {
		SourceCode
		ABI string `json:"ABI"`
	}
	if err := json.Unmarshal(result, &rows); err != nil {
		return nil, clientError(etherscanName, "getsourcecode", errors.WithMessage(err, "failed to decode source code"))
	}
	if len(rows) == 0 {
		return nil, clientError(etherscanName, "getsourcecode", ErrNotFound)
	}

	row := rows[0]
	source := row.SourceCode
	source.ABI = nil
	// Unverified contracts carry a human readable message instead of an ABI.
	if strings.HasPrefix(row.ABI, "[") {
		source.ABI = json.RawMessage(row.ABI)
	}
	return &source, nil
}

// ContractABI fetches the verified ABI for address.
func (c *EtherscanClient) ContractABI(ctx context.Context, address string) (json.RawMessage, error) {
	result, err := c.call(ctx, "getabi", address)
	if err != nil {
		return nil, clientError(etherscanName, "getabi", err)
	}

	var abi string
	if err := json.Unmarshal(result, &abi); err != nil {
		return nil, clientError(etherscanName, "getabi", errors.WithMessage(err, "failed to decode abi"))
	}
	if !strings.HasPrefix(abi, "[") || !json.Valid([]byte(abi)) {
		return nil, clientError(etherscanName, "getabi", ErrNotFound)
	}
	return json.RawMessage(abi), nil
}

func (c *EtherscanClient) ContractMetadata(ctx context.Context, address string) (*models.ContractMetadata, error) {
	source, err := c.ContractSourceCode(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(source.ABI) == 0 {
		return nil, clientError(etherscanName, "contract metadata", ErrNotFound)
	}

	metadata := &models.ContractMetadata{
		Address: address,
		Name:    source.ContractName,
		ABI:     source.ABI,
		Source:  etherscanName,
	}
	if source.IsProxy() && source.Implementation != "" {
		if impl, err := codec.ChecksumAddress(source.Implementation); err == nil {
			metadata.Implementation = impl
		}
	}
	return metadata, nil
}

func (c *EtherscanClient) call(ctx context.Context, action, address string) (json.RawMessage, error) {
	return utils.Retry(ctx, "etherscan "+action, c.maxRetries, utils.ConstantBackoff(c.retryDelay),
		func(err error) bool { return errors.Is(err, ErrRateLimited) },
		func(ctx context.Context) (json.RawMessage, error) {
			return c.do(ctx, action, address)
		})
}

func (c *EtherscanClient) do(ctx context.Context, action, address string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"module":  "contract",
			"action":  action,
			"address": address,
		})
	if c.apiKey != "" {
		req.SetQueryParam("apikey", c.apiKey)
	}

	resp, err := req.Get("/api")
	if err != nil {
		return nil, errors.WithMessage(err, "request failed")
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	var reply etherscanReply
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return nil, errors.WithMessage(err, "failed to decode reply")
	}

	var message string
	if json.Unmarshal(reply.Result, &message) == nil && strings.Contains(message, "Max rate limit reached") {
		return nil, ErrRateLimited
	}
	if reply.Status != "1" {
		return nil, ErrNotFound
	}
	return reply.Result, nil
}
