package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

const (
	sourcifyName = "sourcify"

	DefaultSourcifyAPIURL  = "https://sourcify.dev"
	DefaultSourcifyRepoURL = "https://repo.sourcify.dev"
)

// Match types in the order they are tried.
var sourcifyMatches = []string{"full_match", "partial_match"}

type sourcifyMetadata struct {
	Output struct {
		ABI json.RawMessage `json:"abi"`
	} `json:"output"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

// contractName returns the first compilation target by source path.
func (m *sourcifyMetadata) contractName() string {
	paths := make([]string, 0, len(m.Settings.CompilationTarget))
	for path := range m.Settings.CompilationTarget {
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return ""
	}
	sort.Strings(paths)
	return m.Settings.CompilationTarget[paths[0]]
}

// SourcifyClient reads verified metadata from the Sourcify repository.
// Partial matches compile to the same bytecode from possibly different sources.
type SourcifyClient struct {
	network Network
	api     *resty.Client
	repo    *resty.Client
}

// NewSourcifyClient returns a client for network after checking Sourcify supports it.
func NewSourcifyClient(ctx context.Context, network Network, opts ...Option) (*SourcifyClient, error) {
	o := buildOptions(opts)
	apiURL, repoURL := o.baseURL, o.repoURL
	if apiURL == "" {
		apiURL = DefaultSourcifyAPIURL
	}
	if repoURL == "" {
		repoURL = DefaultSourcifyRepoURL
	}

	c := &SourcifyClient{
		network: network,
		api:     newHTTPClient(apiURL, o),
		repo:    newHTTPClient(repoURL, o),
	}

	chains, err := c.SupportedChains(ctx)
	if err != nil {
		return nil, err
	}
	for _, chain := range chains {
		if chain == network {
			return c, nil
		}
	}
	return nil, clientError(sourcifyName, "configure", fmt.Errorf("%w: %s", ErrConfiguration, network))
}

func (c *SourcifyClient) Name() string {
	return sourcifyName
}

// SupportedChains lists the chains Sourcify verifies contracts for.
func (c *SourcifyClient) SupportedChains(ctx context.Context) ([]Network, error) {
	resp, err := c.api.R().SetContext(ctx).Get("/server/chains")
	if err != nil {
		return nil, clientError(sourcifyName, "chains", errors.WithMessage(err, "request failed"))
	}
	if resp.IsError() {
		return nil, clientError(sourcifyName, "chains", fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}

	var chains []struct {
		ChainID json.Number `json:"chainId"`
	}
	if err := json.Unmarshal(resp.Body(), &chains); err != nil {
		return nil, clientError(sourcifyName, "chains", errors.WithMessage(err, "failed to decode chains"))
	}
	if len(chains) == 0 {
		return nil, clientError(sourcifyName, "chains", errors.New("no chains returned"))
	}

	networks := make([]Network, 0, len(chains))
	for _, chain := range chains {
		id, err := chain.ChainID.Int64()
		if err != nil || id <= 0 {
			continue
		}
		networks = append(networks, Network(id))
	}
	return networks, nil
}

// ContractMetadata requires a checksummed address, as the repository is keyed by it.
func (c *SourcifyClient) ContractMetadata(ctx context.Context, address string) (*models.ContractMetadata, error) {
	if !codec.IsChecksumAddress(address) {
		return nil, clientError(sourcifyName, "contract metadata", fmt.Errorf("%w: %s", codec.ErrMalformedAddress, address))
	}

	for _, match := range sourcifyMatches {
		metadata, err := c.fetchMetadata(ctx, match, address)
		if err != nil {
			return nil, clientError(sourcifyName, "contract metadata", err)
		}
		if metadata == nil {
			continue
		}
		return &models.ContractMetadata{
			Address:      address,
			Name:         metadata.contractName(),
			ABI:          metadata.Output.ABI,
			PartialMatch: match == "partial_match",
			Source:       sourcifyName,
		}, nil
	}
	return nil, clientError(sourcifyName, "contract metadata", ErrNotFound)
}

func (c *SourcifyClient) fetchMetadata(ctx context.Context, match, address string) (*sourcifyMetadata, error) {
	resp, err := c.repo.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"match":   match,
			"chain":   c.network.ChainID(),
			"address": address,
		}).
		Get("/contracts/{match}/{chain}/{address}/metadata.json")
	if err != nil {
		return nil, errors.WithMessage(err, "request failed")
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	var metadata sourcifyMetadata
	if err := json.Unmarshal(resp.Body(), &metadata); err != nil {
		return nil, errors.WithMessage(err, "failed to decode metadata")
	}
	return &metadata, nil
}
