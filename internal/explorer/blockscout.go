package explorer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

const blockscoutName = "blockscout"

var blockscoutGraphQLURLs = map[Network]string{
	Mainnet:      "https://eth.blockscout.com/api/v1/graphql",
	Optimism:     "https://optimism.blockscout.com/api/v1/graphql",
	Rootstock:    "https://rootstock.blockscout.com/graphiql",
	Cronos:       "https://cronos.org/explorer/graphiql",
	Gnosis:       "https://gnosis.blockscout.com/api/v1/graphql",
	Polygon:      "https://polygon.blockscout.com/api/v1/graphql",
	ZkSync:       "https://zksync.blockscout.com/api/v1/graphql",
	PolygonZkEVM: "https://zkevm.blockscout.com/api/v1/graphql",
	Base:         "https://base.blockscout.com/api/v1/graphql",
	Holesky:      "https://eth-holesky.blockscout.com/api/v1/graphql",
	Arbitrum:     "https://arbitrum.blockscout.com/api/v1/graphql",
	ArbitrumNova: "https://arbitrum-nova.blockscout.com/api/v1/graphql",
	Celo:         "https://celo.blockscout.com/api/v1/graphql",
	Scroll:       "https://scroll.blockscout.com/api/v1/graphql",
	BaseSepolia:  "https://base-sepolia.blockscout.com/api/v1/graphql",
	Sepolia:      "https://eth-sepolia.blockscout.com/api/v1/graphql",
}

const blockscoutQuery = `{address(hash: "%s") { hash, smartContract {name, abi} }}`

type blockscoutReply struct {
	Data struct {
		Address *struct {
			Hash          string `json:"hash"`
			SmartContract *struct {
				Name string `json:"name"`
				ABI  string `json:"abi"`
			} `json:"smartContract"`
		} `json:"address"`
	} `json:"data"`
	Error  json.RawMessage   `json:"error"`
	Errors []json.RawMessage `json:"errors"`
}

// BlockscoutClient reads contract metadata from a Blockscout GraphQL endpoint.
type BlockscoutClient struct {
	network Network
	url     string
	http    *resty.Client
}

func NewBlockscoutClient(network Network, opts ...Option) (*BlockscoutClient, error) {
	o := buildOptions(opts)
	url := o.baseURL
	if url == "" {
		var ok bool
		if url, ok = blockscoutGraphQLURLs[network]; !ok {
			return nil, clientError(blockscoutName, "configure", fmt.Errorf("%w: %s", ErrConfiguration, network))
		}
	}
	return &BlockscoutClient{
		network: network,
		url:     url,
		http:    newHTTPClient("", o),
	}, nil
}

func (c *BlockscoutClient) Name() string {
	return blockscoutName
}

// ContractMetadata queries the GraphQL endpoint. The address is interpolated
// into the query, so anything but a plain hex address is refused up front.
func (c *BlockscoutClient) ContractMetadata(ctx context.Context, address string) (*models.ContractMetadata, error) {
	if !common.IsHexAddress(address) {
		return nil, clientError(blockscoutName, "contract metadata", fmt.Errorf("%w: %s", codec.ErrMalformedAddress, address))
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"query": fmt.Sprintf(blockscoutQuery, address)}).
		Post(c.url)
	if err != nil {
		return nil, clientError(blockscoutName, "contract metadata", errors.WithMessage(err, "request failed"))
	}
	if resp.IsError() {
		return nil, clientError(blockscoutName, "contract metadata", ErrNotFound)
	}

	var reply blockscoutReply
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return nil, clientError(blockscoutName, "contract metadata", errors.WithMessage(err, "failed to decode reply"))
	}
	if len(reply.Error) > 0 || len(reply.Errors) > 0 ||
		reply.Data.Address == nil || reply.Data.Address.SmartContract == nil {
		return nil, clientError(blockscoutName, "contract metadata", ErrNotFound)
	}

	contract := reply.Data.Address.SmartContract
	if !json.Valid([]byte(contract.ABI)) {
		return nil, clientError(blockscoutName, "contract metadata", fmt.Errorf("invalid abi for %s", address))
	}
	return &models.ContractMetadata{
		Address: address,
		Name:    contract.Name,
		ABI:     json.RawMessage(contract.ABI),
		Source:  blockscoutName,
	}, nil
}
