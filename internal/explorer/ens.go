package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

const (
	ensName      = "ens"
	ensCacheSize = 4096
)

// ENSConfig locates an ENS subgraph. With an API key and subgraph id the
// decentralized gateway path is used, otherwise BaseURL is queried directly.
type ENSConfig struct {
	BaseURL    string
	APIKey     string
	SubgraphID string
}

func (c ENSConfig) URL() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if c.APIKey != "" && c.SubgraphID != "" {
		return fmt.Sprintf("%s/api/%s/subgraphs/id/%s", base, c.APIKey, c.SubgraphID)
	}
	return base
}

type ENSDomain struct {
	IsMigrated bool   `json:"isMigrated"`
	LabelName  string `json:"labelName"`
	LabelHash  string `json:"labelhash"`
	Name       string `json:"name"`
	Parent     *struct {
		Name string `json:"name"`
	} `json:"parent"`
}

type ENSRegistration struct {
	ExpiryDate string    `json:"expiryDate"`
	Domain     ENSDomain `json:"domain"`
}

const ensLabelQuery = `{
  domains(where: {labelhash: "%s"}) {
    labelName
  }
}`

const ensAccountQuery = `query getRegistrations {
  account(id: "%s") {
    registrations {
      expiryDate
      domain {
        labelName
        labelhash
        name
        isMigrated
        parent {
          name
        }
      }
    }
  }
}`

// ENSClient resolves ENS labels and registrations through a thegraph subgraph.
type ENSClient struct {
	url    string
	http   *resty.Client
	labels *lru.Cache[string, string]
}

func NewENSClient(cfg ENSConfig, opts ...Option) (*ENSClient, error) {
	if cfg.BaseURL == "" {
		return nil, clientError(ensName, "configure", fmt.Errorf("%w: missing subgraph url", ErrConfiguration))
	}
	o := buildOptions(opts)
	labels, err := lru.New[string, string](ensCacheSize)
	if err != nil {
		return nil, err
	}
	return &ENSClient{
		url:    cfg.URL(),
		http:   newHTTPClient("", o),
		labels: labels,
	}, nil
}

// IsAvailable reports whether the subgraph endpoint answers successfully.
func (c *ENSClient) IsAvailable(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get(c.url)
	return err == nil && resp.IsSuccess()
}

// DomainHashToHex renders a label hash as 0x followed by 64 hex digits,
// left padded with zeros. Longer input keeps its last 32 bytes.
func DomainHashToHex(hash []byte) string {
	return common.BytesToHash(hash).Hex()
}

// QueryByDomainHash returns the label whose keccak hash is hash, e.g. "batman"
// for keccak("batman"). Answers, including misses, are memoized.
func (c *ENSClient) QueryByDomainHash(ctx context.Context, hash []byte) (string, error) {
	key := DomainHashToHex(hash)
	if label, ok := c.labels.Get(key); ok {
		if label == "" {
			return "", clientError(ensName, "label", ErrNotFound)
		}
		return label, nil
	}

	var data struct {
		Domains []struct {
			LabelName string `json:"labelName"`
		} `json:"domains"`
	}
	if err := c.query(ctx, fmt.Sprintf(ensLabelQuery, key), &data); err != nil {
		return "", clientError(ensName, "label", err)
	}

	var label string
	if len(data.Domains) > 0 {
		label = data.Domains[0].LabelName
	}
	c.labels.Add(key, label)
	if label == "" {
		return "", clientError(ensName, "label", ErrNotFound)
	}
	return label, nil
}

// QueryByAccount lists the ENS registrations owned by account.
func (c *ENSClient) QueryByAccount(ctx context.Context, account string) ([]ENSRegistration, error) {
	var data struct {
		Account *struct {
			Registrations []ENSRegistration `json:"registrations"`
		} `json:"account"`
	}
	if err := c.query(ctx, fmt.Sprintf(ensAccountQuery, strings.ToLower(account)), &data); err != nil {
		return nil, clientError(ensName, "account", err)
	}
	if data.Account == nil {
		return nil, clientError(ensName, "account", ErrNotFound)
	}
	return data.Account.Registrations, nil
}

func (c *ENSClient) query(ctx context.Context, query string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"query": query}).
		Post(c.url)
	if err != nil {
		return errors.WithMessage(err, "request failed")
	}
	if resp.IsError() {
		return fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	var reply struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return errors.WithMessage(err, "failed to decode reply")
	}
	if len(reply.Data) == 0 || string(reply.Data) == "null" {
		return ErrNotFound
	}
	return json.Unmarshal(reply.Data, out)
}
