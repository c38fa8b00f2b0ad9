package models

import (
	"encoding/json"
	"time"
)

// ContractMetadata is what an explorer knows about a deployed contract.
type ContractMetadata struct {
	Address        string          `json:"address"`
	Name           string          `json:"name"`
	ABI            json.RawMessage `json:"abi,omitempty"`
	PartialMatch   bool            `json:"partial_match"`
	Implementation string          `json:"implementation,omitempty"`
	Source         string          `json:"source"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// HasABI reports whether the metadata carries a non-empty ABI array.
func (m *ContractMetadata) HasABI() bool {
	return len(m.ABI) > 0 && string(m.ABI) != "null" && string(m.ABI) != "[]"
}
