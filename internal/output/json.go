package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

// JSONOutputHandler writes one <address>.json file per contract.
type JSONOutputHandler struct {
	dir string
}

func NewJSONOutputHandler(outDir string) (*JSONOutputHandler, error) {
	dir := filepath.Join(outDir, "contracts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create contracts directory: %w", err)
	}

	return &JSONOutputHandler{dir: dir}, nil
}

func (h *JSONOutputHandler) WriteMetadata(_ context.Context, metadata *models.ContractMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal contract metadata: %w", err)
	}

	filePath := filepath.Join(h.dir, fmt.Sprintf("%s.json", metadata.Address))
	return os.WriteFile(filePath, data, 0644)
}

func (h *JSONOutputHandler) Close() error {
	return nil
}
