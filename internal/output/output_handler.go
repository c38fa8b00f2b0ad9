package output

import (
	"context"

	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

type OutputHandler interface {
	WriteMetadata(ctx context.Context, metadata *models.ContractMetadata) error
	Close() error
}
