package safeeth

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
)

var MetadataCmd = &cobra.Command{
	Use:   "metadata [address]",
	Short: "Look up the name and ABI of a contract",
	Long:  `Query the configured explorers, in order, for the metadata of a verified contract.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := codec.ChecksumAddress(args[0])
		if err != nil {
			return err
		}

		stack, err := newLookupStack(cmd.Context())
		if err != nil {
			return err
		}
		defer stack.Close()

		slog.Debug("Looking up contract", "address", address, "client", stack.lookup.Name())
		metadata, err := stack.lookup.ContractMetadata(cmd.Context(), address)
		if errors.Is(err, explorer.ErrNotFound) {
			return fmt.Errorf("no metadata found for %s", address)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), metadata)
	},
}
