package safeeth

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
	"github.com/zircuit-multisig/safe-eth-go/internal/config"
	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
)

// domainHashCodec accepts label hashes of up to 32 bytes; shorter ones are
// left padded by the client.
var domainHashCodec = codec.HexCodec{MaxLength: 32}

var ensClient *explorer.ENSClient

var ENSCmd = &cobra.Command{
	Use:   "ens",
	Short: "Resolve ENS labels and registrations",
	Long:  `Query an ENS subgraph for the label of a domain hash or the registrations of an account.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if root := cmd.Root(); root.PersistentPreRunE != nil {
			if err := root.PersistentPreRunE(cmd, args); err != nil {
				return err
			}
		}

		ensConfig := config.LoadENSConfigFromCLI()
		if err := ensConfig.Validate(); err != nil {
			return fmt.Errorf("invalid ENS configuration: %w", err)
		}
		slog.Debug("Command-line arguments", "url", ensConfig.URL, "subgraph", ensConfig.SubgraphID)

		var err error
		ensClient, err = explorer.NewENSClient(explorer.ENSConfig{
			BaseURL:    ensConfig.URL,
			APIKey:     ensConfig.APIKey,
			SubgraphID: ensConfig.SubgraphID,
		}, explorer.WithTimeout(ensConfig.Timeout))
		if err != nil {
			return fmt.Errorf("failed to create ENS client: %w", err)
		}
		return nil
	},
}

var ensLabelCmd = &cobra.Command{
	Use:   "label [domain-hash]",
	Short: "Print the label name of a domain hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := domainHashCodec.Decode(args[0])
		if err != nil {
			return err
		}

		label, err := ensClient.QueryByDomainHash(cmd.Context(), hash)
		if errors.Is(err, explorer.ErrNotFound) {
			return fmt.Errorf("no label found for %s", explorer.DomainHashToHex(hash))
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), label)
		return nil
	},
}

var ensAccountCmd = &cobra.Command{
	Use:   "account [address]",
	Short: "List the ENS registrations of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := codec.ChecksumAddress(args[0])
		if err != nil {
			return err
		}

		registrations, err := ensClient.QueryByAccount(cmd.Context(), account)
		if errors.Is(err, explorer.ErrNotFound) {
			return fmt.Errorf("no ENS account %s", account)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), registrations)
	},
}

func init() {
	ENSCmd.PersistentFlags().String("ens-url", "", "ENS subgraph URL, or the gateway base URL (https://gateway.thegraph.com) with --ens-api-key")
	ENSCmd.PersistentFlags().String("ens-api-key", "", "The Graph gateway API key")
	ENSCmd.PersistentFlags().String("ens-subgraph-id", "", "ENS subgraph id on The Graph gateway")
	if err := viper.BindPFlags(ENSCmd.PersistentFlags()); err != nil {
		slog.Error("Failed to bind ENSCmd flags", "error", err)
	}

	ENSCmd.AddCommand(ensLabelCmd)
	ENSCmd.AddCommand(ensAccountCmd)
}
