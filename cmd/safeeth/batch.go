package safeeth

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zircuit-multisig/safe-eth-go/internal/batch"
	"github.com/zircuit-multisig/safe-eth-go/internal/config"
	"github.com/zircuit-multisig/safe-eth-go/internal/output"
	"github.com/zircuit-multisig/safe-eth-go/internal/store"
)

var BatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Look up contract metadata for a list of addresses",
	Long: `Read one address per line from a file, or stdin with "-", and write the
metadata of every verified contract to the selected output.`,
}

var batchJSONCmd = &cobra.Command{
	Use:   "json [file] [flags]",
	Short: "Write contract metadata to JSON files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonConfig := config.LoadJSONConfigFromCLI()
		if err := jsonConfig.Validate(); err != nil {
			return fmt.Errorf("invalid JSON configuration: %w", err)
		}
		slog.Debug("Command-line argument", "json-out", jsonConfig.Output)

		if err := os.MkdirAll(jsonConfig.Output, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		outputHandler, err := output.NewJSONOutputHandler(jsonConfig.Output)
		if err != nil {
			return fmt.Errorf("failed to create JSON output handler: %w", err)
		}
		defer outputHandler.Close()

		stack, err := newLookupStack(cmd.Context())
		if err != nil {
			return err
		}
		defer stack.Close()

		return runBatch(cmd, args[0], stack, outputHandler)
	},
}

var batchTSVCmd = &cobra.Command{
	Use:   "tsv [file] [flags]",
	Short: "Write contract metadata to a TSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tsvConfig := config.LoadTSVConfigFromCLI()
		if err := tsvConfig.Validate(); err != nil {
			return errors.WithMessage(err, "invalid TSV configuration")
		}
		slog.Debug("Command-line argument", "tsv-out", tsvConfig.Output)

		if err := os.MkdirAll(tsvConfig.Output, 0755); err != nil {
			return errors.WithMessage(err, "failed to create output directory")
		}

		outputHandler, err := output.NewTSVOutputHandler(tsvConfig.Output)
		if err != nil {
			return errors.WithMessage(err, "failed to create TSV output handler")
		}
		defer outputHandler.Close()

		stack, err := newLookupStack(cmd.Context())
		if err != nil {
			return err
		}
		defer stack.Close()

		return runBatch(cmd, args[0], stack, outputHandler)
	},
}

var batchPostgresCmd = &cobra.Command{
	Use:   "postgres [file]",
	Short: "Write contract metadata to the PostgreSQL metadata store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pgConfig := config.LoadPostgresConfigFromCLI()
		if err := pgConfig.Validate(); err != nil {
			return fmt.Errorf("invalid PostgreSQL configuration: %w", err)
		}

		stack, err := newLookupStack(cmd.Context())
		if err != nil {
			return err
		}
		defer stack.Close()

		var outputHandler output.OutputHandler = stack.store
		if stack.store == nil {
			s, err := store.NewPostgresStore(pgConfig.ConnString, pgConfig.MaxConns)
			if err != nil {
				return fmt.Errorf("failed to create PostgreSQL output handler: %w", err)
			}
			defer s.Close()
			outputHandler = s
		}

		return runBatch(cmd, args[0], stack, outputHandler)
	},
}

func runBatch(cmd *cobra.Command, path string, stack *lookupStack, out output.OutputHandler) error {
	batchConfig := config.LoadBatchConfigFromCLI()
	if err := batchConfig.Validate(); err != nil {
		return fmt.Errorf("invalid batch configuration: %w", err)
	}
	slog.Debug("Command-line arguments", "batchConfig", batchConfig)

	addresses, err := readAddressFile(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	slog.Info("Starting batch lookup", "addresses", len(addresses))
	summary, err := batch.Run(cmd.Context(), addresses, stack.lookup, out, batchConfig)
	if err != nil {
		return err
	}
	slog.Info("Batch lookup finished", "found", summary.Found, "not_found", summary.NotFound, "invalid", summary.Invalid, "failed", summary.Failed)
	return printJSON(cmd.OutOrStdout(), summary)
}

func readAddressFile(stdin io.Reader, path string) ([]string, error) {
	if path == "-" {
		return batch.ReadAddresses(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open address list: %w", err)
	}
	defer f.Close()
	return batch.ReadAddresses(f)
}

func init() {
	BatchCmd.PersistentFlags().UintP("max-concurrency", "c", 10, "Maximum lookup concurrency")
	BatchCmd.PersistentFlags().UintP("max-retries", "r", 3, "Maximum number of retries for failed lookups")
	BatchCmd.PersistentFlags().Duration("retry-delay", time.Second, "Base delay between lookup retries")
	BatchCmd.PersistentFlags().Bool("no-progress", false, "Hide the progress bar")
	if err := viper.BindPFlags(BatchCmd.PersistentFlags()); err != nil {
		slog.Error("Failed to bind BatchCmd flags", "error", err)
	}

	batchJSONCmd.Flags().StringP("json-out", "o", "out", "JSON output directory")
	if err := viper.BindPFlags(batchJSONCmd.Flags()); err != nil {
		slog.Error("Failed to bind jsonCmd flags", "error", err)
	}

	batchTSVCmd.Flags().StringP("tsv-out", "o", "tsv", "Output directory")
	if err := viper.BindPFlags(batchTSVCmd.Flags()); err != nil {
		slog.Error("Failed to bind tsvCmd flags", "error", err)
	}

	BatchCmd.AddCommand(batchJSONCmd)
	BatchCmd.AddCommand(batchTSVCmd)
	BatchCmd.AddCommand(batchPostgresCmd)
}
