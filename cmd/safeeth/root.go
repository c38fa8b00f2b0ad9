package safeeth

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
)

var (
	validLogLevels = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	validLogLevelsStr = strings.Join(slices.Sorted(maps.Keys(validLogLevels)), "|")
)

var RootCmd = &cobra.Command{
	Use:   "safe-eth",
	Short: "Validate Ethereum wire values and look up contract metadata",
	Long:  `safe-eth validates Ethereum wire values and resolves contract metadata from block explorers.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := viper.GetString("logLevel")
		if err := setLogLevel(logLevel); err != nil {
			return err
		}
		slog.Debug("Application started", "version", Version)
		return nil
	},
}

// setLogLevel sets the log level
func setLogLevel(logLevel string) error {
	level, exists := validLogLevels[logLevel]
	if !exists {
		return fmt.Errorf("invalid log level: %s. Valid log levels are: %s", logLevel, validLogLevelsStr)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringP("logLevel", "l", "info", fmt.Sprintf("set log level (%s)", validLogLevelsStr))

	// Explorer lookups, shared by metadata, batch and serve
	flags.StringP("network", "n", "mainnet", fmt.Sprintf("Network name or chain id (%s)", strings.Join(explorer.KnownNetworks(), "|")))
	flags.StringSlice("explorers", []string{"etherscan", "blockscout", "sourcify"}, "Explorer clients to query, in order")
	flags.String("etherscan-api-key", "", "Etherscan API key")
	flags.String("etherscan-url", "", "Override the Etherscan API URL")
	flags.String("blockscout-url", "", "Override the Blockscout GraphQL URL")
	flags.String("sourcify-url", "", "Override the Sourcify API URL")
	flags.String("sourcify-repo-url", "", "Override the Sourcify repository URL")
	flags.Duration("timeout", explorer.DefaultTimeout, "Explorer request timeout")
	flags.Float64("rate-limit", 0, "Maximum explorer requests per second, 0 for unlimited")
	flags.Uint("explorer-retries", 3, "Retries when an explorer reports a rate limit")
	flags.Duration("explorer-retry-delay", 5*time.Second, "Delay between rate limit retries")
	flags.Int("cache-size", 1024, "In-memory metadata cache size, 0 to disable")
	flags.Duration("cache-ttl", time.Hour, "In-memory metadata cache TTL")

	// Persistent metadata store
	flags.String("postgres-conn", "", "PostgreSQL connection string for the metadata store")
	flags.Uint("max-conns", 4, "Maximum number of PostgreSQL connections")
	flags.Duration("max-age", 0, "Refresh stored metadata older than this, 0 to keep it forever")

	// Metrics
	flags.Bool("enable-metrics", false, "Enable Prometheus metrics server")
	flags.String("metrics-addr", "0.0.0.0:2112", "Address and port of the Prometheus metrics server")

	if err := viper.BindPFlags(flags); err != nil {
		slog.Error("Failed to bind rootCmd flags", "error", err)
	}

	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.safe-eth")
	viper.AddConfigPath("/etc/safe-eth")

	viper.SetEnvPrefix("safe_eth")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	RootCmd.AddCommand(ValidateCmd)
	RootCmd.AddCommand(MetadataCmd)
	RootCmd.AddCommand(BatchCmd)
	RootCmd.AddCommand(ENSCmd)
	RootCmd.AddCommand(ServeCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env")
	}

	if err := viper.ReadInConfig(); err == nil {
		slog.Info("Using config file", "file", viper.ConfigFileUsed())
	} else {
		slog.Info("No config file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("An error occurred", "error", err)
		cancel()
		os.Exit(1)
	}
}
