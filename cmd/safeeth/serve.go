package safeeth

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zircuit-multisig/safe-eth-go/internal/config"
	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
	"github.com/zircuit-multisig/safe-eth-go/internal/server"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation and metadata HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverConfig := config.LoadServerConfigFromCLI()
		if err := serverConfig.Validate(); err != nil {
			return fmt.Errorf("invalid server configuration: %w", err)
		}
		slog.Debug("Command-line arguments", "serverConfig", serverConfig)

		var lookup explorer.MetadataLookup
		if noLookup, _ := cmd.Flags().GetBool("no-lookup"); !noLookup {
			stack, err := newLookupStack(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()
			lookup = stack.lookup
		}

		return server.New(lookup).ListenAndServe(cmd.Context(), serverConfig.Addr, serverConfig.ShutdownTimeout)
	},
}

func init() {
	ServeCmd.Flags().String("listen", "0.0.0.0:8080", "Address and port of the HTTP API")
	ServeCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "Grace period for in-flight requests on shutdown")
	ServeCmd.Flags().Bool("no-lookup", false, "Serve the validators only, without explorer lookups")
	if err := viper.BindPFlags(ServeCmd.Flags()); err != nil {
		slog.Error("Failed to bind ServeCmd flags", "error", err)
	}
}
