package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aerissecure/protocols/config"
	"github.com/aerissecure/protocols/logging"
	"github.com/aerissecure/protocols/protocol"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "protocolgen",
	Short: "Generate training protocols from an application document",
	Long: `protocolgen reads an application (a .docx or .xlsx table of people and
their training programs), groups people by program and fills the protocol,
attendance sheet and consent form templates, packaging the result as a zip.

The application number and organisation are taken from a file name such as
"636. ООО Ромашка.docx" unless given explicitly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}
		logger, closeLog, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			_ = closeLog()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Configuration file")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(previewCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newBuilder() (*protocol.Builder, error) {
	return protocol.New(cfg.Protocol, logger)
}
