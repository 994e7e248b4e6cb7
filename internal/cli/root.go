// Package cli builds the contratai command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/contratai/contratai/internal/config"
)

// Options holds global CLI options.
type Options struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCmd constructs the base CLI command tree.
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           "contratai",
		Short:         "Contrata.AI: assistente de contratações públicas (PNCP)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to config file (default: ./contratai.yaml or ~/.config/contratai/contratai.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	cmd.AddCommand(NewChatCmd(opts))
	cmd.AddCommand(NewAskCmd(opts))
	cmd.AddCommand(NewToolsCmd(opts))
	cmd.AddCommand(NewToolCmd(opts))
	cmd.AddCommand(NewHistoryCmd(opts))

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}

func report(w io.Writer, err error) {
	fmt.Fprintf(w, "erro: %v\n", err)
	var cerr *config.ConfigError
	if errors.As(err, &cerr) {
		fmt.Fprintln(w, cerr.Remediation())
	}
}

// loadConfig wraps config loading with shared options.
func loadConfig(opts *Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	return cfg, nil
}
