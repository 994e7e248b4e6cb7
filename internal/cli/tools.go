package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewToolsCmd lists the registered tools.
func NewToolsCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()
			printTools(cmd.OutOrStdout(), a.agent.ListTools())
			return nil
		},
	}
}

// NewToolCmd invokes one tool directly, bypassing the model.
func NewToolCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "tool <nome> [argumentos-json]",
		Short: "Invoke a tool directly with JSON arguments",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()
			argsJSON := "{}"
			if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
				argsJSON = args[1]
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.registry.Invoke(cmd.Context(), args[0], argsJSON))
			return nil
		},
	}
}
