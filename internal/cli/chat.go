package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contratai/contratai/internal/agent"
)

// NewChatCmd starts an interactive session over stdin/stdout.
func NewChatCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat (/limpar clears history, /ferramentas lists tools, /sair exits)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return chatLoop(cmd.Context(), a.agent, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// NewAskCmd answers a single question and exits.
func NewAskCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask \"<pergunta>\"",
		Short: "Ask a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("a pergunta não pode ser vazia")
			}
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintln(cmd.OutOrStdout(), a.agent.Respond(cmd.Context(), question))
			return nil
		},
	}
}

// session is what the REPL needs from the agent.
type session interface {
	Respond(ctx context.Context, userText string) string
	ClearHistory()
	ListTools() []agent.ToolInfo
	WelcomeMessage() string
}

func chatLoop(ctx context.Context, s session, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, s.WelcomeMessage())
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "Você: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "/sair":
			return nil
		case "/limpar":
			s.ClearHistory()
			fmt.Fprintln(out, "Histórico limpo.")
			fmt.Fprintln(out)
			fmt.Fprintln(out, s.WelcomeMessage())
			fmt.Fprintln(out)
			continue
		case "/ferramentas":
			printTools(out, s.ListTools())
			continue
		}

		answer := s.Respond(ctx, text)
		fmt.Fprintf(out, "Contrata.AI: %s\n\n", answer)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func printTools(out io.Writer, list []agent.ToolInfo) {
	fmt.Fprintf(out, "%d ferramenta(s) ativa(s)\n", len(list))
	for _, t := range list {
		fmt.Fprintf(out, "- %s: %s\n", t.Name, t.Description)
	}
	fmt.Fprintln(out)
}
