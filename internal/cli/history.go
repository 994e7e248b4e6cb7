package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contratai/contratai/internal/config"
	"github.com/contratai/contratai/internal/logging"
)

// NewHistoryCmd prints recorded turns from the transcript store.
func NewHistoryCmd(opts *Options) *cobra.Command {
	var limit int
	var session string
	var withTools bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded turns (requires store.path)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.db == nil {
				return &config.ConfigError{Field: "store.path", Reason: "histórico persistente desativado"}
			}

			turns, err := a.db.RecentTurns(cmd.Context(), session, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(turns) == 0 {
				fmt.Fprintln(out, "Nenhuma interação registrada.")
				return nil
			}
			for _, t := range turns {
				fmt.Fprintf(out, "[%s] %s (%s, %d rodada(s))\n", t.StartedAt.Local().Format("02/01/2006 15:04"), t.SessionID, t.State, t.Rounds)
				fmt.Fprintf(out, "  Você: %s\n", logging.Preview(t.UserText, 200))
				fmt.Fprintf(out, "  Contrata.AI: %s\n", logging.Preview(t.Answer, 200))
				if withTools {
					calls, err := a.db.ToolCalls(cmd.Context(), t.ID)
					if err != nil {
						return err
					}
					for _, c := range calls {
						status := "ok"
						if !c.OK {
							status = "erro"
						}
						fmt.Fprintf(out, "    #%d %s %s (%s, %dms)\n", c.Seq, c.Tool, c.Arguments, status, c.DurationMS)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of turns to show")
	cmd.Flags().StringVar(&session, "session", "", "Only show turns from this session id")
	cmd.Flags().BoolVar(&withTools, "tools", false, "Include tool invocations of each turn")
	return cmd
}
