package agent

import (
	"fmt"
	"strings"
	"time"
)

// BuildSystemPrompt appends the temporal context to base. It is rebuilt on every
// turn because the search tool needs an end date not earlier than today.
func BuildSystemPrompt(base string, now time.Time) string {
	today := now.Format("02/01/2006")
	todayAPI := now.Format("20060102")
	in30 := now.AddDate(0, 0, 30).Format("20060102")

	var b strings.Builder
	b.WriteString(strings.TrimSpace(base))
	b.WriteString("\n\nCONTEXTO TEMPORAL IMPORTANTE:\n")
	fmt.Fprintf(&b, "Data atual: %s (formato API: %s)\n", today, todayAPI)
	b.WriteString("Ao consultar editais no PNCP, a data final (dataFinal) DEVE ser maior ou igual à data atual.\n")
	b.WriteString("Para consultas futuras, calcule a data no formato YYYYMMDD a partir de hoje.\n")
	fmt.Fprintf(&b, "Exemplos: 'próximo mês' use uma data 30-60 dias à frente, 'este mês' use o final do mês atual, 'daqui 30 dias' = %s", in30)
	return b.String()
}
