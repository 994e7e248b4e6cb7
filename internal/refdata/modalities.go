package refdata

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Modality is a PNCP procurement modality.
type Modality struct {
	Codigo int    `json:"codigo"`
	Nome   string `json:"nome"`
	Tipo   string `json:"tipo"`
}

var modalities = []Modality{
	{Codigo: 1, Nome: "Leilão - Eletrônico", Tipo: "Leilão"},
	{Codigo: 4, Nome: "Concorrência - Eletrônica", Tipo: "Concorrência"},
	{Codigo: 5, Nome: "Concorrência - Presencial", Tipo: "Concorrência"},
	{Codigo: 6, Nome: "Pregão - Eletrônico", Tipo: "Pregão"},
	{Codigo: 7, Nome: "Pregão - Presencial", Tipo: "Pregão"},
	{Codigo: 8, Nome: "Dispensa", Tipo: "Dispensa"},
	{Codigo: 9, Nome: "Inexigibilidade", Tipo: "Inexigibilidade"},
	{Codigo: 11, Nome: "Pré-qualificação", Tipo: "Pré-qualificação"},
	{Codigo: 12, Nome: "Credenciamento", Tipo: "Credenciamento"},
	{Codigo: 13, Nome: "Leilão - Presencial", Tipo: "Leilão"},
}

// Modalities returns a copy of the fixed modality table.
func Modalities() []Modality {
	out := make([]Modality, len(modalities))
	copy(out, modalities)
	return out
}

// FilterModalities matches when the normalized query is contained in the
// normalized name or type, or when any query word is contained in the name.
// An empty query returns every modality.
func FilterModalities(all []Modality, query string) []Modality {
	q := normalize(query)
	if q == "" {
		return all
	}
	words := strings.Fields(q)
	out := []Modality{}
	for _, m := range all {
		name := normalize(m.Nome)
		if strings.Contains(name, q) || strings.Contains(normalize(m.Tipo), q) || anyIn(words, name) {
			out = append(out, m)
		}
	}
	return out
}

func anyIn(words []string, s string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// normalize lowercases, folds accents, turns hyphens into spaces and collapses whitespace.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ToLower(s)
	if folded, _, err := transform.String(accentFolder(), s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}

// accentFolder is rebuilt per call; transform.Chain values are stateful.
func accentFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
