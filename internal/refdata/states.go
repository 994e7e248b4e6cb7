// Package refdata holds the reference tables the lookup tools search:
// federative units, IBGE municipalities and PNCP procurement modalities.
package refdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed estados.json
var statesJSON []byte

// Region is an IBGE macro-region.
type Region struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

// State is a federative unit in the IBGE localidades shape.
type State struct {
	ID     int    `json:"id"`
	Sigla  string `json:"sigla"`
	Nome   string `json:"nome"`
	Regiao Region `json:"regiao"`
}

// States returns the 27 federative units ordered by IBGE code.
func States() ([]State, error) {
	var out []State
	if err := json.Unmarshal(statesJSON, &out); err != nil {
		return nil, fmt.Errorf("decode states: %w", err)
	}
	return out, nil
}

// StateQuery selects states. The first non-empty field in declaration order wins.
type StateQuery struct {
	ID         *int
	Sigla      string
	Nome       string
	RegiaoNome string
}

// FilterStates applies q to states. Priority: id, sigla (exact, upper-cased),
// nome (case-insensitive substring), region name (case-insensitive substring).
// An empty query returns every state.
func FilterStates(states []State, q StateQuery) []State {
	var match func(State) bool
	switch {
	case q.ID != nil:
		id := *q.ID
		match = func(s State) bool { return s.ID == id }
	case strings.TrimSpace(q.Sigla) != "":
		sigla := strings.ToUpper(strings.TrimSpace(q.Sigla))
		match = func(s State) bool { return s.Sigla == sigla }
	case strings.TrimSpace(q.Nome) != "":
		nome := strings.ToLower(strings.TrimSpace(q.Nome))
		match = func(s State) bool { return strings.Contains(strings.ToLower(s.Nome), nome) }
	case strings.TrimSpace(q.RegiaoNome) != "":
		regiao := strings.ToLower(strings.TrimSpace(q.RegiaoNome))
		match = func(s State) bool { return strings.Contains(strings.ToLower(s.Regiao.Nome), regiao) }
	default:
		return states
	}
	out := []State{}
	for _, s := range states {
		if match(s) {
			out = append(out, s)
		}
	}
	return out
}
