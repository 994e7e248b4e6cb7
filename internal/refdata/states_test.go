package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestStates_Embedded(t *testing.T) {
	states, err := States()
	require.NoError(t, err)
	require.Len(t, states, 27)

	siglas := map[string]bool{}
	for _, s := range states {
		assert.NotEmpty(t, s.Nome)
		assert.NotEmpty(t, s.Regiao.Nome)
		siglas[s.Sigla] = true
	}
	assert.Len(t, siglas, 27)
}

func TestFilterStates(t *testing.T) {
	states, err := States()
	require.NoError(t, err)

	tests := []struct {
		name  string
		q     StateQuery
		want  []string
		count int
	}{
		{name: "id wins over nome", q: StateQuery{ID: intp(35), Nome: "Rio"}, want: []string{"SP"}},
		{name: "sigla trimmed and upper-cased", q: StateQuery{Sigla: " rj "}, want: []string{"RJ"}},
		{name: "sigla wins over nome", q: StateQuery{Sigla: "AM", Nome: "Bahia"}, want: []string{"AM"}},
		{name: "nome substring", q: StateQuery{Nome: "rio grande"}, want: []string{"RN", "RS"}},
		{name: "region", q: StateQuery{RegiaoNome: "sul"}, want: []string{"PR", "SC", "RS"}},
		{name: "no filter", q: StateQuery{}, count: 27},
		{name: "unknown id", q: StateQuery{ID: intp(99)}, count: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterStates(states, tt.q)
			if tt.want == nil {
				assert.Len(t, got, tt.count)
				return
			}
			var siglas []string
			for _, s := range got {
				siglas = append(siglas, s.Sigla)
			}
			assert.Equal(t, tt.want, siglas)
		})
	}
}
