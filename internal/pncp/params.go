package pncp

import (
	"net/url"
	"strconv"
	"strings"
)

// Page size bounds accepted by the PNCP proposals endpoint.
const (
	MinPageSize     = 10
	MaxPageSize     = 500
	DefaultPageSize = 10
)

// Params are the search filters. Zero values mean "not set" except DataFinal,
// which is required.
type Params struct {
	DataFinal           string // YYYYMMDD
	Pagina              int
	TamanhoPagina       int
	UF                  string
	CNPJ                string
	CodigoModalidade    int
	CodigoMunicipioIBGE string
}

// ClampPageSize bounds n to [MinPageSize, MaxPageSize]; zero means the default.
func ClampPageSize(n int) int {
	switch {
	case n == 0:
		return DefaultPageSize
	case n < MinPageSize:
		return MinPageSize
	case n > MaxPageSize:
		return MaxPageSize
	}
	return n
}

// NormalizeCNPJ strips the punctuation of a formatted CNPJ.
func NormalizeCNPJ(s string) string {
	return strings.NewReplacer(".", "", "/", "", "-", "").Replace(strings.TrimSpace(s))
}

// query returns the upstream query string and the same parameters as a map
// echoed back in error payloads.
func (p Params) query() (url.Values, map[string]any) {
	pagina := p.Pagina
	if pagina <= 0 {
		pagina = 1
	}
	size := ClampPageSize(p.TamanhoPagina)

	q := url.Values{}
	sent := map[string]any{}
	set := func(key string, v any) {
		switch x := v.(type) {
		case int:
			q.Set(key, strconv.Itoa(x))
		case string:
			q.Set(key, x)
		}
		sent[key] = v
	}

	set("dataFinal", p.DataFinal)
	set("pagina", pagina)
	set("tamanhoPagina", size)
	if uf := strings.TrimSpace(p.UF); uf != "" {
		set("uf", strings.ToUpper(uf))
	}
	if cnpj := NormalizeCNPJ(p.CNPJ); cnpj != "" {
		set("cnpj", cnpj)
	}
	if p.CodigoModalidade != 0 {
		set("codigoModalidadeContratacao", p.CodigoModalidade)
	}
	if ibge := strings.TrimSpace(p.CodigoMunicipioIBGE); ibge != "" {
		set("codigoMunicipioIbge", ibge)
	}
	return q, sent
}
