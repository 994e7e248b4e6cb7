package tools

import (
	"context"

	"github.com/contratai/contratai/internal/pncp"
)

// Searcher runs a procurement search.
type Searcher interface {
	Search(ctx context.Context, p pncp.Params) pncp.Result
}

// EditaisTool searches open tenders on PNCP through s.
func EditaisTool(description string, s Searcher) Tool {
	return Tool{
		Name:        NameEditais,
		Description: description,
		Params: []Param{
			{Name: "data_final", Type: TypeString, Required: true, Pattern: `^[0-9]{8}$`,
				Description: "Data final para busca no formato YYYYMMDD (ex: 20260220). IMPORTANTE: Deve ser maior ou igual à data atual."},
			{Name: "pagina", Type: TypeInteger, Default: 1, Minimum: Bound(1),
				Description: "Número da página para paginação dos resultados (padrão: 1)"},
			{Name: "tamanho_pagina", Type: TypeInteger, Default: pncp.DefaultPageSize,
				Minimum: Bound(pncp.MinPageSize), Maximum: Bound(pncp.MaxPageSize), Clamp: true,
				Description: "Quantidade de registros por página (mínimo: 10, padrão: 10, máximo: 500)"},
			{Name: "uf", Type: TypeString, Description: "Sigla do estado brasileiro para filtrar (ex: SP, RJ, MG, RS)"},
			{Name: "cnpj", Type: TypeString, Description: "CNPJ do órgão/entidade para filtrar (apenas números ou com formatação)"},
			{Name: "codigo_modalidade", Type: TypeInteger, Description: "Código da modalidade de contratação (ex: 6 para Pregão Eletrônico)"},
			{Name: "codigo_municipio_ibge", Type: TypeString, Description: "Código IBGE do município para filtrar"},
		},
		Handler: func(ctx context.Context, args Args) (string, error) {
			var in struct {
				DataFinal           string `json:"data_final"`
				Pagina              int    `json:"pagina"`
				TamanhoPagina       int    `json:"tamanho_pagina"`
				UF                  string `json:"uf"`
				CNPJ                string `json:"cnpj"`
				CodigoModalidade    int    `json:"codigo_modalidade"`
				CodigoMunicipioIBGE string `json:"codigo_municipio_ibge"`
			}
			if err := Decode(args, &in); err != nil {
				return "", err
			}
			res := s.Search(ctx, pncp.Params{
				DataFinal:           in.DataFinal,
				Pagina:              in.Pagina,
				TamanhoPagina:       in.TamanhoPagina,
				UF:                  in.UF,
				CNPJ:                in.CNPJ,
				CodigoModalidade:    in.CodigoModalidade,
				CodigoMunicipioIBGE: in.CodigoMunicipioIBGE,
			})
			return pncp.Marshal(res), nil
		},
	}
}
