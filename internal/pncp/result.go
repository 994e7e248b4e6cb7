package pncp

import (
	"bytes"
	"encoding/json"
)

// Source is the provenance string attached to successful searches.
const Source = "Portal Nacional de Contratações Públicas (PNCP)"

// Result is either a *SearchResult or an *ErrorResult.
type Result interface {
	OK() bool
}

// SearchResult is the reshaped successful response.
type SearchResult struct {
	Success              bool     `json:"success"`
	Fonte                string   `json:"fonte"`
	TotalRegistros       int      `json:"total_registros"`
	TotalPaginas         int      `json:"total_paginas"`
	PaginaAtual          int      `json:"pagina_atual"`
	PaginasRestantes     int      `json:"paginas_restantes"`
	QuantidadeResultados int      `json:"quantidade_resultados"`
	Editais              []Edital `json:"editais"`
}

func (*SearchResult) OK() bool { return true }

// ErrorResult is the in-band failure payload. StatusCode and Parametros are
// only set for non-200 responses.
type ErrorResult struct {
	Success    bool           `json:"success"`
	Error      string         `json:"error"`
	StatusCode int            `json:"status_code,omitempty"`
	Message    string         `json:"message"`
	Parametros map[string]any `json:"parametros_enviados,omitempty"`
}

func (*ErrorResult) OK() bool { return false }

// Edital is one tender record flattened for the model.
type Edital struct {
	NumeroControlePNCP       string        `json:"numero_controle_pncp"`
	NumeroCompra             string        `json:"numero_compra"`
	Processo                 string        `json:"processo"`
	Objeto                   string        `json:"objeto"`
	Modalidade               string        `json:"modalidade"`
	ModoDisputa              string        `json:"modo_disputa"`
	Situacao                 string        `json:"situacao"`
	ValorEstimado            *float64      `json:"valor_estimado"`
	ValorHomologado          *float64      `json:"valor_homologado"`
	SRP                      *bool         `json:"srp"`
	DataAberturaProposta     string        `json:"data_abertura_proposta"`
	DataEncerramentoProposta string        `json:"data_encerramento_proposta"`
	DataPublicacaoPNCP       string        `json:"data_publicacao_pncp"`
	OrgaoEntidade            OrgaoEntidade `json:"orgao_entidade"`
	UnidadeOrgao             UnidadeOrgao  `json:"unidade_orgao"`
	AmparoLegal              AmparoLegal   `json:"amparo_legal"`
	TipoInstrumento          string        `json:"tipo_instrumento"`
	LinkSistemaOrigem        string        `json:"link_sistema_origem"`
	InformacaoComplementar   string        `json:"informacao_complementar"`
}

type OrgaoEntidade struct {
	CNPJ        string `json:"cnpj"`
	RazaoSocial string `json:"razao_social"`
	Poder       any    `json:"poder"`
	Esfera      any    `json:"esfera"`
}

type UnidadeOrgao struct {
	Nome       string `json:"nome"`
	Municipio  string `json:"municipio"`
	UF         string `json:"uf"`
	CodigoIBGE any    `json:"codigo_ibge"`
}

type AmparoLegal struct {
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
}

// upstream wire shapes

type apiResponse struct {
	Data             []apiRecord `json:"data"`
	TotalRegistros   int         `json:"totalRegistros"`
	TotalPaginas     int         `json:"totalPaginas"`
	NumeroPagina     *int        `json:"numeroPagina"`
	PaginasRestantes int         `json:"paginasRestantes"`
}

type apiRecord struct {
	NumeroControlePNCP              string   `json:"numeroControlePNCP"`
	NumeroCompra                    string   `json:"numeroCompra"`
	Processo                        string   `json:"processo"`
	ObjetoCompra                    string   `json:"objetoCompra"`
	ModalidadeNome                  string   `json:"modalidadeNome"`
	ModoDisputaNome                 string   `json:"modoDisputaNome"`
	SituacaoCompraNome              string   `json:"situacaoCompraNome"`
	ValorTotalEstimado              *float64 `json:"valorTotalEstimado"`
	ValorTotalHomologado            *float64 `json:"valorTotalHomologado"`
	SRP                             *bool    `json:"srp"`
	DataAberturaProposta            string   `json:"dataAberturaProposta"`
	DataEncerramentoProposta        string   `json:"dataEncerramentoProposta"`
	DataPublicacaoPncp              string   `json:"dataPublicacaoPncp"`
	TipoInstrumentoConvocatorioNome string   `json:"tipoInstrumentoConvocatorioNome"`
	LinkSistemaOrigem               string   `json:"linkSistemaOrigem"`
	InformacaoComplementar          string   `json:"informacaoComplementar"`
	OrgaoEntidade                   struct {
		CNPJ        string `json:"cnpj"`
		RazaoSocial string `json:"razaoSocial"`
		PoderID     any    `json:"poderId"`
		EsferaID    any    `json:"esferaId"`
	} `json:"orgaoEntidade"`
	UnidadeOrgao struct {
		NomeUnidade   string `json:"nomeUnidade"`
		MunicipioNome string `json:"municipioNome"`
		UFSigla       string `json:"ufSigla"`
		CodigoIbge    any    `json:"codigoIbge"`
	} `json:"unidadeOrgao"`
	AmparoLegal struct {
		Nome      string `json:"nome"`
		Descricao string `json:"descricao"`
	} `json:"amparoLegal"`
}

func (r apiRecord) edital() Edital {
	return Edital{
		NumeroControlePNCP:       r.NumeroControlePNCP,
		NumeroCompra:             r.NumeroCompra,
		Processo:                 r.Processo,
		Objeto:                   r.ObjetoCompra,
		Modalidade:               r.ModalidadeNome,
		ModoDisputa:              r.ModoDisputaNome,
		Situacao:                 r.SituacaoCompraNome,
		ValorEstimado:            r.ValorTotalEstimado,
		ValorHomologado:          r.ValorTotalHomologado,
		SRP:                      r.SRP,
		DataAberturaProposta:     r.DataAberturaProposta,
		DataEncerramentoProposta: r.DataEncerramentoProposta,
		DataPublicacaoPNCP:       r.DataPublicacaoPncp,
		OrgaoEntidade: OrgaoEntidade{
			CNPJ:        r.OrgaoEntidade.CNPJ,
			RazaoSocial: r.OrgaoEntidade.RazaoSocial,
			Poder:       r.OrgaoEntidade.PoderID,
			Esfera:      r.OrgaoEntidade.EsferaID,
		},
		UnidadeOrgao: UnidadeOrgao{
			Nome:       r.UnidadeOrgao.NomeUnidade,
			Municipio:  r.UnidadeOrgao.MunicipioNome,
			UF:         r.UnidadeOrgao.UFSigla,
			CodigoIBGE: r.UnidadeOrgao.CodigoIbge,
		},
		AmparoLegal: AmparoLegal{
			Nome:      r.AmparoLegal.Nome,
			Descricao: r.AmparoLegal.Descricao,
		},
		TipoInstrumento:        r.TipoInstrumentoConvocatorioNome,
		LinkSistemaOrigem:      r.LinkSistemaOrigem,
		InformacaoComplementar: r.InformacaoComplementar,
	}
}

// Marshal renders r as indented JSON without HTML escaping.
func Marshal(r any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return `{"success":false,"error":"falha ao serializar resultado"}`
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
