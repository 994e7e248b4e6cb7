package tools

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/contratai/contratai/internal/refdata"
)

// Tool names as the model sees them.
const (
	NameUF         = "ConsultarUF"
	NameMunicipio  = "ConsultarMunicipio"
	NameModalidade = "ConsultarModalidade"
	NameEditais    = "ConsultarEditaisPNCP"
)

// MunicipalityLoader provides the municipality table.
type MunicipalityLoader interface {
	Load(ctx context.Context) ([]refdata.Municipality, error)
}

type messagePayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UFTool looks up federative units.
func UFTool(description string) Tool {
	return Tool{
		Name:        NameUF,
		Description: description,
		Params: []Param{
			{Name: "id", Type: TypeInteger, Description: "ID do estado brasileiro (ex: 35 para São Paulo, 33 para Rio de Janeiro)"},
			{Name: "sigla", Type: TypeString, Description: "Sigla do estado (ex: SP, RJ, MG, RS, PR)"},
			{Name: "nome", Type: TypeString, Description: "Nome completo ou parcial do estado (ex: 'São Paulo', 'Rio', 'Minas')"},
			{Name: "regiao_nome", Type: TypeString, Description: "Nome da região para listar todos os estados (ex: Sudeste, Sul, Norte, Nordeste, Centro-Oeste)"},
		},
		Handler: func(ctx context.Context, args Args) (string, error) {
			var in struct {
				ID         *int   `json:"id"`
				Sigla      string `json:"sigla"`
				Nome       string `json:"nome"`
				RegiaoNome string `json:"regiao_nome"`
			}
			if err := Decode(args, &in); err != nil {
				return "", err
			}
			states, err := refdata.States()
			if err != nil || len(states) == 0 {
				return ErrJSON(errors.New("Não foi possível carregar os dados dos estados")), nil
			}
			found := refdata.FilterStates(states, refdata.StateQuery{
				ID: in.ID, Sigla: in.Sigla, Nome: in.Nome, RegiaoNome: in.RegiaoNome,
			})
			if len(found) == 0 {
				return render(messagePayload{Message: "Nenhum estado encontrado com os critérios especificados"}), nil
			}
			return render(struct {
				Success bool            `json:"success"`
				Total   int             `json:"total_encontrados"`
				Estados []refdata.State `json:"estados"`
			}{true, len(found), found}), nil
		},
	}
}

type municipioUF struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

type municipioView struct {
	ID           int          `json:"id"`
	Nome         string       `json:"nome"`
	UF           *municipioUF `json:"uf"`
	Microrregiao *string      `json:"microrregiao"`
	Mesorregiao  *string      `json:"mesorregiao"`
}

func viewMunicipio(m refdata.Municipality) municipioView {
	v := municipioView{ID: m.ID, Nome: m.Nome}
	if uf := m.State(); uf != nil {
		v.UF = &municipioUF{ID: uf.ID, Sigla: uf.Sigla, Nome: uf.Nome}
	}
	if s := m.MicrorregiaoNome(); s != "" {
		v.Microrregiao = &s
	}
	if s := m.MesorregiaoNome(); s != "" {
		v.Mesorregiao = &s
	}
	return v
}

// MunicipioTool looks up IBGE municipalities from src.
func MunicipioTool(description string, src MunicipalityLoader, logger zerolog.Logger) Tool {
	return Tool{
		Name:        NameMunicipio,
		Description: description,
		Params: []Param{
			{Name: "id", Type: TypeInteger, Description: "Código IBGE do município (ex: 3550308 para São Paulo/SP, 3304557 para Rio de Janeiro/RJ)"},
			{Name: "nome", Type: TypeString, Description: "Nome completo ou parcial do município (ex: 'São Paulo', 'Rio', 'Brasília'). Retorna até 50 resultados."},
			{Name: "uf_id", Type: TypeInteger, Description: "ID do estado (UF) para listar todos os municípios daquele estado. Use a ferramenta ConsultarUF para obter o ID do estado."},
			{Name: "uf_sigla", Type: TypeString, Description: "Sigla do estado (UF) para listar todos os municípios (ex: 'SP', 'RJ', 'MG'). Use a ferramenta ConsultarUF para obter a sigla do estado."},
		},
		Handler: func(ctx context.Context, args Args) (string, error) {
			var in struct {
				ID      *int   `json:"id"`
				Nome    string `json:"nome"`
				UFID    *int   `json:"uf_id"`
				UFSigla string `json:"uf_sigla"`
			}
			if err := Decode(args, &in); err != nil {
				return "", err
			}
			all, err := src.Load(ctx)
			if err != nil || len(all) == 0 {
				logger.Error().Err(err).Msg("municipality dataset unavailable")
				return ErrJSON(errors.New("Não foi possível carregar os dados dos municípios")), nil
			}
			q := refdata.MunicipalityQuery{ID: in.ID, Nome: in.Nome, UFID: in.UFID, UFSigla: in.UFSigla}
			if q.Empty() {
				return render(struct {
					Success bool   `json:"success"`
					Message string `json:"message"`
					Total   int    `json:"total_municipios"`
				}{false, "Por favor, forneça ao menos um critério de busca (id, nome, uf_id ou uf_sigla)", len(all)}), nil
			}
			found := refdata.FilterMunicipalities(all, q)
			if len(found) == 0 {
				return render(messagePayload{Message: "Nenhum município encontrado com os critérios especificados"}), nil
			}
			views := make([]municipioView, 0, len(found))
			for _, m := range found {
				views = append(views, viewMunicipio(m))
			}
			return render(struct {
				Success    bool            `json:"success"`
				Total      int             `json:"total_encontrados"`
				Municipios []municipioView `json:"municipios"`
			}{true, len(views), views}), nil
		},
	}
}

// ModalidadeTool looks up procurement modalities.
func ModalidadeTool(description string) Tool {
	return Tool{
		Name:        NameModalidade,
		Description: description,
		Params: []Param{
			{Name: "nome", Type: TypeString, Description: "Nome completo ou parcial da modalidade (ex: 'Pregão', 'Eletrônico', 'Dispensa', 'Concorrência'). Se não especificado, retorna todas as modalidades disponíveis."},
		},
		Handler: func(ctx context.Context, args Args) (string, error) {
			var in struct {
				Nome string `json:"nome"`
			}
			if err := Decode(args, &in); err != nil {
				return "", err
			}
			all := refdata.Modalities()
			found := refdata.FilterModalities(all, in.Nome)
			if len(found) == 0 {
				return render(struct {
					Success     bool               `json:"success"`
					Message     string             `json:"message"`
					Disponiveis []refdata.Modality `json:"modalidades_disponiveis"`
				}{false, "Nenhuma modalidade encontrada com os critérios especificados", all}), nil
			}
			return render(struct {
				Success     bool               `json:"success"`
				Total       int                `json:"total_encontrados"`
				Modalidades []refdata.Modality `json:"modalidades"`
			}{true, len(found), found}), nil
		},
	}
}
