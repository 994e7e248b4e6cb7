package tools

import (
	"github.com/rs/zerolog"

	"github.com/contratai/contratai/internal/prompts"
)

// RegisterDefaults registers the four procurement tools in display order:
// states, municipalities, modalities, tender search.
func RegisterDefaults(r *Registry, p *prompts.Set, municipalities MunicipalityLoader, search Searcher, logger zerolog.Logger) error {
	for _, t := range []Tool{
		UFTool(p.UFDescription),
		MunicipioTool(p.MunicipioDescription, municipalities, logger),
		ModalidadeTool(p.ModalidadeDescription),
		EditaisTool(p.PNCPToolDescription(), search),
	} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
