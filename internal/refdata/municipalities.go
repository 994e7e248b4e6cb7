package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MaxNameMatches caps municipality name searches.
const MaxNameMatches = 50

// UF is the state node nested inside a municipality record.
type UF struct {
	ID     int     `json:"id"`
	Sigla  string  `json:"sigla"`
	Nome   string  `json:"nome"`
	Regiao *Region `json:"regiao,omitempty"`
}

type Mesorregiao struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
	UF   *UF    `json:"UF"`
}

type Microrregiao struct {
	ID          int          `json:"id"`
	Nome        string       `json:"nome"`
	Mesorregiao *Mesorregiao `json:"mesorregiao"`
}

// Municipality is one IBGE municipality record. Newly created municipalities
// may come without a microrregiao.
type Municipality struct {
	ID           int           `json:"id"`
	Nome         string        `json:"nome"`
	Microrregiao *Microrregiao `json:"microrregiao"`
}

// State returns the nested UF or nil.
func (m Municipality) State() *UF {
	if m.Microrregiao == nil || m.Microrregiao.Mesorregiao == nil {
		return nil
	}
	return m.Microrregiao.Mesorregiao.UF
}

// MicrorregiaoNome returns the microregion name or "".
func (m Municipality) MicrorregiaoNome() string {
	if m.Microrregiao == nil {
		return ""
	}
	return m.Microrregiao.Nome
}

// MesorregiaoNome returns the mesoregion name or "".
func (m Municipality) MesorregiaoNome() string {
	if m.Microrregiao == nil || m.Microrregiao.Mesorregiao == nil {
		return ""
	}
	return m.Microrregiao.Mesorregiao.Nome
}

// MunicipalityQuery selects municipalities. The first non-empty field in
// declaration order wins.
type MunicipalityQuery struct {
	ID      *int
	Nome    string
	UFID    *int
	UFSigla string
}

// Empty reports whether no criterion is set.
func (q MunicipalityQuery) Empty() bool {
	return q.ID == nil && strings.TrimSpace(q.Nome) == "" && q.UFID == nil && strings.TrimSpace(q.UFSigla) == ""
}

// FilterMunicipalities applies q. Priority: IBGE id, nome (case-insensitive
// substring, first MaxNameMatches in table order), state id, state abbreviation.
// An empty query matches nothing; callers check Empty first.
func FilterMunicipalities(all []Municipality, q MunicipalityQuery) []Municipality {
	var match func(Municipality) bool
	limit := 0
	switch {
	case q.ID != nil:
		id := *q.ID
		match = func(m Municipality) bool { return m.ID == id }
	case strings.TrimSpace(q.Nome) != "":
		nome := strings.ToLower(strings.TrimSpace(q.Nome))
		match = func(m Municipality) bool { return strings.Contains(strings.ToLower(m.Nome), nome) }
		limit = MaxNameMatches
	case q.UFID != nil:
		id := *q.UFID
		match = func(m Municipality) bool {
			uf := m.State()
			return uf != nil && uf.ID == id
		}
	case strings.TrimSpace(q.UFSigla) != "":
		sigla := strings.ToUpper(strings.TrimSpace(q.UFSigla))
		match = func(m Municipality) bool {
			uf := m.State()
			return uf != nil && uf.Sigla == sigla
		}
	default:
		return []Municipality{}
	}
	out := []Municipality{}
	for _, m := range all {
		if !match(m) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// MunicipalitySource loads the municipality table from Path, downloading it
// from URL first when the file does not exist. A successful load is kept for
// the lifetime of the source; a failed one is retried on the next call.
type MunicipalitySource struct {
	Path   string
	URL    string
	HTTP   *http.Client
	Logger zerolog.Logger

	mu     sync.Mutex
	loaded []Municipality
}

// NewMunicipalitySource returns a source with a 60s download timeout.
func NewMunicipalitySource(path, url string, logger zerolog.Logger) *MunicipalitySource {
	return &MunicipalitySource{
		Path:   path,
		URL:    url,
		HTTP:   &http.Client{Timeout: 60 * time.Second},
		Logger: logger.With().Str("component", "refdata").Logger(),
	}
}

// StaticMunicipalities returns a source that serves list without touching disk.
func StaticMunicipalities(list []Municipality) *MunicipalitySource {
	return &MunicipalitySource{loaded: list}
}

// Load returns the municipality table.
func (s *MunicipalitySource) Load(ctx context.Context) ([]Municipality, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded != nil {
		return s.loaded, nil
	}

	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) && s.URL != "" {
		data, err = s.download(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load municipalities: %w", err)
	}

	var list []Municipality
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode municipalities: %w", err)
	}
	if len(list) == 0 {
		return nil, errors.New("municipality dataset is empty")
	}
	s.loaded = list
	return list, nil
}

func (s *MunicipalitySource) download(ctx context.Context) ([]byte, error) {
	s.Logger.Info().Str("url", s.URL).Str("path", s.Path).Msg("municipality dataset missing, downloading")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	client := s.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download municipalities: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download municipalities: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read municipalities: %w", err)
	}
	if !json.Valid(data) {
		return nil, errors.New("download municipalities: invalid JSON")
	}

	if s.Path != "" {
		if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err == nil {
			if err := os.WriteFile(s.Path, data, 0o644); err != nil {
				s.Logger.Warn().Err(err).Str("path", s.Path).Msg("could not cache municipality dataset")
			}
		}
	}
	return data, nil
}
