package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func municipality(id int, nome string, ufID int, sigla string) Municipality {
	return Municipality{
		ID:   id,
		Nome: nome,
		Microrregiao: &Microrregiao{
			Nome: "Micro " + nome,
			Mesorregiao: &Mesorregiao{
				Nome: "Meso " + sigla,
				UF:   &UF{ID: ufID, Sigla: sigla, Nome: "Estado " + sigla},
			},
		},
	}
}

func sampleMunicipalities() []Municipality {
	return []Municipality{
		municipality(3509502, "Campinas", 35, "SP"),
		municipality(3550308, "São Paulo", 35, "SP"),
		municipality(3304557, "Rio de Janeiro", 33, "RJ"),
		municipality(2504009, "Campina Grande", 25, "PB"),
		{ID: 5101837, Nome: "Boa Esperança do Norte"},
	}
}

func TestFilterMunicipalities_Priority(t *testing.T) {
	all := sampleMunicipalities()

	got := FilterMunicipalities(all, MunicipalityQuery{ID: intp(3304557), Nome: "Campina"})
	require.Len(t, got, 1)
	assert.Equal(t, "Rio de Janeiro", got[0].Nome)

	got = FilterMunicipalities(all, MunicipalityQuery{Nome: "  CAMPINA ", UFSigla: "RJ"})
	require.Len(t, got, 2)
	assert.Equal(t, "Campinas", got[0].Nome)
	assert.Equal(t, "Campina Grande", got[1].Nome)

	got = FilterMunicipalities(all, MunicipalityQuery{UFID: intp(35), UFSigla: "RJ"})
	assert.Len(t, got, 2)

	got = FilterMunicipalities(all, MunicipalityQuery{UFSigla: "rj"})
	require.Len(t, got, 1)
	assert.Equal(t, 3304557, got[0].ID)

	assert.Empty(t, FilterMunicipalities(all, MunicipalityQuery{}))
	assert.True(t, MunicipalityQuery{Nome: "  "}.Empty())
}

func TestFilterMunicipalities_NameCap(t *testing.T) {
	var all []Municipality
	for i := 0; i < 80; i++ {
		all = append(all, municipality(1000+i, fmt.Sprintf("Santa Cidade %02d", i), 35, "SP"))
	}
	got := FilterMunicipalities(all, MunicipalityQuery{Nome: "santa"})
	require.Len(t, got, MaxNameMatches)
	for i, m := range got {
		assert.Equal(t, 1000+i, m.ID)
	}
}

func TestMunicipality_MissingHierarchy(t *testing.T) {
	m := Municipality{ID: 1, Nome: "Nova"}
	assert.Nil(t, m.State())
	assert.Empty(t, m.MicrorregiaoNome())
	assert.Empty(t, m.MesorregiaoNome())
}

func TestMunicipalitySource_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "municipios.json")
	data, err := json.Marshal(sampleMunicipalities())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	src := NewMunicipalitySource(path, "", zerolog.Nop())
	list, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 5)
	assert.Equal(t, "SP", list[0].State().Sigla)
}

func TestMunicipalitySource_DownloadsOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(sampleMunicipalities())
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data", "municipios.json")
	src := NewMunicipalitySource(path, srv.URL, zerolog.Nop())

	list, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 5)
	_, err = src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	_, err = os.Stat(path)
	assert.NoError(t, err, "downloaded dataset should be cached on disk")
}

func TestMunicipalitySource_Failures(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.json")
	_, err := NewMunicipalitySource(missing, "", zerolog.Nop()).Load(context.Background())
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err = NewMunicipalitySource(missing, srv.URL, zerolog.Nop()).Load(context.Background())
	assert.ErrorContains(t, err, "status 502")
}

func TestStaticMunicipalities(t *testing.T) {
	list, err := StaticMunicipalities(sampleMunicipalities()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 5)
}
