// Package pncp queries the Portal Nacional de Contratações Públicas search API.
package pncp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	proposalsPath = "/v1/contratacoes/proposta"
	maxErrorBody  = 500
)

// Client issues proposal searches. It never returns Go errors to callers;
// every failure becomes an *ErrorResult.
type Client struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
	logger    zerolog.Logger
}

// NewClient returns a client whose requests give up after timeout.
func NewClient(baseURL string, timeout time.Duration, userAgent string, logger zerolog.Logger) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		HTTP:      &http.Client{Timeout: timeout},
		logger:    logger.With().Str("component", "pncp").Logger(),
	}
}

// Search runs one GET against the proposals endpoint and reshapes the answer.
func (c *Client) Search(ctx context.Context, p Params) Result {
	query, sent := p.query()
	endpoint := c.BaseURL + proposalsPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return genericError(err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "*/*")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", endpoint).Dur("elapsed", time.Since(start)).Msg("request failed")
		if isTimeout(err) {
			return &ErrorResult{
				Error:   "Timeout na requisição",
				Message: "A API do PNCP demorou muito para responder. Tente novamente.",
			}
		}
		return genericError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("url", resp.Request.URL.String()).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("search response")

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return &ErrorResult{
				Error:   "Timeout na requisição",
				Message: "A API do PNCP demorou muito para responder. Tente novamente.",
			}
		}
		return genericError(err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return reshape(body, p)
	case http.StatusNoContent:
		// PNCP answers 204 when nothing matches.
		return &SearchResult{
			Success:     true,
			Fonte:       Source,
			PaginaAtual: sent["pagina"].(int),
			Editais:     []Edital{},
		}
	default:
		return &ErrorResult{
			Error:      "Erro na requisição à API do PNCP",
			StatusCode: resp.StatusCode,
			Message:    "Não foi possível obter os dados. Verifique os parâmetros e tente novamente." + errorDetail(body),
			Parametros: sent,
		}
	}
}

func reshape(body []byte, p Params) Result {
	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return genericError(fmt.Errorf("decode response: %w", err))
	}
	page := p.Pagina
	if page <= 0 {
		page = 1
	}
	if data.NumeroPagina != nil {
		page = *data.NumeroPagina
	}
	out := &SearchResult{
		Success:              true,
		Fonte:                Source,
		TotalRegistros:       data.TotalRegistros,
		TotalPaginas:         data.TotalPaginas,
		PaginaAtual:          page,
		PaginasRestantes:     data.PaginasRestantes,
		QuantidadeResultados: len(data.Data),
		Editais:              make([]Edital, 0, len(data.Data)),
	}
	for _, rec := range data.Data {
		out.Editais = append(out.Editais, rec.edital())
	}
	return out
}

func errorDetail(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return "\nDetalhes: " + Marshal(v)
	}
	r := []rune(string(body))
	if len(r) > maxErrorBody {
		r = r[:maxErrorBody]
	}
	return "\nResposta: " + string(r)
}

func genericError(err error) *ErrorResult {
	return &ErrorResult{
		Error:   err.Error(),
		Message: "Erro ao consultar a API do PNCP",
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
