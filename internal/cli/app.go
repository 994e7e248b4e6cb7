package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/contratai/contratai/internal/agent"
	"github.com/contratai/contratai/internal/config"
	"github.com/contratai/contratai/internal/llm"
	"github.com/contratai/contratai/internal/logging"
	"github.com/contratai/contratai/internal/observability"
	"github.com/contratai/contratai/internal/pncp"
	"github.com/contratai/contratai/internal/prompts"
	"github.com/contratai/contratai/internal/refdata"
	"github.com/contratai/contratai/internal/store"
	"github.com/contratai/contratai/internal/tools"
)

// app is the wired process: one registry, one agent session and the optional
// transcript store and metrics listener.
type app struct {
	cfg      config.Config
	logger   zerolog.Logger
	prompts  *prompts.Set
	registry *tools.Registry
	agent    *agent.Agent
	metrics  *observability.Metrics
	db       *store.DB
	server   *http.Server
}

func newApp(ctx context.Context, opts *Options) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, nil)
	if err != nil {
		return nil, &config.ConfigError{Field: "logging.level", Reason: err.Error()}
	}

	p, err := prompts.Load(cfg.Prompts.Dir)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, prompts: p, metrics: observability.NewMetrics()}

	municipalities := refdata.NewMunicipalitySource(cfg.Data.MunicipalitiesPath, cfg.Data.MunicipalitiesURL, logger)
	search := pncp.NewClient(cfg.PNCP.BaseURL, cfg.PNCP.Timeout, cfg.PNCP.UserAgent, logger)
	a.registry = tools.NewRegistry(logger, cfg.Agent.ToolOutputMaxRunes)
	if err := tools.RegisterDefaults(a.registry, p, municipalities, search, logger); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	agentOpts := []agent.Option{agent.WithLogger(logger), agent.WithMetrics(a.metrics)}
	if cfg.Store.Path != "" {
		db, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.db = db
		agentOpts = append(agentOpts, agent.WithRecorder(db))
	}

	a.agent = agent.New(cfg.Agent, llm.New(cfg.LLM, logger), a.registry, p, agentOpts...)

	if cfg.Metrics.Addr != "" {
		a.serveMetrics()
	}
	return a, nil
}

func (a *app) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.server = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Str("addr", a.cfg.Metrics.Addr).Msg("metrics listener stopped")
		}
	}()
	a.logger.Info().Str("addr", a.cfg.Metrics.Addr).Msg("serving metrics")
}

func (a *app) Close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.server.Shutdown(ctx)
		cancel()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close store")
		}
	}
}
