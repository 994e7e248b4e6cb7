// Package tools is the registry of callable tools exposed to the model, plus
// the procurement lookup tools themselves.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"
	"github.com/xeipuuv/gojsonschema"

	"github.com/contratai/contratai/internal/core"
	"github.com/contratai/contratai/internal/logging"
)

// Handler runs a tool with validated arguments. Errors and panics are turned
// into error payloads by the registry.
type Handler func(ctx context.Context, args Args) (string, error)

// Tool is a named callable with a parameter schema.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler
}

type entry struct {
	tool   Tool
	schema map[string]any
	valid  *gojsonschema.Schema
}

// Registry holds tools in registration order. Not safe for concurrent Register.
type Registry struct {
	logger   zerolog.Logger
	maxRunes int
	entries  []*entry
	byName   map[string]*entry
}

// NewRegistry returns an empty registry. maxRunes caps tool output (0 = no cap).
func NewRegistry(logger zerolog.Logger, maxRunes int) *Registry {
	return &Registry{
		logger:   logger.With().Str("component", "tools").Logger(),
		maxRunes: maxRunes,
		byName:   map[string]*entry{},
	}
}

// Register adds t. Names must be unique and non-empty.
func (r *Registry) Register(t Tool) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return errors.New("tool name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %s: handler is required", name)
	}
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("tool %s already registered", name)
	}
	schema := jsonSchema(t.Params)
	compiled, err := compileSchema(schema)
	if err != nil {
		return fmt.Errorf("tool %s: schema: %w", name, err)
	}
	e := &entry{tool: t, schema: schema, valid: compiled}
	r.entries = append(r.entries, e)
	r.byName[name] = e
	return nil
}

// List returns the tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.tool)
	}
	return out
}

// Definitions returns the tools in the function-calling format sent to the model.
func (r *Registry) Definitions() []core.ToolDefinition {
	defs := make([]core.ToolDefinition, 0, len(r.entries))
	for _, e := range r.entries {
		defs = append(defs, core.ToolDefinition{
			Type: "function",
			Function: core.FunctionSpec{
				Name:        e.tool.Name,
				Description: e.tool.Description,
				Parameters:  e.schema,
			},
		})
	}
	return defs
}

// Invocation is the outcome of one Call.
type Invocation struct {
	Tool     string
	Output   string
	Err      error // why Output is an error payload; nil on success
	Duration time.Duration
}

// Call runs the named tool and reports whether it failed. Output is always
// set and is what the model sees.
func (r *Registry) Call(ctx context.Context, name, argsJSON string) Invocation {
	start := time.Now()
	inv := r.call(ctx, name, argsJSON)
	inv.Tool = name
	inv.Duration = time.Since(start)
	inv.Output = TruncateToolOutput(inv.Output, r.maxRunes)

	ev := r.logger.Debug()
	if inv.Err != nil {
		ev = r.logger.Warn().Err(inv.Err)
	}
	ev.Str("tool", name).Dur("elapsed", inv.Duration).
		Str("result", logging.Preview(inv.Output, 200)).Msg("tool executed")
	return inv
}

// Invoke runs the named tool and returns its output or an error payload. It never fails.
func (r *Registry) Invoke(ctx context.Context, name, argsJSON string) string {
	return r.Call(ctx, name, argsJSON).Output
}

// Execute implements core.ToolExecutor. The error is always nil.
func (r *Registry) Execute(ctx context.Context, name, argsJSON string) (string, error) {
	return r.Invoke(ctx, name, argsJSON), nil
}

func (r *Registry) call(ctx context.Context, name, argsJSON string) Invocation {
	e, ok := r.byName[name]
	if !ok {
		err := fmt.Errorf("Ferramenta '%s' não encontrada.", name)
		return Invocation{Output: ErrJSON(err), Err: err}
	}

	raw, err := parseArgs(argsJSON)
	if err != nil {
		return Invocation{Output: ErrJSON(err), Err: err}
	}
	args := prepare(e.tool.Params, raw)
	if err := validate(e.valid, args); err != nil {
		return Invocation{Output: ErrJSON(err), Err: err}
	}

	var out string
	var herr error
	var catcher panics.Catcher
	catcher.Try(func() {
		out, herr = e.tool.Handler(ctx, args)
	})
	if rec := catcher.Recovered(); rec != nil {
		herr = rec.AsError()
	}
	if herr != nil {
		err := fmt.Errorf("Erro ao executar ferramenta: %v", herr)
		return Invocation{Output: ErrJSON(err), Err: err}
	}
	return Invocation{Output: out}
}

func parseArgs(argsJSON string) (Args, error) {
	s := strings.TrimSpace(argsJSON)
	if s == "" || s == "null" {
		return Args{}, nil
	}
	var args Args
	if err := json.Unmarshal([]byte(s), &args); err != nil {
		return nil, fmt.Errorf("argumentos não são um objeto JSON válido: %v", err)
	}
	if args == nil {
		args = Args{}
	}
	return args, nil
}

type errorPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ErrJSON renders err as the in-band error payload.
func ErrJSON(err error) string {
	return render(errorPayload{Error: err.Error()})
}

// render marshals v as indented JSON keeping non-ASCII and '&' unescaped.
func render(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return `{"success": false, "error": "falha ao serializar resultado"}`
	}
	return strings.TrimRight(buf.String(), "\n")
}
