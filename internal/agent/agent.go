// Package agent drives the model through rounds of tool calls until it answers
// or runs out of rounds, and keeps the short conversation memory.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"

	"github.com/contratai/contratai/internal/config"
	"github.com/contratai/contratai/internal/core"
	"github.com/contratai/contratai/internal/logging"
	"github.com/contratai/contratai/internal/observability"
	"github.com/contratai/contratai/internal/prompts"
	"github.com/contratai/contratai/internal/store"
	"github.com/contratai/contratai/internal/tools"
)

// DefaultMaxIterations bounds the rounds of one Respond call.
const DefaultMaxIterations = 15

// Recorder persists finished turns. *store.DB satisfies it.
type Recorder interface {
	RecordTurn(ctx context.Context, t store.Turn) (int64, error)
	RecordToolCall(ctx context.Context, turnID int64, inv store.ToolInvocation) error
}

// ToolInfo is the display metadata of a tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ExecutedCall pairs a requested tool call with what the registry returned.
type ExecutedCall struct {
	Round  int
	Call   core.ToolCall
	Result tools.Invocation
}

// Outcome describes how a Respond call ended.
type Outcome struct {
	Answer    string
	State     State
	Rounds    int
	ToolCalls []ExecutedCall
	Err       error // set when State is StateFailed
}

// Agent owns one conversation. It is not safe for concurrent use; give every
// session its own Agent.
type Agent struct {
	client        core.LLMClient
	registry      *tools.Registry
	prompts       *prompts.Set
	memory        *Memory
	maxIterations int

	sessionID string
	now       func() time.Time
	logger    zerolog.Logger
	metrics   *observability.Metrics
	recorder  Recorder
}

// Option configures an Agent.
type Option func(*Agent)

func WithLogger(l zerolog.Logger) Option {
	return func(a *Agent) { a.logger = l.With().Str("component", "agent").Logger() }
}

// WithClock replaces time.Now for the dated system prompt and turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(a *Agent) { a.metrics = m }
}

// WithRecorder stores every finished turn. Store failures are logged only.
func WithRecorder(r Recorder) Option {
	return func(a *Agent) { a.recorder = r }
}

func WithSessionID(id string) Option {
	return func(a *Agent) { a.sessionID = id }
}

// New builds an agent with empty memory.
func New(cfg config.AgentConfig, client core.LLMClient, registry *tools.Registry, p *prompts.Set, opts ...Option) *Agent {
	if p == nil {
		p = prompts.Default()
	}
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	a := &Agent{
		client:        client,
		registry:      registry,
		prompts:       p,
		memory:        NewMemory(cfg.MemoryLimit),
		maxIterations: maxIter,
		now:           time.Now,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sessionID == "" {
		a.sessionID = uuid.NewString()
	}
	return a
}

// Respond answers userText. It never fails: exhaustion and faults produce the
// configured guidance messages.
func (a *Agent) Respond(ctx context.Context, userText string) string {
	return a.RespondDetailed(ctx, userText).Answer
}

// RespondDetailed is Respond plus how the turn ended.
func (a *Agent) RespondDetailed(ctx context.Context, userText string) Outcome {
	started := a.now()
	a.logger.Info().Int("input_len", len(userText)).Int("max_iterations", a.maxIterations).
		Str("session", a.sessionID).Msg("turn started")

	var out Outcome
	var catcher panics.Catcher
	catcher.Try(func() { out = a.run(ctx, userText) })
	if rec := catcher.Recovered(); rec != nil {
		out = Outcome{State: StateFailed, Rounds: out.Rounds, ToolCalls: out.ToolCalls, Err: rec.AsError()}
	}

	switch out.State {
	case StateDone:
		a.memory.Append(userText, out.Answer)
		a.logger.Info().Int("rounds", out.Rounds).Str("answer", logging.Preview(out.Answer, 150)).Msg("turn completed")
	case StateExhausted:
		out.Answer = a.prompts.ExhaustedMessage
		a.logger.Warn().Int("rounds", out.Rounds).Msg("iteration limit reached")
	default:
		out.State = StateFailed
		out.Answer = a.prompts.ErrorMessage
		a.logger.Error().Err(out.Err).Int("rounds", out.Rounds).Msg("turn failed")
	}

	a.metrics.RecordTurn(out.State.String(), out.Rounds)
	a.record(ctx, userText, started, out)
	return out
}

// run is the state machine. It leaves memory alone; RespondDetailed commits.
func (a *Agent) run(ctx context.Context, userText string) Outcome {
	history := a.memory.Messages()
	messages := make([]core.Message, 0, len(history)+2)
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: BuildSystemPrompt(a.prompts.SystemPrompt, a.now())})
	messages = append(messages, history...)
	messages = append(messages, core.Message{Role: core.RoleUser, Content: userText})

	defs := a.registry.Definitions()
	out := Outcome{State: StateAwaitingDecision}

	for round := 1; round <= a.maxIterations; round++ {
		out.Rounds = round
		out.State = StateAwaitingDecision

		start := time.Now()
		content, calls, err := a.client.ChatCompletionWithTools(ctx, messages, defs)
		a.metrics.RecordLLMCall(time.Since(start), err)
		if err != nil {
			out.State = StateFailed
			out.Err = fmt.Errorf("round %d: %w", round, err)
			return out
		}

		if len(calls) == 0 {
			out.State = StateDone
			out.Answer = content
			return out
		}

		a.logger.Debug().Int("round", round).Int("tool_calls", len(calls)).Msg("model requested tools")
		messages = append(messages, core.Message{Role: core.RoleAssistant, Content: content, ToolCalls: calls})
		out.State = StateExecutingTools

		for _, call := range calls {
			inv := a.registry.Call(ctx, call.Function.Name, call.Function.Arguments)
			status := "ok"
			if inv.Err != nil {
				status = "error"
			}
			a.metrics.RecordToolCall(call.Function.Name, status)
			out.ToolCalls = append(out.ToolCalls, ExecutedCall{Round: round, Call: call, Result: inv})
			messages = append(messages, core.ToolResultMessage(call, inv.Output))
		}
	}

	out.State = StateExhausted
	return out
}

func (a *Agent) record(ctx context.Context, userText string, started time.Time, out Outcome) {
	if a.recorder == nil {
		return
	}
	// The turn is over; a cancelled request context must not lose the transcript.
	ctx = context.WithoutCancel(ctx)
	turnID, err := a.recorder.RecordTurn(ctx, store.Turn{
		SessionID:  a.sessionID,
		UserText:   userText,
		Answer:     out.Answer,
		State:      out.State.String(),
		Rounds:     out.Rounds,
		StartedAt:  started,
		FinishedAt: a.now(),
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("record turn")
		return
	}
	for i, ec := range out.ToolCalls {
		err := a.recorder.RecordToolCall(ctx, turnID, store.ToolInvocation{
			Seq:        i + 1,
			Round:      ec.Round,
			CallID:     ec.Call.ID,
			Tool:       ec.Call.Function.Name,
			Arguments:  ec.Call.Function.Arguments,
			Output:     ec.Result.Output,
			OK:         ec.Result.Err == nil,
			DurationMS: ec.Result.Duration.Milliseconds(),
		})
		if err != nil {
			a.logger.Warn().Err(err).Int64("turn_id", turnID).Msg("record tool call")
			return
		}
	}
}

// ClearHistory empties the conversation memory. The next turn starts fresh.
func (a *Agent) ClearHistory() {
	a.memory.Clear()
	a.logger.Info().Str("session", a.sessionID).Msg("history cleared")
}

// History returns a copy of the conversation memory.
func (a *Agent) History() []core.Message {
	return a.memory.Messages()
}

// ListTools returns name and description of every tool, in registry order.
func (a *Agent) ListTools() []ToolInfo {
	list := a.registry.List()
	out := make([]ToolInfo, 0, len(list))
	for _, t := range list {
		out = append(out, ToolInfo{Name: t.Name, Description: t.Description})
	}
	return out
}

// SessionID identifies this conversation in the transcript store.
func (a *Agent) SessionID() string { return a.sessionID }

// WelcomeMessage is the greeting shown when a session opens.
func (a *Agent) WelcomeMessage() string { return a.prompts.WelcomeMessage }
