package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contratai/contratai/internal/config"
	"github.com/contratai/contratai/internal/core"
	"github.com/contratai/contratai/internal/observability"
	"github.com/contratai/contratai/internal/prompts"
	"github.com/contratai/contratai/internal/store"
	"github.com/contratai/contratai/internal/tools"
)

type reply struct {
	content string
	calls   []core.ToolCall
	err     error
}

// scriptedLLM returns replies in order and repeats the last one when exhausted.
type scriptedLLM struct {
	replies []reply
	seen    [][]core.Message
	tools   []core.ToolDefinition
	panicAt int
}

func (s *scriptedLLM) ChatCompletionWithTools(_ context.Context, msgs []core.Message, defs []core.ToolDefinition) (string, []core.ToolCall, error) {
	s.seen = append(s.seen, append([]core.Message(nil), msgs...))
	s.tools = defs
	if s.panicAt > 0 && len(s.seen) == s.panicAt {
		panic("llm exploded")
	}
	i := len(s.seen) - 1
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	r := s.replies[i]
	return r.content, r.calls, r.err
}

func (s *scriptedLLM) calls() int { return len(s.seen) }

func call(id, name, args string) core.ToolCall {
	return core.ToolCall{ID: id, Type: "function", Function: core.FunctionCall{Name: name, Arguments: args}}
}

type callLog struct {
	order []string
}

func testRegistry(t *testing.T, log *callLog) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry(zerolog.Nop(), 0)
	for _, name := range []string{"ConsultarUF", "ConsultarMunicipio"} {
		name := name
		require.NoError(t, r.Register(tools.Tool{
			Name:        name,
			Description: "desc " + name,
			Params:      []tools.Param{{Name: "nome", Type: tools.TypeString}},
			Handler: func(_ context.Context, args tools.Args) (string, error) {
				if log != nil {
					log.order = append(log.order, fmt.Sprintf("%s(%v)", name, args["nome"]))
				}
				return fmt.Sprintf(`{"success":true,"tool":%q}`, name), nil
			},
		}))
	}
	return r
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 17, 14, 30, 0, 0, time.UTC)
}

func newAgent(t *testing.T, llm core.LLMClient, cfg config.AgentConfig, opts ...Option) *Agent {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return New(cfg, llm, testRegistry(t, nil), prompts.Default(), opts...)
}

func TestRespond_AnswerOnFirstRound(t *testing.T) {
	llm := &scriptedLLM{replies: []reply{{content: "Olá! Posso ajudar."}}}
	a := newAgent(t, llm, config.AgentConfig{MaxIterations: 15, MemoryLimit: 20})

	out := a.RespondDetailed(context.Background(), "oi")
	assert.Equal(t, "Olá! Posso ajudar.", out.Answer)
	assert.Equal(t, StateDone, out.State)
	assert.Equal(t, 1, out.Rounds)
	assert.Equal(t, 1, llm.calls())

	hist := a.History()
	require.Len(t, hist, 2)
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "oi"}, hist[0])
	assert.Equal(t, core.Message{Role: core.RoleAssistant, Content: "Olá! Posso ajudar."}, hist[1])

	sent := llm.seen[0]
	require.Len(t, sent, 2)
	assert.Equal(t, core.RoleSystem, sent[0].Role)
	assert.Contains(t, sent[0].Content, "17/10/2026")
	assert.Len(t, llm.tools, 2)
}

func TestRespond_ExhaustionLeavesMemoryUntouched(t *testing.T) {
	llm := &scriptedLLM{replies: []reply{{calls: []core.ToolCall{call("c", "ConsultarUF", `{}`)}}}}
	a := newAgent(t, llm, config.AgentConfig{MaxIterations: 15, MemoryLimit: 20})

	out := a.RespondDetailed(context.Background(), "loop")
	assert.Equal(t, StateExhausted, out.State)
	assert.Equal(t, prompts.Default().ExhaustedMessage, out.Answer)
	assert.Equal(t, 15, out.Rounds)
	assert.Equal(t, 15, llm.calls())
	assert.Len(t, out.ToolCalls, 15)
	assert.Empty(t, a.History())
}

func TestRespond_CustomIterationLimit(t *testing.T) {
	llm := &scriptedLLM{replies: []reply{{calls: []core.ToolCall{call("c", "ConsultarUF", `{}`)}}}}
	a := newAgent(t, llm, config.AgentConfig{MaxIterations: 3})
	assert.Equal(t, prompts.Default().ExhaustedMessage, a.Respond(context.Background(), "x"))
	assert.Equal(t, 3, llm.calls())
}

func TestRespond_ToolCallsRunInOrderWithoutMerging(t *testing.T) {
	log := &callLog{}
	llm := &scriptedLLM{replies: []reply{
		{content: "vou consultar", calls: []core.ToolCall{
			call("a", "ConsultarMunicipio", `{"nome":"Campinas"}`),
			call("b", "ConsultarUF", `{"nome":"São Paulo"}`),
			call("c", "ConsultarMunicipio", `{"nome":"Santos"}`),
			call("d", "Inexistente", `{}`),
		}},
		{content: "Pronto."},
	}}
	a := New(config.AgentConfig{MaxIterations: 15, MemoryLimit: 20}, llm, testRegistry(t, log), prompts.Default(), WithClock(fixedClock))

	out := a.RespondDetailed(context.Background(), "editais")
	require.Equal(t, StateDone, out.State)
	assert.Equal(t, 2, out.Rounds)
	assert.Equal(t, []string{"ConsultarMunicipio(Campinas)", "ConsultarUF(São Paulo)", "ConsultarMunicipio(Santos)"}, log.order)

	second := llm.seen[1]
	// system, user, assistant with calls, 4 tool results
	require.Len(t, second, 7)
	assistant := second[2]
	assert.Equal(t, core.RoleAssistant, assistant.Role)
	assert.Equal(t, "vou consultar", assistant.Content)
	assert.Len(t, assistant.ToolCalls, 4)
	for i, id := range []string{"a", "b", "c", "d"} {
		msg := second[3+i]
		assert.Equal(t, core.RoleTool, msg.Role)
		assert.Equal(t, id, msg.ToolCallID)
	}
	assert.Contains(t, second[6].Content, "'Inexistente'")
	require.Len(t, out.ToolCalls, 4)
	assert.Error(t, out.ToolCalls[3].Result.Err)

	// Only the final pair is remembered.
	assert.Len(t, a.History(), 2)
}

func TestRespond_LLMFault(t *testing.T) {
	llm := &scriptedLLM{replies: []reply{{err: errors.New("connection reset")}}}
	a := newAgent(t, llm, config.AgentConfig{MaxIterations: 15, MemoryLimit: 20})

	out := a.RespondDetailed(context.Background(), "oi")
	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, prompts.Default().ErrorMessage, out.Answer)
	assert.ErrorContains(t, out.Err, "connection reset")
	assert.Empty(t, a.History())

	// The session stays usable.
	llm.replies = []reply{{err: errors.New("x")}, {content: "voltei"}}
	assert.Equal(t, "voltei", a.Respond(context.Background(), "de novo"))
}

func TestRespond_PanicIsContained(t *testing.T) {
	llm := &scriptedLLM{replies: []reply{{content: "ok"}}, panicAt: 1}
	a := newAgent(t, llm, config.AgentConfig{})

	var answer string
	require.NotPanics(t, func() { answer = a.Respond(context.Background(), "oi") })
	assert.Equal(t, prompts.Default().ErrorMessage, answer)
	assert.Empty(t, a.History())
}

func TestRespond_MemoryCarriesAndCaps(t *testing.T) {
	llm := &scriptedLLM{}
	for i := 0; i < 12; i++ {
		llm.replies = append(llm.replies, reply{content: fmt.Sprintf("r%d", i)})
	}
	a := newAgent(t, llm, config.AgentConfig{MaxIterations: 15, MemoryLimit: 20})

	for i := 0; i < 12; i++ {
		a.Respond(context.Background(), fmt.Sprintf("q%d", i))
	}
	hist := a.History()
	require.Len(t, hist, 20)
	assert.Equal(t, "q2", hist[0].Content)
	assert.Equal(t, "r11", hist[19].Content)

	last := llm.seen[11]
	// system + 20 remembered (before the 12th append: q1..r10) + user
	require.Len(t, last, 22)
	assert.Equal(t, "q1", last[1].Content)
	assert.Equal(t, "q11", last[21].Content)
}

func TestClearHistory(t *testing.T) {
	llm := &scriptedLLM{replies: []reply{{content: "a"}}}
	a := newAgent(t, llm, config.AgentConfig{})
	a.Respond(context.Background(), "1")
	require.Len(t, a.History(), 2)

	a.ClearHistory()
	assert.Empty(t, a.History())

	a.Respond(context.Background(), "2")
	sent := llm.seen[len(llm.seen)-1]
	require.Len(t, sent, 2)
	assert.Equal(t, core.RoleSystem, sent[0].Role)
}

func TestSystemPromptRebuiltEachTurn(t *testing.T) {
	days := []time.Time{
		time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}
	i := 0
	clock := func() time.Time { return days[min(i, 1)] }
	llm := &scriptedLLM{replies: []reply{{content: "a"}}}
	a := New(config.AgentConfig{}, llm, testRegistry(t, nil), prompts.Default(), WithClock(clock))

	a.Respond(context.Background(), "1")
	i = 1
	a.Respond(context.Background(), "2")

	assert.Contains(t, llm.seen[0][0].Content, "17/10/2026")
	assert.Contains(t, llm.seen[1][0].Content, "18/10/2026")
	assert.Contains(t, llm.seen[1][0].Content, "20261117")
}

func TestListTools(t *testing.T) {
	a := newAgent(t, &scriptedLLM{replies: []reply{{content: "x"}}}, config.AgentConfig{})
	assert.Equal(t, []ToolInfo{
		{Name: "ConsultarUF", Description: "desc ConsultarUF"},
		{Name: "ConsultarMunicipio", Description: "desc ConsultarMunicipio"},
	}, a.ListTools())
	assert.NotEmpty(t, a.SessionID())
	assert.Equal(t, prompts.Default().WelcomeMessage, a.WelcomeMessage())
}

func TestRespond_RecordsTranscriptAndMetrics(t *testing.T) {
	db, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()
	m := observability.NewMetrics()

	llm := &scriptedLLM{replies: []reply{
		{calls: []core.ToolCall{call("c1", "ConsultarUF", `{"nome":"Bahia"}`), call("c2", "Nada", `{}`)}},
		{content: "Bahia é BA."},
	}}
	a := newAgent(t, llm, config.AgentConfig{}, WithRecorder(db), WithMetrics(m), WithSessionID("sessao-1"))

	a.Respond(context.Background(), "sigla da Bahia?")

	turns, err := db.RecentTurns(context.Background(), "sessao-1", 5)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "done", turns[0].State)
	assert.Equal(t, 2, turns[0].Rounds)
	assert.Equal(t, "Bahia é BA.", turns[0].Answer)

	calls, err := db.ToolCalls(context.Background(), turns[0].ID)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "c1", calls[0].CallID)
	assert.True(t, calls[0].OK)
	assert.False(t, calls[1].OK)
	assert.True(t, strings.Contains(calls[1].Output, "Nada"))
}
