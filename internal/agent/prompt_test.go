package agent

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPrompt(t *testing.T) {
	now := time.Date(2026, 12, 15, 23, 0, 0, 0, time.UTC)
	got := BuildSystemPrompt("  Você é o assistente.\n", now)

	assert.True(t, strings.HasPrefix(got, "Você é o assistente.\n\nCONTEXTO TEMPORAL"))
	assert.Contains(t, got, "Data atual: 15/12/2026 (formato API: 20261215)")
	assert.Contains(t, got, "'daqui 30 dias' = 20270114")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
	assert.Equal(t, "awaiting_model_decision", StateAwaitingDecision.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateExecutingTools.Terminal())
}
