package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contratai/contratai/internal/core"
)

func TestMemory_EvictsOldestFirst(t *testing.T) {
	m := NewMemory(20)
	for i := 0; i < 10; i++ {
		m.Append(fmt.Sprintf("u%d", i), fmt.Sprintf("a%d", i))
	}
	require.Equal(t, 20, m.Len())
	assert.Equal(t, "u0", m.Messages()[0].Content)

	m.Append("u10", "a10")
	msgs := m.Messages()
	require.Len(t, msgs, 20)
	assert.Equal(t, "u1", msgs[0].Content)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, "a10", msgs[19].Content)
}

func TestMemory_OddLimitKeepsMostRecentEntries(t *testing.T) {
	m := NewMemory(3)
	m.Append("u0", "a0")
	m.Append("u1", "a1")
	msgs := m.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "a0", msgs[0].Content)
}

func TestMemory_CopyAndClear(t *testing.T) {
	m := NewMemory(0)
	assert.Equal(t, DefaultMemoryLimit, m.Limit())
	m.Append("u", "a")

	msgs := m.Messages()
	msgs[0].Content = "mutated"
	assert.Equal(t, "u", m.Messages()[0].Content)

	m.Clear()
	assert.Zero(t, m.Len())
	assert.Empty(t, m.Messages())
}
