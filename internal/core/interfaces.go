package core

import (
	"context"
)

// LLMClient abstracts the model API. A response with no tool calls is a final answer.
type LLMClient interface {
	ChatCompletionWithTools(ctx context.Context, messages []Message, tools []ToolDefinition) (string, []ToolCall, error)
}

// ToolExecutor abstracts tool execution.
type ToolExecutor interface {
	Execute(ctx context.Context, name, argsJSON string) (string, error)
}
