package agent

// State is a step of the orchestration loop. Done, Exhausted and Failed are terminal.
type State int

const (
	StateAwaitingDecision State = iota
	StateExecutingTools
	StateDone
	StateExhausted
	// StateFailed marks a turn aborted by an LLM transport error or an unexpected panic.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingDecision:
		return "awaiting_model_decision"
	case StateExecutingTools:
		return "executing_tools"
	case StateDone:
		return "done"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a turn.
func (s State) Terminal() bool {
	return s == StateDone || s == StateExhausted || s == StateFailed
}
