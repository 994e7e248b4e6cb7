package store

import (
	"context"
	"errors"
	"time"
)

// Turn is one finished respond call.
type Turn struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	UserText   string    `json:"user_text"`
	Answer     string    `json:"answer"`
	State      string    `json:"state"`
	Rounds     int       `json:"rounds"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// ToolInvocation is one tool call executed during a turn.
type ToolInvocation struct {
	ID         int64  `json:"id"`
	TurnID     int64  `json:"turn_id"`
	Seq        int    `json:"seq"`
	Round      int    `json:"round"`
	CallID     string `json:"call_id"`
	Tool       string `json:"tool"`
	Arguments  string `json:"arguments"`
	Output     string `json:"output"`
	OK         bool   `json:"ok"`
	DurationMS int64  `json:"duration_ms"`
}

// RecordTurn inserts t and returns its id.
func (db *DB) RecordTurn(ctx context.Context, t Turn) (int64, error) {
	if t.SessionID == "" {
		return 0, errors.New("store: turn without session id")
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO turns (session_id, user_text, answer, state, rounds, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.SessionID, t.UserText, t.Answer, t.State, t.Rounds, t.StartedAt.UTC(), t.FinishedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordToolCall attaches inv to the turn turnID.
func (db *DB) RecordToolCall(ctx context.Context, turnID int64, inv ToolInvocation) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO tool_calls (turn_id, seq, round, call_id, tool, arguments, output, ok, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turnID, inv.Seq, inv.Round, inv.CallID, inv.Tool, inv.Arguments, inv.Output, inv.OK, inv.DurationMS,
	)
	return err
}

// RecentTurns returns up to limit turns, oldest first. An empty sessionID
// matches every session.
func (db *DB) RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, session_id, user_text, answer, state, rounds, started_at, finished_at FROM (
			SELECT * FROM turns WHERE (? = '' OR session_id = ?) ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		sessionID, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserText, &t.Answer, &t.State, &t.Rounds, &t.StartedAt, &t.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ToolCalls returns the tool calls of a turn in execution order.
func (db *DB) ToolCalls(ctx context.Context, turnID int64) ([]ToolInvocation, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, turn_id, seq, round, call_id, tool, arguments, output, ok, duration_ms FROM tool_calls WHERE turn_id = ? ORDER BY seq ASC`,
		turnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ToolInvocation
	for rows.Next() {
		var inv ToolInvocation
		if err := rows.Scan(&inv.ID, &inv.TurnID, &inv.Seq, &inv.Round, &inv.CallID, &inv.Tool, &inv.Arguments, &inv.Output, &inv.OK, &inv.DurationMS); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
