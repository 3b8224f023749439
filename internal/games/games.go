// Package games defines the contract every game engine implements.
// Engines are pure state machines: no I/O, no clocks, no goroutines.
// The hub owns serialization; an engine sees a totally ordered stream
// of moves.
package games

import (
	"encoding/json"
	rand "math/rand/v2"
)

// Game is the authoritative state machine for one match.
//
// MakeMove validates and applies a move atomically: an invalid move
// mutates nothing and reports a diagnostic, a valid move fully applies
// including any cascading transitions. StateFor returns the per-viewer
// snapshot with everything the viewer may not see redacted.
// RemovePlayer is idempotent; if the leaver was the current actor the
// engine advances the turn, and if only one player remains that player
// wins.
type Game interface {
	MakeMove(playerID string, move json.RawMessage) MoveResult
	StateFor(viewerID string) any
	RemovePlayer(playerID string)
	PendingActors() []string
}

// MoveResult is the outcome of MakeMove. Fields carries game-specific
// result data (e.g. farkle's hotDice flag) that is flattened into the
// JSON object alongside the fixed keys.
type MoveResult struct {
	Valid    bool
	Message  string
	GameOver bool
	Winners  []string
	Fields   map[string]any
}

// Invalid builds a rejection with a diagnostic for the mover.
func Invalid(message string) MoveResult {
	return MoveResult{Valid: false, Message: message}
}

// OK builds an accepted result.
func OK() MoveResult {
	return MoveResult{Valid: true}
}

// With returns a copy of the result with an extra field set.
func (r MoveResult) With(key string, value any) MoveResult {
	fields := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		fields[k] = v
	}
	fields[key] = value
	r.Fields = fields
	return r
}

// MarshalJSON flattens Fields into the result object.
func (r MoveResult) MarshalJSON() ([]byte, error) {
	out := map[string]any{"valid": r.Valid}
	if r.Message != "" {
		out["message"] = r.Message
	}
	if r.GameOver {
		out["gameOver"] = true
		out["winners"] = r.Winners
	}
	for k, v := range r.Fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// Constructor builds a fresh engine for the given players in turn
// order. Randomness is injected for deterministic tests.
type Constructor func(playerIDs []string, rng *rand.Rand) Game

// BotPolicy picks a move for a bot seat. It receives exactly what
// StateFor(botID) returned, never the engine's private state, which
// keeps bots honest. A false return means the bot has no move to make.
type BotPolicy func(state any, botID, difficulty string, rng *rand.Rand) (json.RawMessage, bool)

// Bot difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// MoveType peeks at the "type" tag of a move without decoding the rest.
func MoveType(move json.RawMessage) string {
	var tagged struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(move, &tagged); err != nil {
		return ""
	}
	return tagged.Type
}
