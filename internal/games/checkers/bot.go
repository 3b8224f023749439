package checkers

import (
	"encoding/json"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Bot picks from the legal moves in the state snapshot. Mandatory
// capture means the list is already capture-only when captures exist,
// so difficulty only shapes preference among equals: medium favours
// advancing, hard favours promotion squares and king moves.
func Bot(state any, botID, difficulty string, rng *rand.Rand) (json.RawMessage, bool) {
	s, ok := state.(State)
	if !ok || s.GameOver || s.CurrentPlayerID != botID || len(s.LegalMoves) == 0 {
		return nil, false
	}

	moves := s.LegalMoves
	if difficulty == games.DifficultyEasy {
		return marshalMove(moves[rng.IntN(len(moves))]), true
	}

	best := moves[0]
	bestScore := -1
	for _, m := range moves {
		score := 0
		if m.Capture {
			score += 4
		}
		if promotes(s, botID, m) {
			score += 3
		}
		if difficulty == games.DifficultyHard {
			// Edge columns cannot be captured from the side.
			if m.ToCol == 0 || m.ToCol == Size-1 {
				score++
			}
		}
		if score > bestScore {
			best = m
			bestScore = score
		}
	}
	return marshalMove(best), true
}

func promotes(s State, botID string, m Move) bool {
	piece := s.Board[m.FromRow][m.FromCol]
	if isKing(piece) {
		return false
	}
	if s.Colours[botID] == "red" {
		return m.ToRow == 0
	}
	return m.ToRow == Size-1
}

func marshalMove(m Move) json.RawMessage {
	raw, _ := json.Marshal(move{
		Type:    "move",
		FromRow: m.FromRow,
		FromCol: m.FromCol,
		ToRow:   m.ToRow,
		ToCol:   m.ToCol,
	})
	return raw
}
