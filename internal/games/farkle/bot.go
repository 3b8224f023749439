package farkle

import (
	"encoding/json"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// bankThresholds is the turn score at which each difficulty stops
// pushing its luck. Harder bots press on longer when plenty of dice
// remain.
var bankThresholds = map[string]int{
	games.DifficultyEasy:   300,
	games.DifficultyMedium: 450,
	games.DifficultyHard:   600,
}

// Bot picks the next Farkle move from a viewer snapshot.
func Bot(state any, botID, difficulty string, rng *rand.Rand) (json.RawMessage, bool) {
	s, ok := state.(State)
	if !ok || s.GameOver || s.CurrentPlayerID != botID {
		return nil, false
	}

	if !s.HasRolled {
		return marshalMove(move{Type: "roll"}), true
	}

	if !s.MustKeep {
		// Mid-turn with nothing pending: either keep rolling or bank.
		if s.TurnScore >= bankThreshold(difficulty, 6) {
			return marshalMove(move{Type: "bank"}), true
		}
		return marshalMove(move{Type: "roll"}), true
	}

	kept := map[int]bool{}
	for _, i := range s.KeptIndices {
		kept[i] = true
	}
	var active []int
	for i := 0; i < 6; i++ {
		if !kept[i] && s.Dice[i] != 0 {
			active = append(active, i)
		}
	}

	selection := greedySelection(s.Dice, active)
	if len(selection) == 0 {
		// No scoring dice should mean a farkle already ended the turn;
		// bank whatever the engine will allow as a fallback.
		return marshalMove(move{Type: "bank"}), true
	}

	score := Score(activeValues(s.Dice, selection))
	remaining := 6 - len(s.KeptIndices) - len(selection)
	if remaining == 0 {
		// Hot dice incoming: always worth rerolling.
		return marshalMove(move{Type: "keep-and-roll", Indices: selection}), true
	}

	if s.TurnScore+score >= bankThreshold(difficulty, remaining) {
		return marshalMove(move{Type: "keep-and-bank", Indices: selection}), true
	}
	return marshalMove(move{Type: "keep-and-roll", Indices: selection}), true
}

// bankThreshold scales the base threshold down as fewer dice remain;
// rolling two dice is much more likely to farkle than rolling five.
func bankThreshold(difficulty string, remaining int) int {
	base, ok := bankThresholds[difficulty]
	if !ok {
		base = bankThresholds[games.DifficultyMedium]
	}
	if remaining <= 2 {
		return base / 2
	}
	return base
}

func marshalMove(m move) json.RawMessage {
	raw, _ := json.Marshal(m)
	return raw
}
