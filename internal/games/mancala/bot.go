package mancala

import (
	"encoding/json"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Bot picks a pit. Easy sows randomly; medium prefers extra turns and
// captures; hard also weighs captured stones and store gain.
func Bot(state any, botID, difficulty string, rng *rand.Rand) (json.RawMessage, bool) {
	s, ok := state.(State)
	if !ok || s.GameOver || s.CurrentPlayerID != botID {
		return nil, false
	}

	side := 0
	if len(s.Players) > 1 && s.Players[1] == botID {
		side = 1
	}
	base := side * 7
	myStore := base + PitsPerSide

	var open []int
	for pit := 0; pit < PitsPerSide; pit++ {
		if s.Pits[base+pit] > 0 {
			open = append(open, pit)
		}
	}
	if len(open) == 0 {
		return nil, false
	}

	if difficulty == games.DifficultyEasy {
		return sow(open[rng.IntN(len(open))]), true
	}

	best := open[0]
	bestScore := -1
	for _, pit := range open {
		stones := s.Pits[base+pit]
		score := 0

		// Exact landing in our store earns another turn.
		last := landing(base+pit, stones, side)
		if last == myStore {
			score += 5
		}
		// Landing in one of our empty pits captures the opposite pit.
		if last >= base && last < myStore && last != base+pit && s.Pits[last] == 0 {
			captured := s.Pits[12-last]
			if captured > 0 {
				score += 2 + captured
			}
		}
		if difficulty == games.DifficultyHard {
			// Passing through the store banks a stone either way.
			if stones >= myStore-(base+pit) {
				score++
			}
		}
		if score > bestScore {
			best = pit
			bestScore = score
		}
	}
	return sow(best), true
}

// landing computes where the last stone falls, skipping the opponent's
// store.
func landing(from, stones, side int) int {
	skip := store1
	if side == 1 {
		skip = store0
	}
	pos := from
	for stones > 0 {
		pos = (pos + 1) % BoardSize
		if pos == skip {
			continue
		}
		stones--
	}
	return pos
}

func sow(pit int) json.RawMessage {
	raw, _ := json.Marshal(move{Type: "sow", Pit: pit})
	return raw
}
