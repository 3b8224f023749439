package yahtzee

import (
	"encoding/json"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Bot plays one turn step from the snapshot. Easy rerolls blindly,
// medium holds its most common face, hard also chases straights and
// banks big rolls early.
func Bot(state any, botID, difficulty string, rng *rand.Rand) (json.RawMessage, bool) {
	s, ok := state.(State)
	if !ok || s.GameOver || s.CurrentPlayerID != botID {
		return nil, false
	}
	scorecard, ok := s.Scorecards[botID]
	if !ok {
		return nil, false
	}

	if s.RollsUsed == 0 {
		return marshalMove(move{Type: "roll"}), true
	}

	bestCat, bestPts := bestOpenCategory(scorecard.Scores, s.Dice)
	if bestCat == "" {
		return nil, false
	}
	if s.RollsLeft == 0 {
		return marshalMove(move{Type: "score", Category: bestCat}), true
	}

	switch difficulty {
	case games.DifficultyEasy:
		// Reroll everything half the time, otherwise take what's there.
		if rng.IntN(2) == 0 {
			return marshalMove(move{Type: "roll"}), true
		}
		return marshalMove(move{Type: "score", Category: bestCat}), true

	case games.DifficultyHard:
		// A made yahtzee, large straight or big set is never worth
		// rerolling.
		if bestPts >= smallStraightPoints {
			return marshalMove(move{Type: "score", Category: bestCat}), true
		}
		if keep := straightDraw(s.Dice); keep != nil {
			return marshalMove(move{Type: "roll", Keep: keep}), true
		}
		return marshalMove(move{Type: "roll", Keep: mostCommonFaceIndices(s.Dice)}), true

	default: // medium
		if bestPts >= fullHousePoints {
			return marshalMove(move{Type: "score", Category: bestCat}), true
		}
		return marshalMove(move{Type: "roll", Keep: mostCommonFaceIndices(s.Dice)}), true
	}
}

// bestOpenCategory returns the open category the dice score highest in.
// Ties go to the earlier category on the card, which favors the upper
// section and its bonus.
func bestOpenCategory(scored map[string]int, dice [DiceCount]int) (string, int) {
	bestCat, bestPts := "", -1
	for _, cat := range Categories {
		if _, done := scored[cat]; done {
			continue
		}
		if pts := ScoreCategory(cat, dice); pts > bestPts {
			bestCat, bestPts = cat, pts
		}
	}
	return bestCat, bestPts
}

// mostCommonFaceIndices returns the indices of every die showing the
// most frequent face.
func mostCommonFaceIndices(dice [DiceCount]int) []int {
	counts := [7]int{}
	for _, d := range dice {
		counts[d]++
	}
	face, best := 0, 0
	for f := 6; f >= 1; f-- {
		if counts[f] > best {
			face, best = f, counts[f]
		}
	}
	var keep []int
	for i, d := range dice {
		if d == face {
			keep = append(keep, i)
		}
	}
	if len(keep) == DiceCount {
		keep = keep[:DiceCount-1]
	}
	return keep
}

// straightDraw returns dice to hold when four distinct consecutive
// faces are showing, or nil.
func straightDraw(dice [DiceCount]int) []int {
	counts := [7]int{}
	for _, d := range dice {
		counts[d]++
	}
	for lo := 1; lo <= 3; lo++ {
		run := 0
		for f := lo; f <= 6 && counts[f] > 0; f++ {
			run++
		}
		if run < 4 {
			continue
		}
		var keep []int
		used := map[int]bool{}
		for i, d := range dice {
			if d >= lo && d < lo+run && !used[d] {
				used[d] = true
				keep = append(keep, i)
			}
		}
		if len(keep) == DiceCount {
			keep = keep[:DiceCount-1]
		}
		return keep
	}
	return nil
}

func marshalMove(m move) json.RawMessage {
	raw, _ := json.Marshal(m)
	return raw
}
