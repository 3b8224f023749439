package tictactoe

import (
	"encoding/json"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Bot picks a cell. Easy plays randomly; medium takes wins and blocks
// losses; hard additionally prefers the centre and corners.
func Bot(state any, botID, difficulty string, rng *rand.Rand) (json.RawMessage, bool) {
	s, ok := state.(State)
	if !ok || s.GameOver || s.CurrentPlayerID != botID {
		return nil, false
	}

	var open [][2]int
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if s.Board[r][c] == "" {
				open = append(open, [2]int{r, c})
			}
		}
	}
	if len(open) == 0 {
		return nil, false
	}

	if difficulty == games.DifficultyEasy {
		cell := open[rng.IntN(len(open))]
		return place(cell), true
	}

	mine := s.Marks[botID]
	theirs := MarkX
	if mine == MarkX {
		theirs = MarkO
	}

	if cell, ok := completing(s.Board, mine); ok {
		return place(cell), true
	}
	if cell, ok := completing(s.Board, theirs); ok {
		return place(cell), true
	}

	if difficulty == games.DifficultyHard {
		preferred := [][2]int{{1, 1}, {0, 0}, {0, 2}, {2, 0}, {2, 2}}
		for _, cell := range preferred {
			if s.Board[cell[0]][cell[1]] == "" {
				return place(cell), true
			}
		}
	}
	cell := open[rng.IntN(len(open))]
	return place(cell), true
}

// completing finds a cell that would give mark three in a row.
func completing(board [3][3]string, mark string) ([2]int, bool) {
	for _, l := range lines {
		count := 0
		empty := [2]int{-1, -1}
		for _, cell := range l {
			switch board[cell[0]][cell[1]] {
			case mark:
				count++
			case "":
				empty = cell
			}
		}
		if count == 2 && empty[0] != -1 {
			return empty, true
		}
	}
	return [2]int{}, false
}

func place(cell [2]int) json.RawMessage {
	raw, _ := json.Marshal(move{Type: "place", Row: cell[0], Col: cell[1]})
	return raw
}
