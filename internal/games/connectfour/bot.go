package connectfour

import (
	"encoding/json"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Bot picks a column. Easy plays randomly; medium takes wins and blocks
// losses; hard additionally avoids handing the opponent a win on the
// row above and prefers central columns.
func Bot(state any, botID, difficulty string, rng *rand.Rand) (json.RawMessage, bool) {
	s, ok := state.(State)
	if !ok || s.GameOver || s.CurrentPlayerID != botID {
		return nil, false
	}

	var open []int
	for col := 0; col < Cols; col++ {
		if s.Board[0][col] == "" {
			open = append(open, col)
		}
	}
	if len(open) == 0 {
		return nil, false
	}

	if difficulty == games.DifficultyEasy {
		return drop(open[rng.IntN(len(open))]), true
	}

	mine := s.Colours[botID]
	theirs := Red
	if mine == Red {
		theirs = Yellow
	}

	for _, col := range open {
		if winsFor(s.Board, col, mine) {
			return drop(col), true
		}
	}
	for _, col := range open {
		if winsFor(s.Board, col, theirs) {
			return drop(col), true
		}
	}

	candidates := open
	if difficulty == games.DifficultyHard {
		var safe []int
		for _, col := range candidates {
			if !givesAwayWin(s.Board, col, mine, theirs) {
				safe = append(safe, col)
			}
		}
		if len(safe) > 0 {
			candidates = safe
		}
		// Central columns reach more winning lines.
		order := []int{3, 2, 4, 1, 5, 0, 6}
		for _, col := range order {
			for _, c := range candidates {
				if c == col {
					return drop(col), true
				}
			}
		}
	}
	return drop(candidates[rng.IntN(len(candidates))]), true
}

// winsFor reports whether dropping colour into col wins immediately.
func winsFor(board [Rows][Cols]string, col int, colour string) bool {
	row := landing(board, col)
	if row == -1 {
		return false
	}
	board[row][col] = colour
	return connectsFour(board, row, col)
}

// givesAwayWin reports whether our drop lets the opponent win by
// dropping on top of it.
func givesAwayWin(board [Rows][Cols]string, col int, mine, theirs string) bool {
	row := landing(board, col)
	if row == -1 || row == 0 {
		return false
	}
	board[row][col] = mine
	board[row-1][col] = theirs
	return connectsFour(board, row-1, col)
}

func landing(board [Rows][Cols]string, col int) int {
	for row := Rows - 1; row >= 0; row-- {
		if board[row][col] == "" {
			return row
		}
	}
	return -1
}

func connectsFour(board [Rows][Cols]string, row, col int) bool {
	colour := board[row][col]
	for _, d := range directions {
		count := 1
		for _, sign := range []int{1, -1} {
			for step := 1; step < 4; step++ {
				r := row + d[0]*step*sign
				c := col + d[1]*step*sign
				if r < 0 || r >= Rows || c < 0 || c >= Cols || board[r][c] != colour {
					break
				}
				count++
			}
		}
		if count >= 4 {
			return true
		}
	}
	return false
}

func drop(col int) json.RawMessage {
	raw, _ := json.Marshal(move{Type: "drop", Column: col})
	return raw
}
