package battleship

import (
	"encoding/json"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Bot places a fleet, confirms it, and shoots. Easy fires randomly;
// medium and hard hunt around unresolved hits, with hard also firing
// on a checkerboard parity when searching.
func Bot(state any, botID, difficulty string, rng *rand.Rand) (json.RawMessage, bool) {
	s, ok := state.(State)
	if !ok || s.GameOver {
		return nil, false
	}

	if s.Phase == PhaseSetup {
		if s.Ready {
			return nil, false
		}
		if len(s.MyShips) < len(Fleet) {
			return placeNext(s, rng), true
		}
		raw, _ := json.Marshal(move{Type: "confirm-setup"})
		return raw, true
	}

	if s.CurrentPlayerID != botID {
		return nil, false
	}
	return fireAt(s, difficulty, rng), true
}

// placeNext places the first missing ship at a random legal spot.
func placeNext(s State, rng *rand.Rand) json.RawMessage {
	placed := map[string]bool{}
	for _, sh := range s.MyShips {
		placed[sh.Name] = true
	}
	occupied := map[[2]int]bool{}
	for _, sh := range s.MyShips {
		for i := 0; i < sh.Length; i++ {
			if sh.Horizontal {
				occupied[[2]int{sh.Row, sh.Col + i}] = true
			} else {
				occupied[[2]int{sh.Row + i, sh.Col}] = true
			}
		}
	}

	for _, f := range Fleet {
		if placed[f.Name] {
			continue
		}
		for tries := 0; tries < 200; tries++ {
			horizontal := rng.IntN(2) == 0
			maxRow, maxCol := Size, Size
			if horizontal {
				maxCol = Size - f.Length + 1
			} else {
				maxRow = Size - f.Length + 1
			}
			row, col := rng.IntN(maxRow), rng.IntN(maxCol)
			fits := true
			for i := 0; i < f.Length; i++ {
				cell := [2]int{row, col + i}
				if !horizontal {
					cell = [2]int{row + i, col}
				}
				if occupied[cell] {
					fits = false
					break
				}
			}
			if fits {
				raw, _ := json.Marshal(move{
					Type: "place-ship", Ship: f.Name,
					Row: row, Col: col, Horizontal: horizontal,
				})
				return raw
			}
		}
	}
	// Dense boards always admit a placement well before 200 tries; the
	// fallback keeps the bot from stalling regardless.
	raw, _ := json.Marshal(move{Type: "place-ship", Ship: Fleet[0].Name, Row: 0, Col: 0, Horizontal: true})
	return raw
}

// fireAt picks a target square from the bot's tracking record.
func fireAt(s State, difficulty string, rng *rand.Rand) json.RawMessage {
	fired := map[[2]int]bool{}
	var hits [][2]int
	for _, shot := range s.MyShots {
		fired[[2]int{shot.Row, shot.Col}] = true
		if shot.Hit {
			hits = append(hits, [2]int{shot.Row, shot.Col})
		}
	}
	sunkCells := map[[2]int]bool{}
	for _, sh := range s.OpponentSunk {
		for i := 0; i < sh.Length; i++ {
			if sh.Horizontal {
				sunkCells[[2]int{sh.Row, sh.Col + i}] = true
			} else {
				sunkCells[[2]int{sh.Row + i, sh.Col}] = true
			}
		}
	}

	if difficulty != games.DifficultyEasy {
		// Hunt adjacent to hits that belong to a still-floating ship.
		for _, h := range hits {
			if sunkCells[h] {
				continue
			}
			for _, d := range [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}} {
				r, c := h[0]+d[0], h[1]+d[1]
				if r >= 0 && r < Size && c >= 0 && c < Size && !fired[[2]int{r, c}] {
					return fireMove(r, c)
				}
			}
		}
	}

	var candidates [][2]int
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if fired[[2]int{r, c}] {
				continue
			}
			// Ships are at least two long, so a parity search cannot
			// miss one.
			if difficulty == games.DifficultyHard && (r+c)%2 != 0 {
				continue
			}
			candidates = append(candidates, [2]int{r, c})
		}
	}
	if len(candidates) == 0 {
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				if !fired[[2]int{r, c}] {
					candidates = append(candidates, [2]int{r, c})
				}
			}
		}
	}
	pick := candidates[rng.IntN(len(candidates))]
	return fireMove(pick[0], pick[1])
}

func fireMove(row, col int) json.RawMessage {
	raw, _ := json.Marshal(move{Type: "fire", Row: row, Col: col})
	return raw
}
