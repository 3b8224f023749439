package war

import (
	"encoding/json"
	rand "math/rand/v2"
)

// Bot flips whenever it owes a flip. War has no decisions to make, so
// difficulty changes nothing.
func Bot(state any, botID, _ string, _ *rand.Rand) (json.RawMessage, bool) {
	s, ok := state.(State)
	if !ok || s.GameOver || s.Flipped[botID] {
		return nil, false
	}
	raw, _ := json.Marshal(move{Type: "flip"})
	return raw, true
}
