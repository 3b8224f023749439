package farkle

import (
	"encoding/json"
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/parlour/internal/games"
)

// fixedSource feeds rand with a constant word, which makes IntN(6)
// deterministic: 0 yields face 1, 1<<62 yields face 2.
type fixedSource struct{ v uint64 }

func (s fixedSource) Uint64() uint64 { return s.v }

func onesRand() *rand.Rand { return rand.New(fixedSource{0}) }
func twosRand() *rand.Rand { return rand.New(fixedSource{1 << 62}) }

func mustMove(t *testing.T, e games.Game, player string, m move) games.MoveResult {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	return e.MakeMove(player, raw)
}

func TestRollStartsTurn(t *testing.T) {
	t.Parallel()

	e := New([]string{"a", "b"}, onesRand()).(*Engine)
	result := mustMove(t, e, "a", move{Type: "roll"})
	require.True(t, result.Valid)

	// All ones: every active die scores, so the engine auto-keeps and
	// triggers hot dice.
	assert.Equal(t, true, result.Fields["hotDice"])
	assert.Equal(t, 8000, e.turnScore)
	assert.False(t, e.hasRolled)
	assert.Empty(t, e.kept)
}

func TestNotYourTurn(t *testing.T) {
	t.Parallel()

	e := New([]string{"a", "b"}, onesRand())
	result := mustMove(t, e, "b", move{Type: "roll"})
	assert.False(t, result.Valid)
	assert.Equal(t, "Not your turn", result.Message)
}

func TestFarkleEndsTurn(t *testing.T) {
	t.Parallel()

	e := New([]string{"a", "b"}, twosRand()).(*Engine)
	e.dice = [6]int{1, 1, 1, 1, 0, 0}
	e.kept = map[int]bool{0: true, 1: true, 2: true, 3: true}
	e.turnScore = 2000
	e.hasRolled = true

	result := mustMove(t, e, "a", move{Type: "roll"})
	require.True(t, result.Valid)
	assert.Equal(t, true, result.Fields["farkle"])
	assert.Equal(t, 0, e.turnScore)
	assert.Equal(t, "b", e.currentPlayer())
	assert.Equal(t, 0, e.scores["a"])
}

func TestKeepRejectsNonScoringSelectionAtomically(t *testing.T) {
	t.Parallel()

	e := New([]string{"a", "b"}, onesRand()).(*Engine)
	e.dice = [6]int{1, 2, 3, 4, 6, 6}
	e.hasRolled = true
	e.mustKeep = true

	before := e.StateFor("a").(State)
	result := mustMove(t, e, "a", move{Type: "keep", Indices: []int{1, 2}})
	require.False(t, result.Valid)
	assert.Equal(t, before, e.StateFor("a").(State))
}

func TestKeepAndRollHotDice(t *testing.T) {
	t.Parallel()

	e := New([]string{"a", "b"}, onesRand()).(*Engine)
	e.dice = [6]int{1, 1, 1, 5, 5, 5}
	e.hasRolled = true
	e.mustKeep = true

	result := mustMove(t, e, "a", move{Type: "keep-and-roll", Indices: []int{0, 1, 2, 3, 4, 5}})
	require.True(t, result.Valid)

	// The keep scores 1000 + 500 and empties the table; the follow-up
	// roll is on six fresh dice (all ones under this rng, so the roll
	// auto-keeps again). The keep's 1500 is preserved throughout.
	assert.Equal(t, 1500+8000, e.turnScore)
	assert.Equal(t, "a", e.currentPlayer())
}

func TestKeepAndBankOnHotDice(t *testing.T) {
	t.Parallel()

	e := New([]string{"a", "b"}, onesRand()).(*Engine)
	e.dice = [6]int{1, 1, 1, 5, 5, 5}
	e.hasRolled = true
	e.turnRolled = true
	e.mustKeep = true

	result := mustMove(t, e, "a", move{Type: "keep-and-bank", Indices: []int{0, 1, 2, 3, 4, 5}})
	require.True(t, result.Valid)

	// The keep empties the table and triggers hot dice, but the bank
	// half still runs: the whole 1500 commits and the turn passes.
	assert.Equal(t, true, result.Fields["hotDice"])
	assert.Equal(t, 1500, result.Fields["banked"])
	assert.Equal(t, 1500, e.scores["a"])
	assert.Equal(t, 0, e.turnScore)
	assert.Equal(t, "b", e.currentPlayer())
}

func TestBankAfterHotDice(t *testing.T) {
	t.Parallel()

	e := New([]string{"a", "b"}, onesRand()).(*Engine)
	result := mustMove(t, e, "a", move{Type: "roll"})
	require.True(t, result.Valid)
	require.Equal(t, true, result.Fields["hotDice"])

	// Banking after hot dice is a free choice; no re-roll is required.
	result = mustMove(t, e, "a", move{Type: "bank"})
	require.True(t, result.Valid)
	assert.Equal(t, 8000, result.Fields["banked"])
	assert.Equal(t, 8000, e.scores["a"])
	assert.Equal(t, "b", e.currentPlayer())
}

func TestGreedyBank(t *testing.T) {
	t.Parallel()

	e := New([]string{"a", "b"}, onesRand()).(*Engine)
	e.dice = [6]int{1, 5, 2, 2, 3, 3}
	e.hasRolled = true
	e.turnRolled = true
	e.mustKeep = true

	result := mustMove(t, e, "a", move{Type: "bank"})
	require.True(t, result.Valid)
	assert.Equal(t, 150, result.Fields["banked"])
	assert.Equal(t, 150, e.scores["a"])
	assert.Equal(t, "b", e.currentPlayer())
	assert.Equal(t, 0, e.turnScore)
}

func TestBankAtTargetEndsGame(t *testing.T) {
	t.Parallel()

	e := New([]string{"a", "b"}, onesRand()).(*Engine)
	e.scores["a"] = 9900
	e.dice = [6]int{1, 1, 2, 2, 3, 4}
	e.kept = map[int]bool{0: true, 1: true}
	e.turnScore = 200
	e.hasRolled = true
	e.turnRolled = true

	result := mustMove(t, e, "a", move{Type: "bank"})
	require.True(t, result.Valid)
	assert.True(t, result.GameOver)
	assert.Equal(t, []string{"a"}, result.Winners)
	assert.Equal(t, Target, e.scores["a"])
	assert.True(t, e.gameOver)
}

func TestRemovePlayerLeavesWinner(t *testing.T) {
	t.Parallel()

	e := New([]string{"a", "b"}, onesRand()).(*Engine)
	e.RemovePlayer("a")
	assert.True(t, e.gameOver)
	assert.Equal(t, "b", e.winner)

	// Idempotent.
	e.RemovePlayer("a")
	assert.Equal(t, "b", e.winner)
}

func TestBotBanksNearThreshold(t *testing.T) {
	t.Parallel()

	state := State{
		GameType:        Type,
		Players:         []string{"bot", "b"},
		Scores:          map[string]int{"bot": 0, "b": 0},
		Dice:            [6]int{1, 1, 2, 3, 4, 6},
		TurnScore:       400,
		HasRolled:       true,
		MustKeep:        true,
		CurrentPlayerID: "bot",
	}
	raw, ok := Bot(state, "bot", games.DifficultyMedium, onesRand())
	require.True(t, ok)
	assert.Equal(t, "keep-and-bank", games.MoveType(raw))
}
