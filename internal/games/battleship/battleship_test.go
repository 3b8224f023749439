package battleship

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/parlour/internal/games"
)

func placeFleet(t *testing.T, e *Engine, playerID string) {
	t.Helper()
	for i, f := range Fleet {
		raw, _ := json.Marshal(move{Type: "place-ship", Ship: f.Name, Row: i * 2, Col: 0, Horizontal: true})
		res := e.MakeMove(playerID, raw)
		require.True(t, res.Valid, res.Message)
	}
}

func confirm(t *testing.T, e *Engine, playerID string) {
	t.Helper()
	res := e.MakeMove(playerID, json.RawMessage(`{"type":"confirm-setup"}`))
	require.True(t, res.Valid, res.Message)
}

func fire(e *Engine, playerID string, row, col int) games.MoveResult {
	return e.MakeMove(playerID, json.RawMessage(fmt.Sprintf(`{"type":"fire","row":%d,"col":%d}`, row, col)))
}

func startBattle(t *testing.T) *Engine {
	t.Helper()
	e := New([]string{"a", "b"}, nil).(*Engine)
	placeFleet(t, e, "a")
	placeFleet(t, e, "b")
	confirm(t, e, "a")
	confirm(t, e, "b")
	require.Equal(t, PhaseBattle, e.phase)
	return e
}

func TestConfirmBeforeAllShipsPlaced(t *testing.T) {
	e := New([]string{"a", "b"}, nil).(*Engine)
	raw, _ := json.Marshal(move{Type: "place-ship", Ship: "carrier", Row: 0, Col: 0, Horizontal: true})
	require.True(t, e.MakeMove("a", raw).Valid)

	res := e.MakeMove("a", json.RawMessage(`{"type":"confirm-setup"}`))
	require.False(t, res.Valid)
	assert.Equal(t, "All ships must be placed", res.Message)
	assert.Equal(t, PhaseSetup, e.phase)
	assert.False(t, e.StateFor("b").(State).OpponentReady)
}

func TestOverlappingShipsRejected(t *testing.T) {
	e := New([]string{"a", "b"}, nil).(*Engine)
	raw, _ := json.Marshal(move{Type: "place-ship", Ship: "carrier", Row: 0, Col: 0, Horizontal: true})
	require.True(t, e.MakeMove("a", raw).Valid)

	raw, _ = json.Marshal(move{Type: "place-ship", Ship: "destroyer", Row: 0, Col: 4, Horizontal: false})
	res := e.MakeMove("a", raw)
	require.False(t, res.Valid)
	assert.Equal(t, "Ships cannot overlap", res.Message)
}

func TestShipOffGridRejected(t *testing.T) {
	e := New([]string{"a", "b"}, nil).(*Engine)
	raw, _ := json.Marshal(move{Type: "place-ship", Ship: "carrier", Row: 0, Col: 7, Horizontal: true})
	res := e.MakeMove("a", raw)
	require.False(t, res.Valid)
	assert.Equal(t, "Ship does not fit on the grid", res.Message)
}

func TestReplacingShipMovesIt(t *testing.T) {
	e := New([]string{"a", "b"}, nil).(*Engine)
	raw, _ := json.Marshal(move{Type: "place-ship", Ship: "carrier", Row: 0, Col: 0, Horizontal: true})
	require.True(t, e.MakeMove("a", raw).Valid)
	raw, _ = json.Marshal(move{Type: "place-ship", Ship: "carrier", Row: 5, Col: 0, Horizontal: false})
	require.True(t, e.MakeMove("a", raw).Valid)

	s := e.StateFor("a").(State)
	require.Len(t, s.MyShips, 1)
	assert.Equal(t, 5, s.MyShips[0].Row)
	assert.False(t, s.MyShips[0].Horizontal)
}

func TestHitGrantsAnotherTurnMissPasses(t *testing.T) {
	e := startBattle(t)

	// a's fleet mirrors b's, so (0,0) is a hit on b's carrier.
	res := fire(e, "a", 0, 0)
	require.True(t, res.Valid, res.Message)
	assert.Equal(t, true, res.Fields["hit"])
	assert.Equal(t, "a", e.StateFor("a").(State).CurrentPlayerID)

	res = fire(e, "a", 9, 9)
	require.True(t, res.Valid, res.Message)
	assert.Equal(t, false, res.Fields["hit"])
	assert.Equal(t, "b", e.StateFor("a").(State).CurrentPlayerID)
}

func TestRepeatShotRejected(t *testing.T) {
	e := startBattle(t)
	require.True(t, fire(e, "a", 9, 9).Valid)
	require.True(t, fire(e, "b", 9, 9).Valid)

	res := fire(e, "a", 9, 9)
	require.False(t, res.Valid)
	assert.Equal(t, "You already fired at that square", res.Message)
}

func TestOpponentShipsHiddenUntilSunk(t *testing.T) {
	e := startBattle(t)

	s := e.StateFor("a").(State)
	assert.Empty(t, s.OpponentSunk)
	require.Len(t, s.MyShips, 5)

	// Sink b's destroyer at row 8, cols 0-1.
	res := fire(e, "a", 8, 0)
	require.True(t, res.Valid)
	res = fire(e, "a", 8, 1)
	require.True(t, res.Valid)
	assert.Equal(t, "destroyer", res.Fields["sunk"])

	s = e.StateFor("a").(State)
	require.Len(t, s.OpponentSunk, 1)
	assert.Equal(t, "destroyer", s.OpponentSunk[0].Name)
	assert.True(t, s.OpponentSunk[0].Sunk)
}

func TestSinkingEverythingWins(t *testing.T) {
	e := startBattle(t)

	var last games.MoveResult
	for i, f := range Fleet {
		for c := 0; c < f.Length; c++ {
			last = fire(e, "a", i*2, c)
			require.True(t, last.Valid, last.Message)
		}
	}
	assert.True(t, last.GameOver)
	assert.Equal(t, []string{"a"}, last.Winners)

	// Everything is open once the game ends.
	s := e.StateFor("a").(State)
	assert.Len(t, s.OpponentSunk, 5)
}

func TestRemovePlayerForfeits(t *testing.T) {
	e := startBattle(t)
	e.RemovePlayer("b")
	s := e.StateFor("a").(State)
	assert.True(t, s.GameOver)
	assert.Equal(t, "a", s.Winner)
}

func TestBotPlacesConfirmsAndShoots(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 9))
	e := New([]string{"bot", "b"}, nil).(*Engine)
	placeFleet(t, e, "b")
	confirm(t, e, "b")

	for i := 0; i < len(Fleet)+1; i++ {
		raw, ok := Bot(e.StateFor("bot"), "bot", games.DifficultyMedium, rng)
		require.True(t, ok)
		res := e.MakeMove("bot", raw)
		require.True(t, res.Valid, res.Message)
	}
	require.Equal(t, PhaseBattle, e.phase)

	raw, ok := Bot(e.StateFor("bot"), "bot", games.DifficultyMedium, rng)
	require.True(t, ok)
	res := e.MakeMove("bot", raw)
	require.True(t, res.Valid, res.Message)
}

func TestBotHuntsAroundHit(t *testing.T) {
	e := startBattle(t)
	require.True(t, fire(e, "a", 0, 3).Valid) // hit on b's carrier

	rng := rand.New(rand.NewPCG(3, 9))
	raw, ok := Bot(e.StateFor("a"), "a", games.DifficultyHard, rng)
	require.True(t, ok)
	var m move
	require.NoError(t, json.Unmarshal(raw, &m))
	adjacent := (m.Row == 0 && (m.Col == 2 || m.Col == 4)) || (m.Row == 1 && m.Col == 3)
	assert.True(t, adjacent, "expected a shot adjacent to (0,3), got (%d,%d)", m.Row, m.Col)
}
