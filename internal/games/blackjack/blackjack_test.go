package blackjack

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/parlour/internal/deck"
	"github.com/lox/parlour/internal/games"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func apply(t *testing.T, e *Engine, playerID, raw string) games.MoveResult {
	t.Helper()
	res := e.MakeMove(playerID, json.RawMessage(raw))
	require.True(t, res.Valid, res.Message)
	return res
}

func bet(t *testing.T, e *Engine, playerID string, amount int) games.MoveResult {
	t.Helper()
	return apply(t, e, playerID, fmt.Sprintf(`{"type":"bet","amount":%d}`, amount))
}

func card(suit deck.Suit, value deck.Value) deck.Card {
	return deck.New(suit, value)
}

func TestBettingDealsWhenAllBetsIn(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	e.deck = deck.NewStacked(
		card(deck.Spades, deck.Ten), card(deck.Diamonds, deck.Six), // a: 16
		card(deck.Clubs, deck.Nine), card(deck.Hearts, deck.Five), // b: 14
		card(deck.Spades, deck.Seven), card(deck.Diamonds, deck.King), // dealer: 17
		card(deck.Spades, deck.King), // a's hit card
	)

	bet(t, e, "a", 10)
	assert.Equal(t, PhaseBetting, e.phase)
	assert.Equal(t, []string{"b"}, e.PendingActors())

	bet(t, e, "b", 5)
	require.Equal(t, PhaseActing, e.phase)
	assert.Equal(t, []string{"a"}, e.PendingActors())

	s := e.StateFor("a").(State)
	require.Len(t, s.Players, 2)
	assert.Equal(t, 90, s.Players[0].Chips)
	assert.Equal(t, 16, s.Players[0].Total)
	assert.Equal(t, 95, s.Players[1].Chips)
	// The hole card is hidden until the dealer plays.
	require.Len(t, s.Dealer, 2)
	assert.Equal(t, deck.Back(), s.Dealer[1])
}

func TestBustLosesAndDealerStandsOn17(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	e.deck = deck.NewStacked(
		card(deck.Spades, deck.Ten), card(deck.Diamonds, deck.Six),
		card(deck.Clubs, deck.Nine), card(deck.Hearts, deck.Five),
		card(deck.Spades, deck.Seven), card(deck.Diamonds, deck.King),
		card(deck.Spades, deck.King),
	)
	bet(t, e, "a", 10)
	bet(t, e, "b", 5)

	res := apply(t, e, "a", `{"type":"hit"}`) // 16 + K busts
	assert.Equal(t, true, res.Fields["busted"])
	assert.Equal(t, 26, res.Fields["total"])
	assert.Equal(t, []string{"b"}, e.PendingActors())

	apply(t, e, "b", `{"type":"stand"}`)
	require.Equal(t, PhaseSettlement, e.phase)

	s := e.StateFor("a").(State)
	assert.Equal(t, 17, s.DealerTotal)
	assert.Len(t, s.Dealer, 2) // hard 17, no draw
	assert.Equal(t, ResultLose, s.Players[0].Result)
	assert.Equal(t, 90, s.Players[0].Chips)
	assert.Equal(t, ResultLose, s.Players[1].Result) // 14 < 17
	assert.Equal(t, 95, s.Players[1].Chips)
}

func TestDoubleTakesExactlyOneCard(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	e.deck = deck.NewStacked(
		card(deck.Spades, deck.Six), card(deck.Diamonds, deck.Five), // a: 11
		card(deck.Clubs, deck.Ten), card(deck.Hearts, deck.Nine), // b: 19
		card(deck.Hearts, deck.Six), card(deck.Diamonds, deck.Ten), // dealer: 16
		card(deck.Spades, deck.Ten), // a's double card -> 21
		card(deck.Clubs, deck.Five), // dealer draws -> 21
	)
	bet(t, e, "a", 5)
	bet(t, e, "b", 5)

	res := apply(t, e, "a", `{"type":"double"}`)
	assert.Equal(t, 21, res.Fields["total"])

	apply(t, e, "b", `{"type":"stand"}`)
	require.Equal(t, PhaseSettlement, e.phase)

	s := e.StateFor("a").(State)
	assert.Equal(t, 21, s.DealerTotal)
	require.True(t, s.Players[0].Doubled)
	assert.Len(t, s.Players[0].Hand, 3)
	assert.Equal(t, ResultPush, s.Players[0].Result)
	assert.Equal(t, 100, s.Players[0].Chips) // doubled bet returned
	assert.Equal(t, ResultLose, s.Players[1].Result)
	assert.Equal(t, 95, s.Players[1].Chips)
}

func TestDoubleRequiresTwoCardsAndChips(t *testing.T) {
	e := New([]string{"a"}, testRand()).(*Engine)
	e.deck = deck.NewStacked(
		card(deck.Spades, deck.Two), card(deck.Diamonds, deck.Three),
		card(deck.Hearts, deck.Nine), card(deck.Diamonds, deck.King),
		card(deck.Spades, deck.Four),
	)
	bet(t, e, "a", 60) // more than half the stack

	res := e.MakeMove("a", json.RawMessage(`{"type":"double"}`))
	require.False(t, res.Valid)
	assert.Equal(t, "Insufficient chips to double", res.Message)

	apply(t, e, "a", `{"type":"hit"}`)
	res = e.MakeMove("a", json.RawMessage(`{"type":"double"}`))
	require.False(t, res.Valid)
	assert.Equal(t, "You can only double on your first two cards", res.Message)
}

func TestBlackjackPaysThreeToTwo(t *testing.T) {
	e := New([]string{"a"}, testRand()).(*Engine)
	e.deck = deck.NewStacked(
		card(deck.Spades, deck.Ace), card(deck.Spades, deck.King), // natural
		card(deck.Hearts, deck.Nine), card(deck.Diamonds, deck.Seven), // dealer: 16
		card(deck.Clubs, deck.Eight), // dealer draws -> 24, bust
	)

	// With no decisions left the dealer plays out immediately.
	bet(t, e, "a", 10)
	require.Equal(t, PhaseSettlement, e.phase)

	s := e.StateFor("a").(State)
	assert.Equal(t, ResultBlackjack, s.Players[0].Result)
	assert.Equal(t, 25, s.Players[0].Payout)
	assert.Equal(t, 115, s.Players[0].Chips)
}

func TestDealerHitsSoft17(t *testing.T) {
	e := New([]string{"a"}, testRand()).(*Engine)
	e.deck = deck.NewStacked(
		card(deck.Spades, deck.Ten), card(deck.Diamonds, deck.Ten), // a: 20
		card(deck.Hearts, deck.Ace), card(deck.Diamonds, deck.Six), // dealer: soft 17
		card(deck.Hearts, deck.Ten), // dealer draws -> hard 17
	)
	bet(t, e, "a", 10)
	apply(t, e, "a", `{"type":"stand"}`)

	s := e.StateFor("a").(State)
	require.Equal(t, PhaseSettlement, s.Phase)
	assert.Len(t, s.Dealer, 3)
	assert.Equal(t, 17, s.DealerTotal)
	assert.Equal(t, ResultWin, s.Players[0].Result)
	assert.Equal(t, 110, s.Players[0].Chips)
}

func TestNextRoundEliminatesBrokePlayers(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	e.phase = PhaseSettlement
	e.players[0].chips = 0

	res := apply(t, e, "b", `{"type":"next-round"}`)
	require.False(t, res.GameOver)
	assert.Equal(t, PhaseBetting, e.phase)
	assert.True(t, e.players[0].eliminated)
	assert.Equal(t, []string{"b"}, e.PendingActors())

	res = e.MakeMove("a", json.RawMessage(`{"type":"bet","amount":5}`))
	require.False(t, res.Valid)
	assert.Equal(t, "You are out of chips", res.Message)
}

func TestGameEndsWhenEveryoneIsBroke(t *testing.T) {
	e := New([]string{"a"}, testRand()).(*Engine)
	e.phase = PhaseSettlement
	e.players[0].chips = 0

	res := apply(t, e, "a", `{"type":"next-round"}`)
	assert.True(t, res.GameOver)
	assert.Empty(t, res.Winners) // the house wins
	assert.Nil(t, e.PendingActors())
}

func TestRemoveCurrentPlayerRunsOutTheDealer(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	e.deck = deck.NewStacked(
		card(deck.Spades, deck.Ten), card(deck.Diamonds, deck.Six),
		card(deck.Clubs, deck.Ten), card(deck.Hearts, deck.Eight), // b: 18
		card(deck.Spades, deck.Seven), card(deck.Diamonds, deck.King), // dealer: 17
	)
	bet(t, e, "a", 10)
	bet(t, e, "b", 10)
	require.Equal(t, []string{"a"}, e.PendingActors())

	e.RemovePlayer("a")
	assert.Equal(t, []string{"b"}, e.PendingActors())

	apply(t, e, "b", `{"type":"stand"}`)
	s := e.StateFor("b").(State)
	require.Equal(t, PhaseSettlement, s.Phase)
	assert.Equal(t, ResultWin, s.Players[1].Result) // 18 beats 17
	assert.Equal(t, 110, s.Players[1].Chips)
}

func TestOutOfTurnRejected(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	e.deck = deck.NewStacked(
		card(deck.Spades, deck.Ten), card(deck.Diamonds, deck.Six),
		card(deck.Clubs, deck.Nine), card(deck.Hearts, deck.Five),
		card(deck.Spades, deck.Seven), card(deck.Diamonds, deck.King),
	)
	bet(t, e, "a", 10)
	bet(t, e, "b", 10)

	res := e.MakeMove("b", json.RawMessage(`{"type":"hit"}`))
	require.False(t, res.Valid)
	assert.Equal(t, "Not your turn", res.Message)

	res = e.MakeMove("a", json.RawMessage(`{"type":"bet","amount":5}`))
	require.False(t, res.Valid)
	assert.Equal(t, "Bets are closed", res.Message)
}

func TestBotPlaysWholeRoundsValidly(t *testing.T) {
	rng := testRand()
	e := New([]string{"x", "y", "z"}, rng).(*Engine)
	difficulty := map[string]string{
		"x": games.DifficultyEasy,
		"y": games.DifficultyMedium,
		"z": games.DifficultyHard,
	}

	for i := 0; i < 300; i++ {
		actors := e.PendingActors()
		if len(actors) == 0 {
			break
		}
		id := actors[0]
		raw, ok := Bot(e.StateFor(id), id, difficulty[id], rng)
		require.True(t, ok, "bot %s had no move in phase %s", id, e.phase)
		res := e.MakeMove(id, raw)
		require.True(t, res.Valid, res.Message)
		if res.GameOver {
			break
		}
	}
}
