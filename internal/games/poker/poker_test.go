package poker

import (
	"encoding/json"
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/parlour/internal/deck"
	"github.com/lox/parlour/internal/games"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func apply(t *testing.T, e *Engine, playerID, raw string) games.MoveResult {
	t.Helper()
	res := e.MakeMove(playerID, json.RawMessage(raw))
	require.True(t, res.Valid, "move %s by %s rejected: %s", raw, playerID, res.Message)
	return res
}

// startDrawHand deals a five-card-draw hand with no wilds. The first
// player is the dealer.
func startDrawHand(t *testing.T, ids ...string) *Engine {
	t.Helper()
	e := New(ids, testRand()).(*Engine)
	apply(t, e, ids[0], `{"type":"choose-variant","variant":"five-card-draw"}`)
	apply(t, e, ids[0], `{"type":"choose-wilds"}`)
	apply(t, e, ids[0], `{"type":"buy-in"}`)
	return e
}

func chipTotal(e *Engine) int {
	total := 0
	for _, p := range e.players {
		total += p.chips
	}
	return total
}

func TestOnlyDealerChoosesVariant(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)

	res := e.MakeMove("b", json.RawMessage(`{"type":"choose-variant","variant":"five-card-draw"}`))
	require.False(t, res.Valid)
	assert.Contains(t, res.Message, "dealer")

	res = e.MakeMove("a", json.RawMessage(`{"type":"choose-variant","variant":"razz"}`))
	require.False(t, res.Valid)

	apply(t, e, "a", `{"type":"choose-variant","variant":"five-card-draw"}`)
	assert.Equal(t, PhaseWildSelect, e.phase)
}

func TestHoldemSkipsWildSelect(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	apply(t, e, "a", `{"type":"choose-variant","variant":"texas-holdem"}`)
	assert.Equal(t, PhaseAnte, e.phase)
}

func TestHeadsUpBlindsAndOpeners(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	apply(t, e, "a", `{"type":"choose-variant","variant":"texas-holdem"}`)
	apply(t, e, "a", `{"type":"buy-in"}`)

	// Heads-up the dealer posts the small blind and acts first pre-flop.
	assert.Equal(t, 1, e.playerByID("a").bet)
	assert.Equal(t, 2, e.playerByID("b").bet)
	require.Equal(t, "a", e.currentActor().id)

	apply(t, e, "a", `{"type":"call"}`)
	apply(t, e, "b", `{"type":"check"}`)

	// Post-flop the big blind acts first.
	require.Equal(t, 2, e.bettingRound)
	assert.Len(t, e.community, 3)
	assert.Equal(t, "b", e.currentActor().id)
}

func TestCheckRejectedWhenFacingBet(t *testing.T) {
	e := startDrawHand(t, "a", "b")
	require.Equal(t, "b", e.currentActor().id)

	apply(t, e, "b", `{"type":"raise","amount":5}`)
	res := e.MakeMove("a", json.RawMessage(`{"type":"check"}`))
	require.False(t, res.Valid)
	assert.Contains(t, res.Message, "5 to call")
}

func TestRaiseBelowMinimumRejected(t *testing.T) {
	e := startDrawHand(t, "a", "b")
	res := e.MakeMove("b", json.RawMessage(`{"type":"raise","amount":3}`))
	require.False(t, res.Valid)
	assert.Contains(t, res.Message, "Minimum raise is 5")
}

func TestFoldAwardsPotWithoutRevealing(t *testing.T) {
	e := startDrawHand(t, "a", "b")
	apply(t, e, "b", `{"type":"raise","amount":5}`)
	res := apply(t, e, "a", `{"type":"fold"}`)
	assert.Equal(t, true, res.Fields["wonByFold"])

	require.Equal(t, PhaseSettlement, e.phase)
	require.True(t, e.wonByFold)
	assert.Equal(t, 1001, e.playerByID("b").chips)
	assert.Equal(t, 999, e.playerByID("a").chips)
	assert.Equal(t, 2000, chipTotal(e))

	// The loser never learns what the winner held.
	s := e.StateFor("a").(State)
	for _, pv := range s.Players {
		if pv.ID != "b" {
			continue
		}
		require.Len(t, pv.Hand, 5)
		for _, c := range pv.Hand {
			assert.Equal(t, deck.Back(), c)
		}
		assert.Nil(t, pv.HandResult)
	}
}

func TestNextHandRotatesDealer(t *testing.T) {
	e := startDrawHand(t, "a", "b")
	apply(t, e, "b", `{"type":"raise","amount":5}`)
	apply(t, e, "a", `{"type":"fold"}`)

	apply(t, e, "a", `{"type":"next-hand"}`)
	assert.Equal(t, PhaseVariantSelect, e.phase)
	assert.Equal(t, "b", e.dealer().id)
	assert.False(t, e.wonByFold)
}

func TestNextHandEliminatesBrokePlayers(t *testing.T) {
	e := startDrawHand(t, "a", "b")
	apply(t, e, "b", `{"type":"raise","amount":5}`)
	apply(t, e, "a", `{"type":"fold"}`)

	e.playerByID("a").chips = 0
	res := apply(t, e, "a", `{"type":"next-hand"}`)
	assert.True(t, res.GameOver)
	assert.Equal(t, []string{"b"}, res.Winners)
	assert.True(t, e.playerByID("a").eliminated)
}

func TestDrawShowdownConservesChips(t *testing.T) {
	e := startDrawHand(t, "a", "b")
	apply(t, e, "b", `{"type":"check"}`)
	apply(t, e, "a", `{"type":"check"}`)

	require.Equal(t, PhaseDraw, e.phase)
	require.Equal(t, "b", e.currentActor().id)
	apply(t, e, "b", `{"type":"stand-pat"}`)
	apply(t, e, "a", `{"type":"stand-pat"}`)

	require.Equal(t, PhaseBetting, e.phase)
	require.Equal(t, 2, e.bettingRound)
	apply(t, e, "b", `{"type":"check"}`)
	apply(t, e, "a", `{"type":"check"}`)

	require.Equal(t, PhaseSettlement, e.phase)
	assert.Equal(t, 2000, chipTotal(e))
	for _, p := range e.players {
		assert.NotEmpty(t, p.result)
		assert.NotNil(t, p.handResult)
	}

	// Showdown hands are open to every viewer.
	s := e.StateFor("a").(State)
	for _, pv := range s.Players {
		require.Len(t, pv.Hand, 5)
		for _, c := range pv.Hand {
			assert.NotEqual(t, deck.Back(), c)
		}
		assert.NotNil(t, pv.HandResult)
	}
}

func TestDrawDiscardLimits(t *testing.T) {
	e := startDrawHand(t, "a", "b")
	apply(t, e, "b", `{"type":"check"}`)
	apply(t, e, "a", `{"type":"check"}`)
	require.Equal(t, PhaseDraw, e.phase)

	b := e.playerByID("b")
	b.hand = []deck.Card{
		deck.New(deck.Clubs, deck.Two),
		deck.New(deck.Diamonds, deck.Three),
		deck.New(deck.Spades, deck.Five),
		deck.New(deck.Hearts, deck.Seven),
		deck.New(deck.Clubs, deck.Nine),
	}

	res := e.MakeMove("b", json.RawMessage(`{"type":"discard","indices":[0,1,2,3]}`))
	require.False(t, res.Valid)
	assert.Contains(t, res.Message, "more than 3")

	// Keeping an ace unlocks the four-card discard.
	b.hand[4] = deck.New(deck.Spades, deck.Ace)
	res = apply(t, e, "b", `{"type":"discard","indices":[0,1,2,3]}`)
	assert.Equal(t, 4, res.Fields["drew"])
	assert.Len(t, b.hand, 5)
	assert.Equal(t, deck.New(deck.Spades, deck.Ace), b.hand[0])
}

func TestDiscardDuplicateIndexRejected(t *testing.T) {
	e := startDrawHand(t, "a", "b")
	apply(t, e, "b", `{"type":"check"}`)
	apply(t, e, "a", `{"type":"check"}`)

	res := e.MakeMove("b", json.RawMessage(`{"type":"discard","indices":[1,1]}`))
	require.False(t, res.Valid)
	assert.Contains(t, res.Message, "repeated")
}

func TestSidePotsThreeWayAllIn(t *testing.T) {
	e := New([]string{"a", "b", "c"}, testRand()).(*Engine)
	e.players[0].chips = 100
	e.players[1].chips = 200
	e.players[2].chips = 500

	apply(t, e, "a", `{"type":"choose-variant","variant":"texas-holdem"}`)
	apply(t, e, "a", `{"type":"buy-in"}`)

	// Three-handed: b posts the small blind, c the big blind, a opens.
	require.Equal(t, "a", e.currentActor().id)
	apply(t, e, "a", `{"type":"allin"}`)
	apply(t, e, "b", `{"type":"allin"}`)
	apply(t, e, "c", `{"type":"allin"}`)

	// All-in pre-flop runs the board out to showdown.
	require.Equal(t, PhaseSettlement, e.phase)
	assert.Len(t, e.community, 5)

	require.Len(t, e.pots, 3)
	assert.Equal(t, 300, e.pots[0].Amount)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, e.pots[0].Eligible)
	assert.Equal(t, 200, e.pots[1].Amount)
	assert.ElementsMatch(t, []string{"b", "c"}, e.pots[1].Eligible)
	assert.Equal(t, 300, e.pots[2].Amount)
	assert.Equal(t, []string{"c"}, e.pots[2].Eligible)

	assert.Equal(t, 800, chipTotal(e))
}

func TestShortAllInOnlyCalls(t *testing.T) {
	e := startDrawHand(t, "a", "b", "c")
	require.Equal(t, "b", e.currentActor().id)

	apply(t, e, "b", `{"type":"raise","amount":5}`)
	require.Equal(t, 5, e.currentBet)

	// c can cover the call plus a little extra, but not a full raise.
	e.playerByID("c").chips = 7
	apply(t, e, "c", `{"type":"allin"}`)

	assert.Equal(t, 5, e.currentBet)
	assert.True(t, e.playerByID("c").allIn)
	assert.Equal(t, 7, e.playerByID("c").bet)

	apply(t, e, "a", `{"type":"call"}`)

	// Everyone matched the original level, so the round closes into the
	// draw; b never has to act again over the short all-in.
	require.Equal(t, PhaseDraw, e.phase)
	require.Equal(t, "b", e.currentActor().id)
}

func TestStudDealsTwoDownOneUp(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	apply(t, e, "a", `{"type":"choose-variant","variant":"seven-card-stud"}`)
	apply(t, e, "a", `{"type":"choose-wilds"}`)
	apply(t, e, "a", `{"type":"buy-in"}`)

	for _, p := range e.players {
		require.Len(t, p.hand, 3)
		assert.True(t, p.hand[0].FaceDown)
		assert.True(t, p.hand[1].FaceDown)
		assert.False(t, p.hand[2].FaceDown)
	}

	// Opponents see the up-card but not the hole cards.
	s := e.StateFor("a").(State)
	for _, pv := range s.Players {
		if pv.ID != "b" {
			continue
		}
		require.Len(t, pv.Hand, 3)
		assert.Equal(t, deck.Back(), pv.Hand[0])
		assert.Equal(t, deck.Back(), pv.Hand[1])
		assert.NotEqual(t, deck.Back(), pv.Hand[2])
	}
}

func TestStudRunsAllStreets(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	apply(t, e, "a", `{"type":"choose-variant","variant":"seven-card-stud"}`)
	apply(t, e, "a", `{"type":"choose-wilds"}`)
	apply(t, e, "a", `{"type":"buy-in"}`)

	for round := 1; round <= 5; round++ {
		require.Equal(t, round, e.bettingRound)
		first := e.currentActor()
		require.NotNil(t, first)
		apply(t, e, first.id, `{"type":"check"}`)
		second := e.currentActor()
		require.NotNil(t, second)
		apply(t, e, second.id, `{"type":"check"}`)
	}

	require.Equal(t, PhaseSettlement, e.phase)
	for _, p := range e.players {
		require.Len(t, p.hand, 7)
		// The last street is dealt face-down by default.
		assert.True(t, p.hand[6].FaceDown)
	}
	assert.Equal(t, 2000, chipTotal(e))
}

func TestFollowTheQueenPromotesNextRank(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	e.variant = VariantFollowQueen
	e.deck = deck.NewStacked(
		deck.New(deck.Spades, deck.Queen),
		deck.New(deck.Diamonds, deck.Seven),
		deck.New(deck.Hearts, deck.Queen),
		deck.New(deck.Clubs, deck.Jack),
	)
	p := e.players[0]

	e.dealUpCard(p)
	assert.True(t, e.queenPending)
	assert.Empty(t, e.activeWilds)

	e.dealUpCard(p)
	assert.False(t, e.queenPending)
	assert.Equal(t, []string{"7"}, e.activeWilds)

	e.dealUpCard(p)
	e.dealUpCard(p)
	assert.Equal(t, []string{"7", "J"}, e.activeWilds)
}

func TestQueenEndingDealRoundPromotesNothing(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	apply(t, e, "a", `{"type":"choose-variant","variant":"follow-the-queen"}`)
	apply(t, e, "a", `{"type":"choose-wilds"}`)
	apply(t, e, "a", `{"type":"buy-in"}`)

	// Third street came off a shuffled deck; clear anything it promoted
	// and stack the next two streets.
	e.activeWilds = nil
	e.queenPending = false
	e.deck = deck.NewStacked(
		deck.New(deck.Hearts, deck.Nine),
		deck.New(deck.Spades, deck.Queen),  // last up card of fourth street
		deck.New(deck.Diamonds, deck.Four), // first up card of fifth street
		deck.New(deck.Clubs, deck.Eight),
	)

	apply(t, e, e.currentActor().id, `{"type":"check"}`)
	apply(t, e, e.currentActor().id, `{"type":"check"}`)
	require.Equal(t, 2, e.bettingRound)

	// The queen closed its deal round, so it promotes nothing.
	assert.False(t, e.queenPending)
	assert.Empty(t, e.activeWilds)

	apply(t, e, e.currentActor().id, `{"type":"check"}`)
	apply(t, e, e.currentActor().id, `{"type":"check"}`)
	require.Equal(t, 3, e.bettingRound)
	assert.Empty(t, e.activeWilds)
}

func TestRemovePlayerEndsHandByFold(t *testing.T) {
	e := startDrawHand(t, "a", "b", "c")
	require.Equal(t, "b", e.currentActor().id)

	e.RemovePlayer("b")
	assert.True(t, e.playerByID("b").eliminated)
	require.Equal(t, "c", e.currentActor().id)

	e.RemovePlayer("c")
	require.Equal(t, PhaseSettlement, e.phase)
	assert.True(t, e.wonByFold)
	assert.True(t, e.gameOver)
	assert.Equal(t, "a", e.winner)
}

func TestPendingActorsFollowsPhase(t *testing.T) {
	e := New([]string{"a", "b"}, testRand()).(*Engine)
	assert.Equal(t, []string{"a"}, e.PendingActors())

	apply(t, e, "a", `{"type":"choose-variant","variant":"five-card-draw"}`)
	assert.Equal(t, []string{"a"}, e.PendingActors())

	apply(t, e, "a", `{"type":"choose-wilds"}`)
	apply(t, e, "a", `{"type":"buy-in"}`)
	assert.Equal(t, []string{"b"}, e.PendingActors())

	apply(t, e, "b", `{"type":"raise","amount":5}`)
	apply(t, e, "a", `{"type":"fold"}`)
	assert.Equal(t, []string{"a"}, e.PendingActors())
}

func TestBotAlwaysProducesValidMoves(t *testing.T) {
	rng := testRand()
	e := New([]string{"a", "b", "c"}, rng).(*Engine)

	for i := 0; i < 2000 && !e.gameOver; i++ {
		actors := e.PendingActors()
		require.NotEmpty(t, actors, "engine stalled in phase %s", e.phase)
		id := actors[0]
		mv, ok := Bot(e.StateFor(id), id, games.DifficultyMedium, rng)
		require.True(t, ok, "bot had no move in phase %s", e.phase)
		res := e.MakeMove(id, mv)
		require.True(t, res.Valid, "bot move %s rejected: %s", mv, res.Message)

		// Every pot is paid back out by settlement.
		if e.phase == PhaseSettlement {
			require.Equal(t, 3000, chipTotal(e))
		}
	}
	if e.gameOver {
		assert.NotEmpty(t, e.winner)
	}
}
