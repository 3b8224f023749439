package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/parlour/internal/deck"
)

func TestIsWild(t *testing.T) {
	tests := []struct {
		name  string
		card  deck.Card
		wilds []string
		want  bool
	}{
		{"joker under jokers", deck.Joker(), []string{WildJokers}, true},
		{"joker without jokers", deck.Joker(), []string{WildDeuces}, false},
		{"jack of spades is one-eyed", deck.New(deck.Spades, deck.Jack), []string{WildOneEyedJacks}, true},
		{"jack of hearts is one-eyed", deck.New(deck.Hearts, deck.Jack), []string{WildOneEyedJacks}, true},
		{"jack of diamonds is not", deck.New(deck.Diamonds, deck.Jack), []string{WildOneEyedJacks}, false},
		{"king of hearts is the suicide king", deck.New(deck.Hearts, deck.King), []string{WildSuicideKing}, true},
		{"king of spades is not", deck.New(deck.Spades, deck.King), []string{WildSuicideKing}, false},
		{"deuce", deck.New(deck.Clubs, deck.Two), []string{WildDeuces}, true},
		{"rank literal", deck.New(deck.Clubs, deck.Seven), []string{"7"}, true},
		{"rank literal miss", deck.New(deck.Clubs, deck.Eight), []string{"7"}, false},
		{"no wilds", deck.New(deck.Clubs, deck.Two), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWild(tt.card, tt.wilds))
		})
	}
}

func TestEvaluateWithWilds(t *testing.T) {
	tests := []struct {
		name  string
		cards []deck.Card
		wilds []string
		rank  HandRank
	}{
		{
			"no wilds passes through",
			hand("Ah", "Kd", "9c", "5s", "2h"),
			nil,
			HighCard,
		},
		{
			"one joker completes a royal flush",
			append(hand("10h", "Jh", "Qh", "Kh"), deck.Joker()),
			[]string{WildJokers},
			RoyalFlush,
		},
		{
			"one wild turns a pair into trips",
			hand("Ah", "Ad", "7c", "5s", "2h"),
			[]string{WildDeuces},
			ThreeOfAKind,
		},
		{
			"two deuces make quads from a pair",
			hand("Ah", "Ad", "7c", "2s", "2h"),
			[]string{WildDeuces},
			FourOfAKind,
		},
		{
			"three wilds with a natural pair make five of a kind",
			hand("9h", "9d", "2c", "2s", "2h"),
			[]string{WildDeuces},
			FiveOfAKind,
		},
		{
			"three wilds with suited connectors make a straight flush",
			hand("9h", "8h", "2c", "2s", "2h"),
			[]string{WildDeuces},
			StraightFlush,
		},
		{
			"three wilds with suited broadway make a royal flush",
			hand("Ah", "10h", "2c", "2s", "2h"),
			[]string{WildDeuces},
			RoyalFlush,
		},
		{
			"three wilds offsuit fall back to quads",
			hand("Ah", "Kd", "2c", "2s", "2h"),
			[]string{WildDeuces},
			FourOfAKind,
		},
		{
			"four wilds make five of a kind of the natural",
			hand("9h", "2d", "2c", "2s", "2h"),
			[]string{WildDeuces},
			FiveOfAKind,
		},
		{
			"five wilds make five aces",
			hand("2d", "2c", "2s", "2h", "7d"),
			[]string{WildDeuces, "7"},
			FiveOfAKind,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := EvaluateWithWilds(tt.cards, tt.wilds)
			require.NoError(t, err)
			assert.Equal(t, tt.rank, res.Rank, "got %s %v", res.Name, res.Tiebreakers)
		})
	}
}

func TestWildsNeverWeakenAHand(t *testing.T) {
	hands := [][]deck.Card{
		hand("Ah", "Kd", "9c", "5s", "2h"),
		hand("8h", "8d", "Ac", "5s", "2h"),
		hand("5h", "6d", "7c", "8s", "9h"),
		hand("Ah", "Jh", "9h", "5h", "2h"),
	}
	for _, cards := range hands {
		plain, err := Evaluate(cards)
		require.NoError(t, err)
		wild, err := EvaluateWithWilds(cards, []string{WildDeuces})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, Compare(wild, plain), 0, "hand %v", cards)
	}
}

func TestEvaluateBestWithWildsSevenCards(t *testing.T) {
	// Stud hand: a pair of kings plus two deuces plays as quads or better.
	cards := hand("Kh", "Kd", "2c", "2s", "9h", "5d", "3c")
	res, err := EvaluateBestWithWilds(cards, []string{WildDeuces})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, int(res.Rank), int(FourOfAKind), "got %s", res.Name)
}

func TestDetermineWinners(t *testing.T) {
	t.Run("single winner", func(t *testing.T) {
		winners, best, err := DetermineWinners([]PlayerHand{
			{ID: "a", Cards: hand("Ah", "Kd", "9c", "5s", "2h")},
			{ID: "b", Cards: hand("8h", "8d", "Ac", "5d", "3h")},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, winners)
		assert.Equal(t, OnePair, best.Rank)
	})

	t.Run("exact tie splits", func(t *testing.T) {
		winners, best, err := DetermineWinners([]PlayerHand{
			{ID: "a", Cards: hand("2h", "3c", "4d", "5s", "6h")},
			{ID: "b", Cards: hand("2d", "3d", "4h", "5h", "6d")},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, winners)
		assert.Equal(t, Straight, best.Rank)
	})

	t.Run("no hands", func(t *testing.T) {
		_, _, err := DetermineWinners(nil, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
