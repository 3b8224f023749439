package poker

import (
	"encoding/json"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/deck"
	"github.com/lox/parlour/internal/games"
	"github.com/lox/parlour/internal/poker/eval"
)

// bluffRate is how often a bot bets a weak hand as though it were
// strong.
const bluffRate = 0.15

// Bot picks the next poker move from a viewer snapshot. It sees only
// what any player in that seat would see.
func Bot(state any, botID, difficulty string, rng *rand.Rand) (json.RawMessage, bool) {
	s, ok := state.(State)
	if !ok || s.GameOver {
		return nil, false
	}

	me := findView(s.Players, botID)
	if me == nil || me.Eliminated {
		return nil, false
	}

	switch s.Phase {
	case PhaseVariantSelect:
		if s.DealerID != botID {
			return nil, false
		}
		variants := []string{VariantDraw, VariantStud, VariantHoldem, VariantFollowQueen}
		return marshalMove(move{Type: "choose-variant", Variant: variants[rng.IntN(len(variants))]}), true

	case PhaseWildSelect:
		if s.DealerID != botID {
			return nil, false
		}
		var wilds []string
		if rng.Float64() < 0.25 {
			wilds = []string{eval.WildJokers}
		}
		return marshalMove(move{Type: "choose-wilds", Wilds: wilds}), true

	case PhaseAnte:
		if s.DealerID != botID {
			return nil, false
		}
		return marshalMove(move{Type: "buy-in"}), true

	case PhaseBetting:
		if s.CurrentPlayerID != botID {
			return nil, false
		}
		return bettingDecision(s, *me, difficulty, rng), true

	case PhaseDraw:
		if s.CurrentPlayerID != botID {
			return nil, false
		}
		return drawDecision(s, *me), true

	case PhaseSettlement:
		if s.DealerID != botID {
			return nil, false
		}
		return marshalMove(move{Type: "next-hand"}), true
	}
	return nil, false
}

// bettingDecision sizes the bot's action from rough hand strength and
// pot odds, with a fixed bluffing frequency.
func bettingDecision(s State, me PlayerView, difficulty string, rng *rand.Rand) json.RawMessage {
	strength := handStrength(s, me)
	owed := s.CurrentBet - me.Bet
	bluffing := rng.Float64() < bluffRate

	// Harder bots demand better odds before paying and value-bet more.
	var raiseAt, callAt float64
	switch difficulty {
	case games.DifficultyEasy:
		raiseAt, callAt = 0.75, 0.25
	case games.DifficultyHard:
		raiseAt, callAt = 0.6, 0.4
	default:
		raiseAt, callAt = 0.65, 0.3
	}

	if bluffing && me.Chips > s.MinRaise+owed {
		return marshalMove(move{Type: "raise", Amount: s.MinRaise})
	}

	switch {
	case strength >= raiseAt && me.Chips > s.MinRaise+owed:
		return marshalMove(move{Type: "raise", Amount: s.MinRaise})
	case owed == 0:
		return marshalMove(move{Type: "check"})
	case potOdds(owed, s.Pot) <= strength || strength >= callAt:
		if owed >= me.Chips {
			return marshalMove(move{Type: "allin"})
		}
		return marshalMove(move{Type: "call"})
	default:
		return marshalMove(move{Type: "fold"})
	}
}

func potOdds(owed, potSize int) float64 {
	if owed <= 0 {
		return 0
	}
	return float64(owed) / float64(potSize+owed)
}

// handStrength maps the bot's visible cards to [0, 1].
func handStrength(s State, me PlayerView) float64 {
	cards := make([]deck.Card, 0, len(me.Hand)+len(s.Community))
	for _, c := range me.Hand {
		cards = append(cards, c.Up())
	}
	cards = append(cards, s.Community...)

	if len(cards) < 5 {
		return partialStrength(cards)
	}
	res, err := eval.EvaluateBestWithWilds(cards, s.Wilds)
	if err != nil {
		return 0.2
	}
	return float64(res.Rank) / float64(eval.FiveOfAKind)
}

// partialStrength scores an incomplete holding: pairs and high cards.
func partialStrength(cards []deck.Card) float64 {
	res := eval.EvaluatePartial(cards)
	switch res.Rank {
	case eval.FourOfAKind, eval.ThreeOfAKind:
		return 0.9
	case eval.TwoPair:
		return 0.7
	case eval.OnePair:
		if len(res.Tiebreakers) > 0 && res.Tiebreakers[0] >= 11 {
			return 0.6
		}
		return 0.45
	default:
		high := 0
		for _, c := range cards {
			if r := c.Rank(); r > high {
				high = r
			}
		}
		return float64(high) / 40.0 // tops out at 0.35 for an ace
	}
}

// drawDecision keeps pairs or better plus aces and wilds, discarding
// the rest up to the draw limit.
func drawDecision(s State, me PlayerView) json.RawMessage {
	counts := map[deck.Value]int{}
	for _, c := range me.Hand {
		counts[c.Value]++
	}

	var discards []int
	for i, c := range me.Hand {
		if counts[c.Value] >= 2 || c.Value == deck.Ace || eval.IsWild(c, s.Wilds) {
			continue
		}
		discards = append(discards, i)
	}
	limit := 3
	if len(discards) == 4 {
		limit = 4
	}
	if len(discards) > limit {
		discards = discards[:limit]
	}
	if len(discards) == 0 {
		return marshalMove(move{Type: "stand-pat"})
	}
	return marshalMove(move{Type: "discard", Indices: discards})
}

func findView(players []PlayerView, id string) *PlayerView {
	for i := range players {
		if players[i].ID == id {
			return &players[i]
		}
	}
	return nil
}

func marshalMove(m move) json.RawMessage {
	raw, _ := json.Marshal(m)
	return raw
}
