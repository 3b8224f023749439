package blackjack

import (
	"encoding/json"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// flatBet is what a bot wagers each round, capped by its stack.
const flatBet = 5

// Bot plays from the table snapshot. Easy hits to 17, medium plays
// against the dealer's upcard, hard adds soft-hand and doubling rules.
func Bot(state any, botID, difficulty string, rng *rand.Rand) (json.RawMessage, bool) {
	s, ok := state.(State)
	if !ok || s.GameOver {
		return nil, false
	}
	var me *PlayerView
	for i := range s.Players {
		if s.Players[i].ID == botID {
			me = &s.Players[i]
		}
	}
	if me == nil || me.Out {
		return nil, false
	}

	switch s.Phase {
	case PhaseBetting:
		if me.Bet > 0 {
			return nil, false
		}
		amount := flatBet
		if me.Chips < amount {
			amount = me.Chips
		}
		return marshal(move{Type: "bet", Amount: amount}), true

	case PhaseActing:
		if s.CurrentPlayerID != botID {
			return nil, false
		}
		return marshal(move{Type: chooseAction(s, me, difficulty)}), true

	case PhaseSettlement:
		return marshal(move{Type: "next-round"}), true
	}
	return nil, false
}

func chooseAction(s State, me *PlayerView, difficulty string) string {
	total := me.Total

	if difficulty == games.DifficultyEasy {
		if total < 17 {
			return "hit"
		}
		return "stand"
	}

	upcard := 0
	if len(s.Dealer) > 0 {
		upcard = s.Dealer[0].Rank()
		if upcard > 10 && upcard < 14 {
			upcard = 10
		} else if upcard == 14 {
			upcard = 11
		}
	}

	soft := isSoft(me.Hand)

	if difficulty == games.DifficultyHard {
		// Double hard 10 or 11 against a weaker upcard.
		if len(me.Hand) == 2 && !soft && (total == 10 || total == 11) &&
			upcard < total && me.Chips >= me.Bet {
			return "double"
		}
		if soft && total <= 17 {
			return "hit"
		}
	}

	// Stand on stiff totals when the dealer is likely to bust.
	if total >= 17 {
		return "stand"
	}
	if total >= 13 && upcard >= 2 && upcard <= 6 {
		return "stand"
	}
	if total == 12 && upcard >= 4 && upcard <= 6 {
		return "stand"
	}
	return "hit"
}

func marshal(m move) json.RawMessage {
	raw, _ := json.Marshal(m)
	return raw
}
