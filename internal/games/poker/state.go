package poker

import (
	"github.com/lox/parlour/internal/deck"
	"github.com/lox/parlour/internal/poker/eval"
	"github.com/lox/parlour/internal/poker/pot"
)

// State is the per-viewer snapshot of the table.
type State struct {
	GameType        string       `json:"gameType"`
	Phase           string       `json:"phase"`
	Variant         string       `json:"variant,omitempty"`
	Wilds           []string     `json:"wilds,omitempty"`
	Community       []deck.Card  `json:"community,omitempty"`
	Pot             int          `json:"pot"`
	Pots            []pot.Pot    `json:"pots,omitempty"`
	CurrentBet      int          `json:"currentBet"`
	MinRaise        int          `json:"minRaise"`
	BettingRound    int          `json:"bettingRound"`
	DealerID        string       `json:"dealerId"`
	CurrentPlayerID string       `json:"currentPlayerId,omitempty"`
	WonByFold       bool         `json:"wonByFold,omitempty"`
	Players         []PlayerView `json:"players"`
	GameOver        bool         `json:"gameOver"`
	Winner          string       `json:"winner,omitempty"`
}

// PlayerView is one seat as a particular viewer is allowed to see it.
type PlayerView struct {
	ID         string       `json:"id"`
	Chips      int          `json:"chips"`
	Bet        int          `json:"bet"`
	TotalBet   int          `json:"totalBet"`
	Hand       []deck.Card  `json:"hand,omitempty"`
	Folded     bool         `json:"folded"`
	AllIn      bool         `json:"allIn"`
	HasActed   bool         `json:"hasActed"`
	Eliminated bool         `json:"isEliminated"`
	Result     string       `json:"result,omitempty"`
	Payout     int          `json:"payout,omitempty"`
	HandResult *eval.Result `json:"handResult,omitempty"`
}

// StateFor projects the table for one viewer, redacting whatever they
// are not entitled to see. Bluff privacy: a hand won by fold reveals
// nothing, even at settlement.
func (e *Engine) StateFor(viewerID string) any {
	s := State{
		GameType:        Type,
		Phase:           e.phase,
		Variant:         e.variant,
		Wilds:           append([]string(nil), e.activeWilds...),
		Community:       append([]deck.Card(nil), e.community...),
		Pot:             e.pm.TotalPot(),
		CurrentBet:      e.currentBet,
		MinRaise:        e.minRaise,
		BettingRound:    e.bettingRound,
		GameOver:        e.gameOver,
		Winner:          e.winner,
		WonByFold:       e.wonByFold,
	}
	if d := e.dealer(); d != nil {
		s.DealerID = d.id
	}
	if e.isActingPhase() {
		if p := e.currentActor(); p != nil {
			s.CurrentPlayerID = p.id
		}
	}
	if e.handOver {
		s.Pots = append([]pot.Pot(nil), e.pots...)
	}

	for _, pl := range e.players {
		s.Players = append(s.Players, e.viewOf(pl, viewerID))
	}
	return s
}

func (e *Engine) viewOf(pl *player, viewerID string) PlayerView {
	v := PlayerView{
		ID:         pl.id,
		Chips:      pl.chips,
		Bet:        pl.bet,
		TotalBet:   pl.totalBet,
		Folded:     pl.folded,
		AllIn:      pl.allIn,
		HasActed:   pl.hasActed,
		Eliminated: pl.eliminated,
		Result:     pl.result,
		Payout:     pl.payout,
	}

	if pl.id == viewerID {
		v.Hand = append([]deck.Card(nil), pl.hand...)
		v.HandResult = pl.handResult
		return v
	}

	revealed := e.phase == PhaseSettlement && !e.wonByFold && !pl.folded
	if revealed {
		v.Hand = faceUp(pl.hand)
		v.HandResult = pl.handResult
		return v
	}

	// Hidden: stud shows the up-cards, everything else shows backs.
	for _, c := range pl.hand {
		switch {
		case e.isStudStyle() && !c.FaceDown:
			v.Hand = append(v.Hand, c)
		default:
			v.Hand = append(v.Hand, deck.Back())
		}
	}
	return v
}

func (e *Engine) isStudStyle() bool {
	return e.variant == VariantStud || e.variant == VariantFollowQueen
}
