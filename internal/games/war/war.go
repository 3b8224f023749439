// Package war implements the card game War: both players flip their
// top card, higher rank takes both, ties trigger a war of three cards
// down and one up, recursively. Wars resolve atomically inside a
// single round so no intermediate state is ever observable.
package war

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/deck"
	"github.com/lox/parlour/internal/games"
)

// Type is the game tag used on the wire.
const Type = "war"

// warDownCards is how many cards each side commits face-down per war.
const warDownCards = 3

// RoundView is the last resolved round, face-up cards only.
type RoundView struct {
	Battles  [][2]deck.Card `json:"battles"` // one entry per battle in the round, [player0, player1]
	Wars     int            `json:"wars"`
	WinnerID string         `json:"winnerId"`
	Spoils   int            `json:"spoils"`
}

// Engine is the authoritative war state machine.
type Engine struct {
	players [2]string
	decks   [2][]deck.Card
	flipped [2]bool
	rounds  int

	lastRound *RoundView

	gameOver bool
	winner   string
}

// New deals a shuffled half-deck to each player.
func New(playerIDs []string, rng *rand.Rand) games.Game {
	e := &Engine{}
	copy(e.players[:], playerIDs)
	d := deck.NewDeck(rng)
	e.decks[0] = d.DealN(26)
	e.decks[1] = d.DealN(26)
	return e
}

type move struct {
	Type string `json:"type"`
}

// MakeMove accepts a flip from each player; the round resolves when
// both have flipped.
func (e *Engine) MakeMove(playerID string, raw json.RawMessage) games.MoveResult {
	var m move
	if err := json.Unmarshal(raw, &m); err != nil {
		return games.Invalid("Malformed move")
	}
	if m.Type != "flip" {
		return games.Invalid(fmt.Sprintf("Unknown move type %q", m.Type))
	}
	if e.gameOver {
		return games.Invalid("The game is over")
	}
	idx := e.playerIndex(playerID)
	if idx == -1 {
		return games.Invalid("You are not in this game")
	}
	if e.flipped[idx] {
		return games.Invalid("You have already flipped this round")
	}

	e.flipped[idx] = true
	if !e.flipped[0] || !e.flipped[1] {
		return games.OK().With("waiting", true)
	}

	round := e.resolveRound()
	e.flipped[0], e.flipped[1] = false, false
	e.rounds++
	e.lastRound = round

	if e.gameOver {
		return games.MoveResult{
			Valid: true, GameOver: true, Winners: []string{e.winner},
			Fields: map[string]any{"round": round},
		}
	}
	return games.OK().With("round", round)
}

// resolveRound plays one battle and any resulting wars to completion.
// A player who cannot supply a face-up card loses the game outright.
func (e *Engine) resolveRound() *RoundView {
	round := &RoundView{}
	var pot []deck.Card

	for {
		if len(e.decks[0]) == 0 {
			e.endGame(1)
			round.WinnerID = e.winner
			return round
		}
		if len(e.decks[1]) == 0 {
			e.endGame(0)
			round.WinnerID = e.winner
			return round
		}

		c0 := e.draw(0)
		c1 := e.draw(1)
		pot = append(pot, c0, c1)
		round.Battles = append(round.Battles, [2]deck.Card{c0, c1})

		if c0.Rank() != c1.Rank() {
			winner := 0
			if c1.Rank() > c0.Rank() {
				winner = 1
			}
			e.decks[winner] = append(e.decks[winner], pot...)
			round.WinnerID = e.players[winner]
			round.Spoils = len(pot)
			if len(e.decks[1-winner]) == 0 {
				e.endGame(winner)
			}
			return round
		}

		// War: both bury cards, then battle again.
		round.Wars++
		for i := 0; i < 2; i++ {
			n := warDownCards
			// Leave one card to battle with.
			if remaining := len(e.decks[i]) - 1; remaining < n {
				n = remaining
			}
			for j := 0; j < n; j++ {
				pot = append(pot, e.draw(i))
			}
		}
	}
}

func (e *Engine) draw(idx int) deck.Card {
	c := e.decks[idx][0]
	e.decks[idx] = e.decks[idx][1:]
	return c
}

func (e *Engine) endGame(winnerIdx int) {
	e.gameOver = true
	e.winner = e.players[winnerIdx]
}

// State is the per-viewer snapshot. Deck contents are never exposed,
// only counts and the face-up cards of the last resolved round.
type State struct {
	GameType   string          `json:"gameType"`
	Players    []string        `json:"players"`
	DeckCounts map[string]int  `json:"deckCounts"`
	Flipped    map[string]bool `json:"flipped"`
	Rounds     int             `json:"rounds"`
	LastRound  *RoundView      `json:"lastRound,omitempty"`
	GameOver   bool            `json:"gameOver"`
	Winner     string          `json:"winner,omitempty"`
}

// StateFor returns the same snapshot for every viewer; nothing in it
// reveals deck order.
func (e *Engine) StateFor(string) any {
	s := State{
		GameType:   Type,
		Players:    append([]string(nil), e.players[:]...),
		DeckCounts: map[string]int{},
		Flipped:    map[string]bool{},
		Rounds:     e.rounds,
		LastRound:  e.lastRound,
		GameOver:   e.gameOver,
		Winner:     e.winner,
	}
	for i, id := range e.players {
		s.DeckCounts[id] = len(e.decks[i])
		s.Flipped[id] = e.flipped[i]
	}
	return s
}

// RemovePlayer forfeits the game to the remaining player.
func (e *Engine) RemovePlayer(playerID string) {
	idx := e.playerIndex(playerID)
	if idx == -1 || e.gameOver {
		return
	}
	e.endGame(1 - idx)
}

// PendingActors names the players who still owe a flip this round.
func (e *Engine) PendingActors() []string {
	if e.gameOver {
		return nil
	}
	var out []string
	for i, id := range e.players {
		if !e.flipped[i] {
			out = append(out, id)
		}
	}
	return out
}

func (e *Engine) playerIndex(id string) int {
	for i, p := range e.players {
		if p == id {
			return i
		}
	}
	return -1
}
