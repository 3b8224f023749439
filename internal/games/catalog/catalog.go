// Package catalog is the directory of playable games: one entry per
// engine with its capacity, lobby behavior, constructor and bot policy.
package catalog

import (
	"sort"

	"github.com/lox/parlour/internal/games"
	"github.com/lox/parlour/internal/games/battleship"
	"github.com/lox/parlour/internal/games/blackjack"
	"github.com/lox/parlour/internal/games/checkers"
	"github.com/lox/parlour/internal/games/connectfour"
	"github.com/lox/parlour/internal/games/farkle"
	"github.com/lox/parlour/internal/games/mancala"
	"github.com/lox/parlour/internal/games/poker"
	"github.com/lox/parlour/internal/games/tictactoe"
	"github.com/lox/parlour/internal/games/war"
	"github.com/lox/parlour/internal/games/yahtzee"
)

// Info describes one playable game.
type Info struct {
	Type       string
	MaxPlayers int
	// Lobby games gather seats (including host-requested bots) before
	// the engine starts instead of starting on challenge accept.
	Lobby bool
	New   games.Constructor
	Bot   games.BotPolicy
}

var entries = map[string]Info{
	poker.Type:       {Type: poker.Type, MaxPlayers: 6, Lobby: true, New: poker.New, Bot: poker.Bot},
	farkle.Type:      {Type: farkle.Type, MaxPlayers: 4, New: farkle.New, Bot: farkle.Bot},
	blackjack.Type:   {Type: blackjack.Type, MaxPlayers: 4, New: blackjack.New, Bot: blackjack.Bot},
	yahtzee.Type:     {Type: yahtzee.Type, MaxPlayers: 4, New: yahtzee.New, Bot: yahtzee.Bot},
	tictactoe.Type:   {Type: tictactoe.Type, MaxPlayers: 2, New: tictactoe.New, Bot: tictactoe.Bot},
	connectfour.Type: {Type: connectfour.Type, MaxPlayers: 2, New: connectfour.New, Bot: connectfour.Bot},
	checkers.Type:    {Type: checkers.Type, MaxPlayers: 2, New: checkers.New, Bot: checkers.Bot},
	battleship.Type:  {Type: battleship.Type, MaxPlayers: 2, New: battleship.New, Bot: battleship.Bot},
	war.Type:         {Type: war.Type, MaxPlayers: 2, New: war.New, Bot: war.Bot},
	mancala.Type:     {Type: mancala.Type, MaxPlayers: 2, New: mancala.New, Bot: mancala.Bot},
}

// Lookup returns the entry for a game type.
func Lookup(gameType string) (Info, bool) {
	info, ok := entries[gameType]
	return info, ok
}

// Types lists every known game type in stable order.
func Types() []string {
	out := make([]string, 0, len(entries))
	for t := range entries {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
