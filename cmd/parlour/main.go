package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the game server"`
	Games   GamesCmd         `cmd:"" help:"List the available game types"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("parlour"),
		kong.Description("Realtime multiplayer server for casual card and board games"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
