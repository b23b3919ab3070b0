package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/fragy/cmd/fragy/commands"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
	_ "git.home.luguber.info/inful/fragy/internal/themes/minimal"
	"git.home.luguber.info/inful/fragy/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("fragy"),
		kong.Description("Theme-driven static blog framework"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	global := &commands.Global{Logger: slog.Default()}
	if err := kctx.Run(global, cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
