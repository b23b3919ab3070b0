package commands

import (
	"fmt"

	"git.home.luguber.info/inful/fragy/internal/build"
	"git.home.luguber.info/inful/fragy/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Analyze bool `help:"Write a bundle report (same as FRAGY_BUNDLE_ANALYZE=true)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	env := config.EnvFromOS()
	if b.Analyze {
		env.BundleAnalyze = true
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := build.New(root.FrameworkDir,
		build.WithEnv(env),
		build.WithLogger(g.Logger),
	).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Built %d files (%d bytes) into %s in %s\n", res.Files, res.Bytes, res.OutputDir, res.Duration.Round(1e6))
	return nil
}
