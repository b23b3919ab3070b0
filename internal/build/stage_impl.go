package build

import (
	"context"
	"errors"
	"os"

	"git.home.luguber.info/inful/fragy/internal/compose"
	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/emit"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
	"git.home.luguber.info/inful/fragy/internal/logfields"
	"git.home.luguber.info/inful/fragy/internal/paths"
	"git.home.luguber.info/inful/fragy/internal/theme"
)

func stageResolvePaths(_ context.Context, st *State) error {
	pc, err := paths.Resolve(st.FrameworkDir)
	if err != nil {
		return err
	}
	st.Paths = pc
	st.Logger.Debug("Paths resolved",
		logfields.Path(pc.ProjectRoot),
		"installed", pc.Installed)
	return nil
}

func stageLoadConfig(_ context.Context, st *State) error {
	raw, err := config.LoadUserConfig(st.Paths.UserConfigPath)
	if err != nil {
		return ferrors.ConfigError("load user configuration").
			WithCause(err).WithContext("path", st.Paths.UserConfigPath).Fatal().Build()
	}
	cfg, err := config.FormatConfig(config.Defaults(), raw)
	if err != nil {
		return err
	}
	st.Config = cfg
	st.Paths = st.Paths.WithTheme(cfg.Theme.Package)
	return nil
}

func stageLoadTheme(_ context.Context, st *State) error {
	pkg := st.Config.Theme.Package
	st.Theme = theme.Get(pkg)
	if st.Theme == nil {
		st.Logger.Warn("Theme has no registered Go side; using file customization only", logfields.Theme(pkg))
	}

	defaults, err := config.LoadThemeConfig(st.Paths.ThemeConfigPath)
	if err != nil {
		return ferrors.ModuleLoadError("load theme configuration").
			WithCause(err).
			WithContext("stage", string(StageLoadTheme)).
			WithContext("path", st.Paths.ThemeConfigPath).Build()
	}
	if _, err := os.Stat(st.Paths.ThemeEntryPath); errors.Is(err, os.ErrNotExist) {
		return ferrors.ModuleLoadError("theme entry not found").
			WithCause(err).
			WithContext("stage", string(StageLoadTheme)).
			WithContext("path", st.Paths.ThemeEntryPath).Build()
	}
	st.ThemeConfig = config.OverlayThemeConfig(defaults, st.Config.Theme.Config)
	return nil
}

func stageCompose(_ context.Context, st *State) error {
	c, err := compose.New(compose.Params{
		Paths:       st.Paths,
		Config:      st.Config,
		ThemeConfig: st.ThemeConfig,
		Theme:       st.Theme,
		Env:         st.Env,
		Logger:      st.Logger,
	})
	if err != nil {
		return err
	}
	g := c.Graph()
	c.Chain(g)
	c.Configure(g)
	st.Graph = g
	return nil
}

func stageEmit(ctx context.Context, st *State) error {
	report, err := emit.Run(ctx, st.Graph, emit.Options{
		BuildID:  st.BuildID,
		Recorder: st.Recorder,
		Logger:   st.Logger,
	})
	if err != nil {
		return err
	}
	st.Report = report
	return nil
}
