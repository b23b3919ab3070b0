package commands

import (
	"context"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/fragy/internal/build"
	"git.home.luguber.info/inful/fragy/internal/config"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
	"git.home.luguber.info/inful/fragy/internal/metrics"
	"git.home.luguber.info/inful/fragy/internal/paths"
	"git.home.luguber.info/inful/fragy/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr     string        `help:"Listen address" default:"127.0.0.1:8080"`
	NoWatch  bool          `name:"no-watch" help:"Build once and serve without watching for changes"`
	Debounce time.Duration `help:"Quiet window before a change triggers a rebuild" default:"300ms"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	pc, err := paths.Resolve(root.FrameworkDir)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	builder := build.New(root.FrameworkDir,
		build.WithEnv(config.EnvFromOS()),
		build.WithLogger(g.Logger),
		build.WithRecorder(rec))
	session := preview.NewSession(builder, nil, rec, g.Logger)
	defer session.Close()

	if err := session.Rebuild(ctx); err != nil {
		if ferrors.IsConfigNotFound(err) {
			return err
		}
		g.Logger.Warn("Initial build failed; serving error page until the next change")
	}

	srv := preview.NewServer(s.Addr, session, reg)
	if err := srv.Start(); err != nil {
		return err
	}
	g.Logger.Info("Preview server listening", slog.String("url", srv.URL()))

	if s.NoWatch {
		<-ctx.Done()
	} else {
		w := &preview.Watcher{
			Debounce: s.Debounce,
			OnChange: func(ctx context.Context) { _ = session.Rebuild(ctx) },
		}
		roots := []string{pc.UserConfigPath, pc.UserDataDir}
		if dir := themeDir(pc); dir != "" {
			roots = append(roots, dir)
		}
		if err := w.Run(ctx, roots...); err != nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// themeDir is the directory of the configured theme, or "" when the user
// configuration cannot be read.
func themeDir(pc *paths.Context) string {
	raw, err := config.LoadUserConfig(pc.UserConfigPath)
	if err != nil {
		return ""
	}
	cfg, err := config.FormatConfig(config.Defaults(), raw)
	if err != nil {
		return ""
	}
	return pc.ThemeDir(cfg.Theme.Package)
}
