// Package bootstrap boots a fragy application from frozen build constants.
//
// The sequence is strictly ordered and never retried:
//
//	uninitialized → config_loaded → theme_config_loaded →
//	theme_setup_complete → entry_loaded → mounted
//
// A failure at any step is returned as a module-load error and the
// application is never mounted.
package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/fragy/internal/config"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
	"git.home.luguber.info/inful/fragy/internal/logfields"
	"git.home.luguber.info/inful/fragy/internal/metrics"
	"git.home.luguber.info/inful/fragy/internal/theme"
)

// Observer is notified after every state transition.
type Observer func(State)

// Option configures a Bootstrap.
type Option func(*Bootstrap)

// WithObserver registers an observer of state transitions.
func WithObserver(o Observer) Option {
	return func(b *Bootstrap) { b.observers = append(b.observers, o) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(b *Bootstrap) { b.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(b *Bootstrap) { b.recorder = r } }

// WithHTTPClient sets the HTTP client handed to the theme.
func WithHTTPClient(c *http.Client) Option { return func(b *Bootstrap) { b.client = c } }

// DefaultHTTPTimeout bounds requests made with the default theme HTTP client.
const DefaultHTTPTimeout = 30 * time.Second

// Bootstrap runs the sequence once.
type Bootstrap struct {
	constants config.BuildConstants
	loader    Loader
	host      Host
	observers []Observer
	logger    *slog.Logger
	recorder  metrics.Recorder
	client    *http.Client

	mu    sync.Mutex
	state State
	ran   bool
}

// New creates a Bootstrap for constants. A nil loader means FSLoader.
func New(constants config.BuildConstants, loader Loader, host Host, opts ...Option) *Bootstrap {
	if loader == nil {
		loader = FSLoader{}
	}
	b := &Bootstrap{
		constants: constants,
		loader:    loader,
		host:      host,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.client == nil {
		b.client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return b
}

// State returns the last state reached.
func (b *Bootstrap) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// RenderData is the value the root component is executed with.
type RenderData struct {
	Constants   config.BuildConstants
	Config      *config.Config
	ThemeConfig map[string]any
	Routes      []theme.Route
	Store       map[string]any
	Values      map[string]any
}

// Run executes the sequence. It may be called once. On success the
// App's Runtime stays live until the caller closes it.
func (b *Bootstrap) Run(ctx context.Context) (app *App, err error) {
	b.mu.Lock()
	if b.ran {
		b.mu.Unlock()
		return nil, ferrors.RuntimeError("bootstrap already ran").Build()
	}
	b.ran = true
	b.mu.Unlock()

	c := b.constants
	rt := newRuntime(c, b.client)
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	// config_loaded
	raw, err := b.loader.LoadUserConfig(ctx, c.UserConfigPath)
	if err != nil {
		return nil, b.fail(StateConfigLoaded, c.UserConfigPath, err)
	}
	cfg, err := config.FormatConfig(config.Defaults(), raw)
	if err != nil {
		return nil, b.fail(StateConfigLoaded, c.UserConfigPath, err)
	}
	rt.Config = cfg
	b.advance(StateConfigLoaded)

	// theme_config_loaded
	th, err := b.loader.LoadTheme(ctx, c.ThemePackage)
	if err != nil {
		return nil, b.fail(StateThemeConfigLoaded, c.ThemePackage, err)
	}
	themeDefaults, err := b.loader.LoadThemeConfig(ctx, c.ThemeConfigPath)
	if err != nil {
		return nil, b.fail(StateThemeConfigLoaded, c.ThemeConfigPath, err)
	}
	rt.ThemeConfig = config.OverlayThemeConfig(themeDefaults, cfg.Theme.Config)
	b.advance(StateThemeConfigLoaded)

	// theme_setup_complete
	if hook, ok := th.(theme.SetupHook); ok {
		if err := hook.Setup(ctx, rt, cfg, rt.ThemeConfig); err != nil {
			return nil, b.fail(StateThemeSetupComplete, c.ThemePackage, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, b.fail(StateThemeSetupComplete, c.ThemePackage, err)
	}
	b.advance(StateThemeSetupComplete)

	// entry_loaded
	root, err := b.loader.LoadEntry(ctx, c.ThemeEntryPath, rt.Funcs())
	if err != nil {
		return nil, b.fail(StateEntryLoaded, c.ThemeEntryPath, err)
	}
	for _, name := range rt.Components() {
		if _, err := root.New(name).Parse(rt.component(name)); err != nil {
			return nil, b.fail(StateEntryLoaded, name, err)
		}
	}
	b.advance(StateEntryLoaded)

	// mounted
	app = &App{
		Router:  NewRouter(th.Routes()),
		Store:   NewStore(th.Store()),
		Root:    root,
		Runtime: rt,
		Anchor:  AnchorID,
	}
	var buf bytes.Buffer
	err = root.Execute(&buf, RenderData{
		Constants:   c,
		Config:      cfg,
		ThemeConfig: rt.ThemeConfig,
		Routes:      app.Router.Routes(),
		Store:       app.Store.State(),
		Values:      rt.Values(),
	})
	if err != nil {
		return nil, b.fail(StateMounted, c.ThemeEntryPath, err)
	}
	app.HTML = buf.String()
	if b.host != nil {
		if err := b.host.Mount(ctx, app.Anchor, app.HTML); err != nil {
			return nil, b.fail(StateMounted, c.ThemeEntryPath, err)
		}
	}
	b.advance(StateMounted)
	return app, nil
}

func (b *Bootstrap) advance(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
	b.recorder.IncBootstrapState(s.String())
	b.logger.Debug("Bootstrap transition", logfields.State(s.String()))
	for _, o := range b.observers {
		o(s)
	}
}

func (b *Bootstrap) fail(target State, path string, err error) error {
	b.logger.Error("Bootstrap failed", logfields.State(target.String()), logfields.Path(path), logfields.Error(err))
	return ferrors.ModuleLoadError("bootstrap failed before "+target.String()).
		WithCause(err).
		WithContext("stage", target.String()).
		WithContext("path", path).
		Build()
}
