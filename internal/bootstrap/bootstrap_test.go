package bootstrap

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/events"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
	"git.home.luguber.info/inful/fragy/internal/theme"
)

type plainTheme struct{}

func (plainTheme) Package() string { return "fragy-theme-plain" }
func (plainTheme) Routes() []theme.Route {
	return []theme.Route{{Path: "/", Name: "home", Component: "home"}}
}
func (plainTheme) Store() theme.StoreDefinition {
	return theme.StoreDefinition{State: map[string]any{"count": 0}}
}

type setupTheme struct {
	plainTheme
	err error
}

func (s setupTheme) Setup(_ context.Context, h theme.Handle, cfg *config.Config, themeConfig map[string]any) error {
	if s.err != nil {
		return s.err
	}
	themeConfig["greeting"] = "hello " + cfg.Title
	h.AddFunc("shout", strings.ToUpper)
	h.RegisterComponent("footer", `<footer>{{shout .Config.Locale}}</footer>`)
	h.Provide("label", "front-page")
	return nil
}

type fakeLoader struct {
	user      map[string]any
	theme     theme.Theme
	themeCfg  map[string]any
	entry     string
	failOn    string
	entryArgs template.FuncMap
}

func (f *fakeLoader) LoadUserConfig(context.Context, string) (map[string]any, error) {
	if f.failOn == "user" {
		return nil, errors.New("no user config")
	}
	return f.user, nil
}

func (f *fakeLoader) LoadTheme(context.Context, string) (theme.Theme, error) {
	if f.failOn == "theme" {
		return nil, errors.New("no theme")
	}
	return f.theme, nil
}

func (f *fakeLoader) LoadThemeConfig(context.Context, string) (map[string]any, error) {
	if f.failOn == "themeConfig" {
		return nil, errors.New("no theme config")
	}
	return f.themeCfg, nil
}

func (f *fakeLoader) LoadEntry(_ context.Context, _ string, funcs template.FuncMap) (*template.Template, error) {
	if f.failOn == "entry" {
		return nil, errors.New("no entry")
	}
	f.entryArgs = funcs
	return template.New("entry").Funcs(funcs).Parse(f.entry)
}

type recordingHost struct {
	anchor, markup string
}

func (h *recordingHost) Mount(_ context.Context, anchor, markup string) error {
	h.anchor, h.markup = anchor, markup
	return nil
}

func constants() config.BuildConstants {
	return config.BuildConstants{
		Title:           "Blog",
		Locale:          "en",
		ThemePackage:    "fragy-theme-plain",
		UserConfigPath:  "/p/fragy.config.yaml",
		ThemeConfigPath: "/p/vendor/fragy-theme-plain/config.yaml",
		ThemeEntryPath:  "/p/vendor/fragy-theme-plain/entry.html",
	}
}

func TestRun_WithoutSetupHook(t *testing.T) {
	loader := &fakeLoader{
		user:     map[string]any{"title": "Mine"},
		theme:    plainTheme{},
		themeCfg: map[string]any{"accent": "blue"},
		entry:    `<h1>{{.Config.Title}}</h1><p>{{index .ThemeConfig "accent"}}</p>`,
	}
	host := &recordingHost{}
	var seen []State
	b := New(constants(), loader, host, WithObserver(func(s State) { seen = append(seen, s) }))

	app, err := b.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []State{StateConfigLoaded, StateThemeConfigLoaded, StateThemeSetupComplete, StateEntryLoaded, StateMounted}, seen)
	assert.Equal(t, StateMounted, b.State())
	assert.Equal(t, AnchorID, host.anchor)
	assert.Equal(t, "<h1>Mine</h1><p>blue</p>", host.markup)
	assert.Equal(t, app.HTML, host.markup)
	assert.Len(t, app.Router.Routes(), 1)
	assert.Equal(t, 0, app.Store.Get("count"))
}

func TestRun_SetupMutationsVisible(t *testing.T) {
	loader := &fakeLoader{
		user:     map[string]any{"theme": map[string]any{"config": map[string]any{"accent": "red"}}},
		theme:    setupTheme{},
		themeCfg: map[string]any{"accent": "blue"},
		entry:    `{{index .ThemeConfig "greeting"}}/{{index .ThemeConfig "accent"}}/{{index .Values "label"}}{{template "footer" .}}`,
	}
	host := &recordingHost{}
	app, err := New(constants(), loader, host).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "hello fragy/red/front-page<footer>EN</footer>", host.markup)
	assert.Contains(t, loader.entryArgs, "shout")
	assert.Equal(t, "hello fragy", app.Runtime.ThemeConfig["greeting"])
	v, ok := app.Runtime.Value("label")
	require.True(t, ok)
	assert.Equal(t, "front-page", v)
}

// servicesTheme uses the shared runtime services during setup and records
// what it got back.
type servicesTheme struct {
	plainTheme
	feedURL string
	got     *servicesSeen
}

type servicesSeen struct {
	event   any
	feed    string
	article string
	draft   bool
}

func (s servicesTheme) Setup(ctx context.Context, h theme.Handle, _ *config.Config, _ map[string]any) error {
	ch, unsubscribe := h.Bus().Subscribe("article:open", 1)
	defer unsubscribe()
	if err := h.Bus().Publish(ctx, "article:open", "hello-world"); err != nil {
		return err
	}
	s.got.event = (<-ch).Payload

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return err
	}
	resp, err := h.HTTPClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	s.got.feed = string(body)

	a, draft, err := h.ParseArticle("posts/hello-world.md", []byte("---\ntitle: Hello\ndraft: true\n---\nBody\n"))
	if err != nil {
		return err
	}
	s.got.article, s.got.draft = a.Title, draft
	return nil
}

func TestRun_SetupReachesSharedServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"slug":"remote"}]`)
	}))
	defer srv.Close()

	seen := &servicesSeen{}
	loader := &fakeLoader{
		user:     map[string]any{},
		theme:    servicesTheme{feedURL: srv.URL, got: seen},
		themeCfg: map[string]any{},
		entry:    "ok",
	}
	app, err := New(constants(), loader, nil, WithHTTPClient(srv.Client())).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "hello-world", seen.event)
	assert.Equal(t, `[{"slug":"remote"}]`, seen.feed)
	assert.Equal(t, "Hello", seen.article)
	assert.True(t, seen.draft)
	assert.Same(t, srv.Client(), app.Runtime.HTTPClient())

	ch, _ := app.Runtime.Bus().Subscribe("late", 1)
	app.Runtime.Close()
	_, open := <-ch
	assert.False(t, open, "closing the runtime closes its bus")
}

func TestRun_DefaultHTTPClient(t *testing.T) {
	loader := &fakeLoader{user: map[string]any{}, theme: plainTheme{}, themeCfg: map[string]any{}, entry: "ok"}
	app, err := New(constants(), loader, nil).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, app.Runtime.HTTPClient())
	assert.Equal(t, DefaultHTTPTimeout, app.Runtime.HTTPClient().Timeout)
}

func TestRun_FailureClosesBus(t *testing.T) {
	var bus *events.Bus
	loader := &fakeLoader{user: map[string]any{}, theme: busGrabber{grab: func(h theme.Handle) { bus = h.Bus() }}, themeCfg: map[string]any{}, failOn: "entry"}
	_, err := New(constants(), loader, nil).Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, bus)
	assert.Zero(t, bus.SubscriberCount("kept"))
}

type busGrabber struct {
	plainTheme
	grab func(theme.Handle)
}

func (g busGrabber) Setup(_ context.Context, h theme.Handle, _ *config.Config, _ map[string]any) error {
	h.Bus().Subscribe("kept", 1)
	g.grab(h)
	return nil
}

func TestRun_FailuresAreModuleLoadErrors(t *testing.T) {
	tests := []struct {
		name      string
		failOn    string
		theme     theme.Theme
		lastState State
	}{
		{"user config", "user", plainTheme{}, StateUninitialized},
		{"theme", "theme", plainTheme{}, StateConfigLoaded},
		{"theme config", "themeConfig", plainTheme{}, StateConfigLoaded},
		{"setup", "", setupTheme{err: errors.New("setup broke")}, StateThemeConfigLoaded},
		{"entry", "entry", plainTheme{}, StateThemeSetupComplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &fakeLoader{user: map[string]any{}, theme: tt.theme, themeCfg: map[string]any{}, entry: "x", failOn: tt.failOn}
			host := &recordingHost{}
			b := New(constants(), loader, host)

			app, err := b.Run(context.Background())
			require.Error(t, err)
			assert.Nil(t, app)
			assert.True(t, ferrors.IsModuleLoad(err))
			assert.Equal(t, tt.lastState, b.State())
			assert.Empty(t, host.markup)
		})
	}
}

func TestRun_OnlyOnce(t *testing.T) {
	loader := &fakeLoader{user: map[string]any{}, theme: plainTheme{}, themeCfg: map[string]any{}, entry: "ok"}
	b := New(constants(), loader, nil)
	_, err := b.Run(context.Background())
	require.NoError(t, err)
	_, err = b.Run(context.Background())
	require.Error(t, err)
}

func TestFSLoader(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "entry.html")
	require.NoError(t, os.WriteFile(entry, []byte(`{{up "x"}}`), 0o600))

	tpl, err := FSLoader{}.LoadEntry(context.Background(), entry, template.FuncMap{"up": strings.ToUpper})
	require.NoError(t, err)
	var sb strings.Builder
	require.NoError(t, tpl.Execute(&sb, nil))
	assert.Equal(t, "X", sb.String())

	_, err = FSLoader{}.LoadTheme(context.Background(), "fragy-theme-never-registered")
	require.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "theme_setup_complete", StateThemeSetupComplete.String())
	assert.Equal(t, "unknown", State(42).String())
}
