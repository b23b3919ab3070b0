package bootstrap

import (
	"html/template"
	"maps"
	"net/http"
	"sync"

	"git.home.luguber.info/inful/fragy/internal/articles"
	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/events"
	"git.home.luguber.info/inful/fragy/internal/theme"
)

var _ theme.Handle = (*Runtime)(nil)

// Runtime is the dependency container handed to the theme setup hook and to
// the root component. One Runtime exists per bootstrap run.
type Runtime struct {
	Constants   config.BuildConstants
	Config      *config.Config
	ThemeConfig map[string]any

	bus    *events.Bus
	client *http.Client

	mu         sync.Mutex
	components map[string]string
	order      []string
	funcs      template.FuncMap
	values     map[string]any
}

func newRuntime(c config.BuildConstants, client *http.Client) *Runtime {
	return &Runtime{
		Constants:  c,
		bus:        events.NewBus(),
		client:     client,
		components: map[string]string{},
		funcs:      template.FuncMap{},
		values:     map[string]any{},
	}
}

func (r *Runtime) Bus() *events.Bus { return r.bus }

func (r *Runtime) HTTPClient() *http.Client { return r.client }

func (r *Runtime) ParseArticle(rel string, data []byte) (articles.Article, bool, error) {
	return articles.Parse(rel, data)
}

// Close shuts down the event bus. The runtime must not be used afterwards.
func (r *Runtime) Close() {
	r.bus.Close()
}

func (r *Runtime) RegisterComponent(name, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.components[name]; !ok {
		r.order = append(r.order, name)
	}
	r.components[name] = source
}

func (r *Runtime) AddFunc(name string, fn any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

func (r *Runtime) Provide(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
}

func (r *Runtime) Funcs() template.FuncMap {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.funcs)
}

// Value returns a value injected with Provide.
func (r *Runtime) Value(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	return v, ok
}

// Values returns a copy of every injected value.
func (r *Runtime) Values() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.values)
}

// Components returns registered component names in registration order.
func (r *Runtime) Components() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *Runtime) component(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.components[name]
}
