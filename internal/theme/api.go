// Package theme defines the contract a fragy theme implements and the typed
// registry themes register into, keyed by package identifier.
package theme

import (
	"context"
	"html/template"
	"net/http"

	"git.home.luguber.info/inful/fragy/internal/articles"
	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/events"
)

// Route maps a site path to a named component of the theme.
type Route struct {
	Path      string
	Name      string
	Component string
	Meta      map[string]any
}

// Mutation changes store state in response to a committed payload.
type Mutation func(state map[string]any, payload any) error

// StoreDefinition is the initial state and the mutations of the app store.
type StoreDefinition struct {
	State     map[string]any
	Mutations map[string]Mutation
}

// Theme is implemented by every theme package.
type Theme interface {
	Package() string
	Routes() []Route
	Store() StoreDefinition
}

// Handle exposes the framework extension points to a theme's setup hook.
type Handle interface {
	// RegisterComponent adds a named template usable from the root component.
	RegisterComponent(name, source string)
	// AddFunc makes fn callable from templates.
	AddFunc(name string, fn any)
	// Provide injects a value readable by every component.
	Provide(key string, value any)
	// Funcs returns the functions registered so far.
	Funcs() template.FuncMap

	// Bus is the event bus shared by the application and the theme.
	Bus() *events.Bus
	// HTTPClient is the client themes use to fetch remote feeds.
	HTTPClient() *http.Client
	// ParseArticle parses a markdown article with front matter.
	ParseArticle(rel string, data []byte) (articles.Article, bool, error)
}

// SetupHook is implemented by themes that customize the runtime before the
// root component is loaded. Mutations of themeConfig are visible afterwards.
type SetupHook interface {
	Setup(ctx context.Context, h Handle, cfg *config.Config, themeConfig map[string]any) error
}

// Customizer is implemented by themes that customize the build.
type Customizer interface {
	BuildCustomization() Customization
}
