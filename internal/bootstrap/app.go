package bootstrap

import (
	"fmt"
	"html/template"
	"maps"
	"strings"
	"sync"

	"git.home.luguber.info/inful/fragy/internal/theme"
)

// AnchorID is the id of the element the application mounts into.
const AnchorID = "app"

// App is a mounted application.
type App struct {
	Router  *Router
	Store   *Store
	Root    *template.Template
	Runtime *Runtime
	Anchor  string
	// HTML is the rendered root component as attached to the anchor.
	HTML string
}

// Router matches site paths against the theme routes.
type Router struct {
	routes []theme.Route
}

// NewRouter builds a router over routes in declaration order.
func NewRouter(routes []theme.Route) *Router {
	return &Router{routes: append([]theme.Route(nil), routes...)}
}

// Routes returns the routes in declaration order.
func (r *Router) Routes() []theme.Route {
	return append([]theme.Route(nil), r.routes...)
}

// Match returns the first route matching path. Segments starting with ':'
// match any single segment and a trailing '*' matches the rest.
func (r *Router) Match(path string) (theme.Route, map[string]string, bool) {
	for _, rt := range r.routes {
		if params, ok := matchRoute(rt.Path, path); ok {
			return rt, params, true
		}
	}
	return theme.Route{}, nil, false
}

func matchRoute(pattern, path string) (map[string]string, bool) {
	ps := splitPath(pattern)
	xs := splitPath(path)
	params := map[string]string{}
	for i, p := range ps {
		if p == "*" {
			params["*"] = strings.Join(xs[min(i, len(xs)):], "/")
			return params, true
		}
		if i >= len(xs) {
			return nil, false
		}
		switch {
		case strings.HasPrefix(p, ":"):
			params[p[1:]] = xs[i]
		case p != xs[i]:
			return nil, false
		}
	}
	if len(xs) != len(ps) {
		return nil, false
	}
	return params, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Store holds application state changed only through named mutations.
type Store struct {
	mu        sync.Mutex
	state     map[string]any
	mutations map[string]theme.Mutation
}

// NewStore builds a store from a theme store definition. The initial state
// is copied.
func NewStore(def theme.StoreDefinition) *Store {
	state := maps.Clone(def.State)
	if state == nil {
		state = map[string]any{}
	}
	return &Store{state: state, mutations: maps.Clone(def.Mutations)}
}

// Commit applies the named mutation with payload.
func (s *Store) Commit(name string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mutations[name]
	if !ok {
		return fmt.Errorf("unknown mutation %q", name)
	}
	return m(s.state, payload)
}

// Get returns one state value.
func (s *Store) Get(key string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[key]
}

// State returns a shallow copy of the state.
func (s *Store) State() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.state)
}
