// Package buildgraph models the mutable build description that the composer
// and theme hooks edit before the emitter executes it.
package buildgraph

import "maps"

// OptionOutputDir is the outer option naming the output directory.
const OptionOutputDir = "outputDir"

// PluginKind identifies what the emitter does with a plugin.
type PluginKind string

const (
	KindDefine   PluginKind = "define"
	KindCopy     PluginKind = "copy"
	KindAnalyzer PluginKind = "analyzer"
)

// Plugin is a build step registered on the graph.
type Plugin interface {
	Kind() PluginKind
}

// PluginEntry is a named plugin in registration order.
type PluginEntry struct {
	Name   string
	Plugin Plugin
}

// Graph is the single build description mutated during composition.
// It is not safe for concurrent use; composition has exactly one writer.
type Graph struct {
	// Options is the outer build configuration (output directory and any
	// serializable settings merged from the theme).
	Options map[string]any
	// Splitting configures code-splitting cache groups.
	Splitting SplitChunks

	plugins []PluginEntry
}

// New creates a graph seeded with a copy of options.
func New(options map[string]any) *Graph {
	opts := make(map[string]any, len(options))
	maps.Copy(opts, options)
	return &Graph{Options: opts}
}

// Use registers p under name. Re-using a name replaces the plugin in place
// and keeps its original position.
func (g *Graph) Use(name string, p Plugin) {
	for i := range g.plugins {
		if g.plugins[i].Name == name {
			g.plugins[i].Plugin = p
			return
		}
	}
	g.plugins = append(g.plugins, PluginEntry{Name: name, Plugin: p})
}

// Plugin returns the plugin registered under name.
func (g *Graph) Plugin(name string) (Plugin, bool) {
	for _, e := range g.plugins {
		if e.Name == name {
			return e.Plugin, true
		}
	}
	return nil, false
}

// Delete removes the plugin registered under name.
func (g *Graph) Delete(name string) bool {
	for i, e := range g.plugins {
		if e.Name == name {
			g.plugins = append(g.plugins[:i], g.plugins[i+1:]...)
			return true
		}
	}
	return false
}

// Plugins returns the registered plugins in order.
func (g *Graph) Plugins() []PluginEntry {
	out := make([]PluginEntry, len(g.plugins))
	copy(out, g.plugins)
	return out
}

// Names returns plugin names in registration order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.plugins))
	for i, e := range g.plugins {
		names[i] = e.Name
	}
	return names
}

// OutputDir returns the configured output directory, or "".
func (g *Graph) OutputDir() string {
	s, _ := g.Options[OptionOutputDir].(string)
	return s
}
