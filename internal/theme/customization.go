package theme

import (
	"git.home.luguber.info/inful/fragy/internal/buildgraph"
	"git.home.luguber.info/inful/fragy/internal/config"
)

// BuildContext is what a Factory customization receives.
type BuildContext struct {
	FrameworkRoot   string
	SiteTitle       string
	ThemePackage    string
	ThemeConfigPath string
	ThemeEntryPath  string
	Config          *config.Config
	ThemeConfig     map[string]any
}

// BuildHooks run after every framework mutation of the graph.
type BuildHooks struct {
	Chain     func(g *buildgraph.Graph)
	Configure func(g *buildgraph.Graph)
}

// Customization is either Static or Factory.
type Customization interface {
	resolve(ctx BuildContext) Static
}

// Static is a customization known up front. Settings hold serializable outer
// options merged shallowly onto the build options.
type Static struct {
	Settings map[string]any
	Hooks    BuildHooks
}

func (s Static) resolve(BuildContext) Static { return s }

// Factory computes a customization from the build context.
type Factory func(ctx BuildContext) Static

func (f Factory) resolve(ctx BuildContext) Static {
	if f == nil {
		return Static{}
	}
	return f(ctx)
}

// Resolve turns c into a Static customization, invoking a Factory once.
// A nil customization resolves to the zero Static.
func Resolve(c Customization, ctx BuildContext) Static {
	if c == nil {
		return Static{}
	}
	return c.resolve(ctx)
}
