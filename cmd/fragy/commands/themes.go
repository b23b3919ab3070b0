package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/paths"
	"git.home.luguber.info/inful/fragy/internal/theme"
)

// ThemesCmd implements the 'themes' command.
type ThemesCmd struct{}

func (t *ThemesCmd) Run(_ *Global, root *CLI) error {
	configured := ""
	if pc, err := paths.Resolve(root.FrameworkDir); err == nil {
		if raw, err := config.LoadUserConfig(pc.UserConfigPath); err == nil {
			if cfg, err := config.FormatConfig(config.Defaults(), raw); err == nil {
				configured = cfg.Theme.Package
			}
		}
	}
	return listThemes(os.Stdout, configured)
}

// listThemes prints the registered theme packages, marking the configured one.
func listThemes(w io.Writer, configured string) error {
	for _, pkg := range theme.Packages() {
		mark := " "
		if pkg == configured {
			mark = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", mark, pkg); err != nil {
			return err
		}
	}
	return nil
}
