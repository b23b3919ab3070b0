package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/fragy/internal/articles"
	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/paths"
)

// ArticlesCmd implements the 'articles' command.
type ArticlesCmd struct {
	DryRun bool `name:"dry-run" help:"List articles without writing the article list"`
}

func (a *ArticlesCmd) Run(g *Global, root *CLI) error {
	pc, err := paths.Resolve(root.FrameworkDir)
	if err != nil {
		return err
	}
	raw, err := config.LoadUserConfig(pc.UserConfigPath)
	if err != nil {
		return err
	}
	cfg, err := config.FormatConfig(config.Defaults(), raw)
	if err != nil {
		return err
	}

	list, err := articles.Index(pc.PostsDir())
	if err != nil {
		return err
	}
	if a.DryRun {
		for _, art := range list {
			fmt.Printf("%s\t%s\t%s\n", art.Date.Format("2006-01-02"), art.Slug, art.Title)
		}
		return nil
	}

	out := filepath.Join(pc.UserDataDir, filepath.FromSlash(cfg.ArticleList.Output))
	if err := articles.WriteList(out, list); err != nil {
		return err
	}
	g.Logger.Info("Article list written", "path", out, "articles", len(list))
	return nil
}
