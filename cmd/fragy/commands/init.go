package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/paths"
	"git.home.luguber.info/inful/fragy/internal/themes/minimal"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite existing configuration and theme files"`
	Title string `help:"Site title" default:"My fragy blog"`
}

const starterConfig = `title: %q
locale: en
icon: /favicon.ico
theme:
  package: %s
  config: {}
articles:
  base: /posts
  feed: /feed
articleList:
  output: data/articleList.json
  feed: /api/articles.json
`

const starterPost = `---
title: Hello fragy
date: "%s"
tags: [welcome]
---
Your first post. Edit it under .fragy/posts.
`

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	pc, err := paths.Layout(root.FrameworkDir)
	if err != nil {
		return err
	}
	fmt.Println("Initializing fragy project")

	if err := writeScaffold(pc.UserConfigPath, fmt.Sprintf(starterConfig, i.Title, config.DefaultThemePackage), i.Force); err != nil {
		return err
	}
	if err := writeScaffold(filepath.Join(pc.PostsDir(), "hello.md"), fmt.Sprintf(starterPost, "2024-01-01"), i.Force); err != nil {
		return err
	}
	if err := os.MkdirAll(pc.PublicDir(), 0o755); err != nil {
		return err
	}

	written, err := minimal.Install(pc.ThemeDir(config.DefaultThemePackage), i.Force)
	if err != nil {
		return fmt.Errorf("install theme: %w", err)
	}
	for _, p := range written {
		fmt.Printf("Wrote %s\n", p)
	}
	fmt.Println("initialized successfully")
	return nil
}

func writeScaffold(path, content string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Printf("Keeping existing %s\n", path)
		return nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
