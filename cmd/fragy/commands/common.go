package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/fragy/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	FrameworkDir string           `name:"framework-dir" short:"C" help:"Framework directory (standalone project root, or vendor/fragy inside a project)" default:"." type:"path" env:"FRAGY_FRAMEWORK_DIR"`
	Verbose      bool             `short:"v" help:"Enable verbose logging"`
	Version      kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Build the site into <project>/dist"`
	Serve    ServeCmd    `cmd:"" help:"Serve the site locally and rebuild on changes"`
	Init     InitCmd     `cmd:"" help:"Scaffold a project with the bundled minimal theme"`
	Articles ArticlesCmd `cmd:"" help:"Index posts and write the article list"`
	Themes   ThemesCmd   `cmd:"" help:"List the registered themes"`
}

// AfterApply runs after flag parsing: load .env files and set up logging once.
// Process variables win over .env values.
func (c *CLI) AfterApply() error {
	envFile, envErr := config.LoadEnvFile(c.FrameworkDir)

	level := config.EnvFromOS().LogLevel.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if envErr != nil {
		slog.Warn("Failed to load .env file", "error", envErr)
	} else if envFile != "" {
		slog.Debug("Loaded environment file", "path", envFile)
	}
	return nil
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
