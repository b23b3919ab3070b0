package preview

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"git.home.luguber.info/inful/fragy/internal/bootstrap"
	"git.home.luguber.info/inful/fragy/internal/build"
	"git.home.luguber.info/inful/fragy/internal/emit"
	"git.home.luguber.info/inful/fragy/internal/logfields"
	"git.home.luguber.info/inful/fragy/internal/metrics"
)

// Runner executes one build.
type Runner interface {
	Run(ctx context.Context) (*build.Result, error)
}

// Session rebuilds the site and boots the application from the fresh build
// constants. Rebuilds never overlap.
type Session struct {
	runner   Runner
	loader   bootstrap.Loader
	recorder metrics.Recorder
	logger   *slog.Logger

	runMu sync.Mutex

	mu        sync.RWMutex
	outputDir string
	app       *bootstrap.App
	page      string
	lastErr   error
	builds    int
}

// NewSession creates a session. A nil loader means bootstrap.FSLoader.
func NewSession(runner Runner, loader bootstrap.Loader, recorder metrics.Recorder, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{runner: runner, loader: loader, recorder: metrics.OrNoop(recorder), logger: logger}
}

// Rebuild runs a build followed by a bootstrap. The previous page keeps
// being served when either fails.
func (s *Session) Rebuild(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	res, err := s.runner.Run(ctx)
	if err != nil {
		s.setError(err)
		return err
	}

	m, err := emit.ReadManifest(res.OutputDir)
	if err != nil {
		s.setError(err)
		return err
	}
	consts := m.Constants()
	host, err := bootstrap.NewDocumentHost(strings.NewReader(bootstrap.DefaultShell(consts)))
	if err != nil {
		s.setError(err)
		return err
	}
	boot := bootstrap.New(consts, s.loader, host,
		bootstrap.WithLogger(s.logger),
		bootstrap.WithRecorder(s.recorder))
	app, err := boot.Run(ctx)
	if err != nil {
		s.setError(err)
		return err
	}

	s.mu.Lock()
	prev := s.app
	s.app = app
	s.outputDir = res.OutputDir
	s.page = host.String()
	s.lastErr = nil
	s.builds++
	s.mu.Unlock()
	if prev != nil {
		prev.Runtime.Close()
	}
	s.logger.Info("Preview updated", logfields.BuildID(m.BuildID), logfields.Files(res.Files))
	return nil
}

func (s *Session) setError(err error) {
	s.logger.Warn("Rebuild failed", logfields.Error(err))
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// ErrNotBuilt is returned by Page before the first successful rebuild.
var ErrNotBuilt = errors.New("site has not been built yet")

// Page returns the last mounted document and the last rebuild error.
func (s *Session) Page() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.page == "" {
		if s.lastErr != nil {
			return "", s.lastErr
		}
		return "", ErrNotBuilt
	}
	return s.page, s.lastErr
}

// OutputDir returns the output directory of the last successful build.
func (s *Session) OutputDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outputDir
}

// App returns the application mounted by the last successful rebuild.
func (s *Session) App() *bootstrap.App {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.app
}

// Close releases the runtime of the mounted application.
func (s *Session) Close() {
	s.mu.Lock()
	app := s.app
	s.app = nil
	s.mu.Unlock()
	if app != nil {
		app.Runtime.Close()
	}
}

// Builds returns the number of successful rebuilds.
func (s *Session) Builds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.builds
}
