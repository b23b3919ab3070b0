package build

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/logfields"
	"git.home.luguber.info/inful/fragy/internal/metrics"
)

// ErrBuildInProgress is returned when Run is called on a Builder that is
// already running.
var ErrBuildInProgress = errors.New("build already in progress")

// Status represents the outcome of a build.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Result contains the outcome of a build.
type Result struct {
	BuildID        string
	Status         Status
	OutputDir      string
	Files          int
	Bytes          int64
	Duration       time.Duration
	StageDurations map[StageName]time.Duration
	// State is the final build state, useful for follow-up steps such as
	// the preview bootstrap.
	State *State
}

// Builder executes builds for one framework directory. Builds on one Builder
// never overlap.
type Builder struct {
	frameworkDir string
	env          config.Env
	logger       *slog.Logger
	recorder     metrics.Recorder
	stages       []StageDef
	running      atomic.Bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithEnv sets the environment flags (defaults to config.EnvFromOS()).
func WithEnv(env config.Env) Option { return func(b *Builder) { b.env = env } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(b *Builder) { b.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(b *Builder) { b.recorder = r } }

// WithStages replaces the default stage list.
func WithStages(stages []StageDef) Option { return func(b *Builder) { b.stages = stages } }

// New creates a Builder for the framework located at frameworkDir.
func New(frameworkDir string, opts ...Option) *Builder {
	b := &Builder{
		frameworkDir: frameworkDir,
		env:          config.EnvFromOS(),
		logger:       slog.Default(),
		recorder:     metrics.NoopRecorder{},
		stages:       DefaultStages(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes one build.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	if !b.running.CompareAndSwap(false, true) {
		return nil, ErrBuildInProgress
	}
	defer b.running.Store(false)

	buildID := uuid.NewString()
	log := b.logger.With(logfields.BuildID(buildID))
	st := &State{
		FrameworkDir: b.frameworkDir,
		Env:          b.env,
		Logger:       log,
		Recorder:     b.recorder,
		BuildID:      buildID,
	}

	start := time.Now()
	log.Info("Build started", logfields.Path(b.frameworkDir))
	err := RunStages(ctx, st, b.stages)
	dur := time.Since(start)
	b.recorder.ObserveBuildDuration(dur)

	res := &Result{
		BuildID:        buildID,
		Status:         StatusSuccess,
		Duration:       dur,
		StageDurations: st.StageDurations,
		State:          st,
	}
	if st.Report != nil {
		res.OutputDir = st.Report.OutputDir
		res.Files = len(st.Report.Files)
		res.Bytes = st.Report.TotalBytes()
	}

	if err != nil {
		res.Status = StatusFailed
		var se *StageError
		if errors.As(err, &se) && se.Kind == StageErrorCanceled {
			res.Status = StatusCanceled
		}
		b.recorder.IncBuildOutcome(string(res.Status))
		return res, err
	}

	b.recorder.IncBuildOutcome(string(res.Status))
	log.Info("Build complete",
		logfields.Path(res.OutputDir),
		logfields.Files(res.Files),
		logfields.DurationMS(float64(dur.Microseconds())/1000))
	return res, nil
}
