package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/fragy/internal/buildgraph"
	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/emit"
	"git.home.luguber.info/inful/fragy/internal/logfields"
	"git.home.luguber.info/inful/fragy/internal/metrics"
	"git.home.luguber.info/inful/fragy/internal/paths"
	"git.home.luguber.info/inful/fragy/internal/theme"
)

// StageName identifies a build stage.
type StageName string

// Canonical stage names.
const (
	StageResolvePaths StageName = "resolve_paths"
	StageLoadConfig   StageName = "load_config"
	StageLoadTheme    StageName = "load_theme"
	StageCompose      StageName = "compose"
	StageEmit         StageName = "emit"
)

// Stage is a discrete unit of work in the build.
type Stage func(ctx context.Context, st *State) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// StageErrorKind classifies how a stage failed.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"
	StageErrorCanceled StageErrorKind = "canceled"
)

// StageError wraps the error that aborted a stage.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// State is threaded through every stage of one build.
type State struct {
	FrameworkDir string
	Env          config.Env
	Logger       *slog.Logger
	Recorder     metrics.Recorder
	BuildID      string

	Paths       *paths.Context
	Config      *config.Config
	Theme       theme.Theme
	ThemeConfig map[string]any
	Graph       *buildgraph.Graph
	Report      *emit.Report

	StageDurations map[StageName]time.Duration
}

// DefaultStages returns the build stages in execution order.
func DefaultStages() []StageDef {
	return []StageDef{
		{StageResolvePaths, stageResolvePaths},
		{StageLoadConfig, stageLoadConfig},
		{StageLoadTheme, stageLoadTheme},
		{StageCompose, stageCompose},
		{StageEmit, stageEmit},
	}
}

// RunStages executes stages in order, recording timing and stopping on the
// first error.
func RunStages(ctx context.Context, st *State, stages []StageDef) error {
	rec := metrics.OrNoop(st.Recorder)
	if st.Logger == nil {
		st.Logger = slog.Default()
	}
	log := st.Logger
	if st.StageDurations == nil {
		st.StageDurations = make(map[StageName]time.Duration, len(stages))
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			rec.IncStageResult(string(s.Name), metrics.ResultCanceled)
			return &StageError{Kind: StageErrorCanceled, Stage: s.Name, Err: err}
		}

		t0 := time.Now()
		err := s.Fn(ctx, st)
		dur := time.Since(t0)
		st.StageDurations[s.Name] = dur
		rec.ObserveStageDuration(string(s.Name), dur)

		if err != nil {
			kind := StageErrorFatal
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				kind = StageErrorCanceled
				rec.IncStageResult(string(s.Name), metrics.ResultCanceled)
			} else {
				rec.IncStageResult(string(s.Name), metrics.ResultFatal)
			}
			log.Error("Stage failed", logfields.Stage(string(s.Name)), logfields.Error(err))
			return &StageError{Kind: kind, Stage: s.Name, Err: err}
		}

		rec.IncStageResult(string(s.Name), metrics.ResultSuccess)
		log.Debug("Stage complete", logfields.Stage(string(s.Name)), logfields.DurationMS(float64(dur.Microseconds())/1000))
	}
	return nil
}
