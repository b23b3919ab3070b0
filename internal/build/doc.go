// Package build runs a fragy build as an ordered list of stages.
//
// The CLI and the preview watcher both route through Builder:
// resolve_paths → load_config → load_theme → compose → emit.
// The first failing stage aborts the build; each stage is timed, logged and
// recorded through a metrics.Recorder.
package build
