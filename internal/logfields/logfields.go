package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyState      = "state"
	KeyPlugin     = "plugin"
	KeyTheme      = "theme"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyFiles      = "files"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func Plugin(name string) slog.Attr    { return slog.String(KeyPlugin, name) }
func Theme(pkg string) slog.Attr      { return slog.String(KeyTheme, pkg) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Files(n int) slog.Attr           { return slog.Int(KeyFiles, n) }
func Error(err error) slog.Attr {
	if err == nil { return slog.String(KeyError, "") }
	return slog.String(KeyError, err.Error())
}
