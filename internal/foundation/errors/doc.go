// Package errors provides the classified error primitives used across fragy.
//
// Every fatal condition the framework reports carries a category, a severity
// and a small context map so the CLI can choose an exit code and log the
// failure with structured fields.
//
// Key features:
//   - ErrorCategory: broad classification (config, module_load, build, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - ClassifiedError: structured error with category, severity and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing messages
//
// Example usage:
//
//	err := errors.ModuleLoadError("load theme entry").
//		WithContext("path", entryPath).
//		WithCause(originalErr).
//		Build()
package errors
