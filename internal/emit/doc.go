// Package emit executes a composed build graph into the output directory.
//
// Plugins run in registration order, except the analyzer which always runs
// last so its report covers every emitted file. The define plugin freezes
// the build constants into fragy.constants.json; the runtime bootstrap reads
// them back through ReadManifest.
package emit
