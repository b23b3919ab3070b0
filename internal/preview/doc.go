// Package preview serves a fragy site during development and rebuilds it
// when the user configuration or data directory changes.
package preview
