// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate Subversion command lifecycle events into concise
// messages for CLI users while detailed telemetry continues to flow through
// structured loggers.
package ui
