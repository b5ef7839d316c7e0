// Package log provides structured import diagnostics for EDS/DCF files.
//
// This package defines the Logger interface and the Event type used by the
// importer to report everything it tolerated while building an object
// dictionary: unknown keys, undecodable default values, sub-object count
// mismatches and the final import summary. It is separate from operational
// logging (slog); diagnostics are a complete machine-readable trace that can
// be captured to a file and inspected later.
//
// # Basic Usage
//
// Importers are configured by providing a Logger implementation:
//
//	// For development: log to console via slog
//	imp.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For CI: capture to a binary file
//	imp.Logger, _ = log.NewFileLogger("device.edslog")
//
//	// Both: use MultiLogger
//	imp.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// Tests and the lint command use a Recorder to collect events in memory.
//
// # Event Categories
//
// Events are classified by what the importer was doing:
//   - Vocabulary: keys outside the known EDS vocabulary
//   - Value: default, limit and parameter values that could not be decoded
//   - Structure: sub-object counts and auxiliary sections
//   - Summary: one event per completed import
//
// # File Format
//
// Capture files are a sequence of CBOR-encoded events with integer keys.
// The edsod log command provides viewing and filtering.
package log
