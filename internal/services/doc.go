// Package services defines shared utilities consumed by the extraction
// pipeline and the external tool adapters.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, stage names, and track labels
//     for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across packages.
//   - Thin abstractions that make command execution against external tools
//     testable.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform.
package services
