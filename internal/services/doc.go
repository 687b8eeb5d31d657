// Package services defines shared utilities consumed by tasks and the
// pipeline runner.
//
// Key responsibilities:
//   - Context helpers that stamp task names, kinds, batch numbers, and run
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the executor
//     decide whether a failure is absorbed per item or stops the batch.
//
// Use these helpers when wiring new task kinds so failure handling and
// observability stay uniform across the pipeline.
package services
