// Package main hosts the rtk CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, builds the structured
// logger, and hands the configured task chain to internal/pipeline. "run"
// processes every batch, "check" reports what is already done without
// running anything, "preflight" verifies external programs and directories,
// and "config" scaffolds and validates configuration files.
//
// Interrupting a run (Ctrl-C or SIGTERM) cancels in-flight work; outputs
// that did not complete are removed and the next run resumes from the
// filesystem.
package main
