// Package task implements the check-then-process unit of work.
//
// A Task owns an input set and a Variant. Check evaluates every input
// against the filesystem, which is the only ledger: nothing about
// completion is persisted elsewhere. Process re-checks, then runs the
// variant's work over the pending inputs with a bounded worker pool. Output
// enumeration is always derived from disk, so a fresh Task over the same
// inputs reports the same outputs as the one that produced them.
//
// Variants:
//   - Download: one resource per input, written atomically
//   - Manifest: IIIF manifest to CSV index, one row per image
//   - Command: external program per input (generic, YALTAi, Kraken)
//   - ALTOCleanup: in-place fileName normalization
//   - ExtractZones: labelled ALTO zones to text
//   - Clear: deletion
//   - PDFExtract: PDF pages to images
//
// Build constructs any of them from a config.Task definition.
package task
