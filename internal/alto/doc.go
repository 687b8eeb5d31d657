// Package alto reads and rewrites ALTO XML produced by layout analysis and
// text recognition engines: content thresholds for completion checks,
// fileName normalization, and extraction of labelled zones.
package alto
