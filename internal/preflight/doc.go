// Package preflight checks that a run can start: every external program the
// configured tasks invoke resolves on PATH, the workspace directories are
// usable, and a configured S3 endpoint accepts the credentials.
//
// The CLI runs these checks before "rtk run" and on demand through
// "rtk preflight". A failed check stops the run before any batch is touched.
package preflight
