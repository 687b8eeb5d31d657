// Package command turns declarative command templates into process
// invocations and runs them.
//
// Templates mark the output path with %out, the input path with %, and,
// for per-page rendering, the 1-based page number with %page. Commands are
// executed directly rather than through a shell; each whitespace separated
// template token becomes one argument after substitution.
package command
