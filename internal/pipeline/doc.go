// Package pipeline composes configured tasks into batch runs.
//
// The input list is split into batches. For every batch the tasks run in
// declaration order: the first task takes the batch entries, and each later
// task takes the outputs of the task named in its "from" field (the previous
// task by default). Outputs are always derived from the filesystem, so a
// batch interrupted halfway resumes where it stopped on the next run.
//
// A Runner holds an advisory lock on the work directory for the duration of
// a run; two runs never compete for the same outputs.
package pipeline
