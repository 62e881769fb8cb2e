// Package workflow runs character export jobs.
//
// A job walks a fixed sequence: input preflight, an exclusive lock on the
// output path, voice table and font loading, renderer setup, audio discovery
// and probing, timeline assembly, export, and finally a journal entry. Jobs
// in a batch run one after another; a failed job is recorded and the batch
// moves on to the next character.
package workflow
