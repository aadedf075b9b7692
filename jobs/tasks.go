// Package jobs contains the background task definitions and the Asynq
// worker plumbing. Tasks run against the Postgres mirror so the
// in-memory core never blocks on batch work.
package jobs

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
)
