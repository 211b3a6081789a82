// Package jobs provides the asynchronous ingestion job queue. Submitted
// jobs move queued -> running -> completed or failed, executed one at a
// time by a single worker in submission order. Records are held in
// memory for the process lifetime only.
package jobs
