// Package mixer implements the job engine of an emulated paint mixer.
//
// A Device admits mixing jobs through Submit, hands their codes to a single
// worker goroutine in arrival order, and keeps every job's lifecycle state in
// an atomic state machine:
//
//	Queued -> Running -> Completed
//	Queued -> Canceled
//	Running -> Canceled
//
// At most MaxActiveJobs jobs may be queued or running at once. Completed and
// canceled records stay registered until Shutdown.
package mixer
