// Package batch minimizes many programs in parallel.
//
// A Runner feeds jobs to a fixed pool of workers. Each worker owns the
// program it is minimizing; programs are never shared between goroutines.
// Results flow to a single writer goroutine, which stamps each one with a
// logical clock seq and records it in the store in job order, so a batch
// run produces the same store contents regardless of worker scheduling.
//
// Cancelling the context stops scheduling new jobs. Jobs already running
// keep the improvements accepted so far, and every finished result is
// written.
package batch
