// Package workerpool runs submitted functions on a bounded, lazily grown set
// of worker threads, fed by a shared queue.
//
// Each submission returns a [thread.Result], which resolves once a worker has
// run the function. Workers are only started as needed, up to the configured
// maximum, and keep serving the queue until the pool is shut down. A panic in
// a submitted function is captured into its Result, and logged, without
// stopping the worker. A call to runtime.Goexit is captured as
// [thread.ErrGoexit], and the exiting worker is replaced.
//
// After [Pool.Shutdown], submitted functions that had not started will never
// run, and their Results will never resolve. Callers waiting on such a Result
// should always use a timeout, or a context that will be canceled.
package workerpool
