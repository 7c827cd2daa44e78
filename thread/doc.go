// Package thread runs units of work on goroutines with a joinable lifecycle,
// and captures their outcomes.
//
// A [Thread] wraps a target function. Failures of the target, panics included,
// never crash the process: they are logged, and the thread is still marked as
// finished, so [Thread.Join] returns.
//
// A [Result] is a single-assignment outcome, which may be waited on, with a
// timeout. [AsyncTask] combines the two, running a function on a fresh Thread
// and returning its Result immediately.
//
// # Termination
//
// Goroutines cannot be killed. [Thread.Terminate] cancels the context passed
// to the target, and marks the thread as finished without waiting for it.
// Targets that never check their context keep running. Any
// [github.com/joeycumines/go-threading.Mutex] held by a terminated target is
// not released on its behalf, and stays locked until the target itself
// unlocks it. Critical sections in terminable targets must therefore be
// short, and must not block without observing the context.
package thread
