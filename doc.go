// Package threading implements blocking synchronization primitives with
// timeouts, built from only three host capabilities: a raw mutex
// ([sync.Mutex]), goroutines, and one-shot timers ([time.AfterFunc]).
//
// # Layering
//
// The primitives are stacked, each built on the ones before it:
//   - [Mutex] records the goroutine that holds it, so misuse is detected
//   - [Waiter] is a single-use gate, opened by exactly one of an explicit
//     release, a timer, or context cancellation
//   - [Cond] couples a Mutex with a FIFO list of Waiters
//   - [Event], [EventSet], [Semaphore] and [BoundedSemaphore] are built on
//     Cond
//
// The queue, thread and workerpool sub-packages continue the stack.
//
// # Timeouts
//
// Every blocking operation accepts a [context.Context] and a timeout. Pass
// [Forever] to wait indefinitely. Any other timeout must be positive, or the
// operation fails with [ErrInvalidTimeout], without blocking. Cancellation of
// the context is reported as the context's error.
//
// # Ownership
//
// Cond and everything built on it require the caller to hold the associated
// Mutex, where documented. Violations are reported as [ErrNotOwner], rather
// than risking a silent deadlock.
package threading
