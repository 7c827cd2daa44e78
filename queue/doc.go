// Package queue implements bounded blocking queues, with FIFO, LIFO, and
// priority orderings, on top of the condition variables of
// [github.com/joeycumines/go-threading].
//
// All orderings share the same blocking behavior. Put blocks while the queue
// is full, and Get blocks while it is empty, each bounded by a timeout and a
// context. Running out of time is reported as [ErrFull] or [ErrEmpty], which
// are expected outcomes, distinct from invalid usage.
//
// See also [GetBatch], which drains as many values as possible, e.g. for
// consumers that process values in batches.
package queue
