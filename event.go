package threading

import (
	"context"
	"time"
)

type (
	// Event is a boolean flag, that goroutines may wait to be set.
	// It must be initialized using NewEvent.
	Event struct {
		cond *Cond
		flag bool
	}

	// EventSet is a set of up to 64 flags, modeled as a bitmask, that
	// goroutines may wait on, for all or any of a subset of the flags.
	// It must be initialized using NewEventSet.
	EventSet struct {
		cond *Cond
		bits uint64
	}
)

// NewEvent returns a new, unset Event.
func NewEvent() *Event {
	return &Event{cond: NewCond(nil)}
}

// Set sets the flag, waking all waiting goroutines.
func (x *Event) Set() {
	x.cond.Lock()
	defer x.cond.Unlock()
	x.flag = true
	x.cond.notifyAll()
}

// Clear unsets the flag.
func (x *Event) Clear() {
	x.cond.Lock()
	defer x.cond.Unlock()
	x.flag = false
}

// IsSet reports whether the flag is set.
func (x *Event) IsSet() bool {
	x.cond.Lock()
	defer x.cond.Unlock()
	return x.flag
}

// Wait blocks until the flag is set, returning false if the timeout elapses
// first. See the package docs regarding timeouts.
func (x *Event) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	return x.wait(ctx, timeout, false)
}

// WaitAndClear is like Wait, but also clears the flag, atomically with
// observing it set. At most one of any number of concurrent WaitAndClear
// calls will therefore observe any single Set.
func (x *Event) WaitAndClear(ctx context.Context, timeout time.Duration) (bool, error) {
	return x.wait(ctx, timeout, true)
}

func (x *Event) wait(ctx context.Context, timeout time.Duration, reset bool) (bool, error) {
	x.cond.Lock()
	defer x.cond.Unlock()
	ok, err := x.cond.WaitFor(ctx, func() bool { return x.flag }, timeout)
	if ok && reset {
		x.flag = false
	}
	return ok, err
}

// NewEventSet returns a new EventSet, with no flags set.
func NewEventSet() *EventSet {
	return &EventSet{cond: NewCond(nil)}
}

// Set sets all flags in mask, waking all waiting goroutines.
func (x *EventSet) Set(mask uint64) {
	x.cond.Lock()
	defer x.cond.Unlock()
	x.bits |= mask
	x.cond.notifyAll()
}

// Clear unsets all flags in mask.
func (x *EventSet) Clear(mask uint64) {
	x.cond.Lock()
	defer x.cond.Unlock()
	x.bits &^= mask
}

// IsSet reports whether every flag in mask is set.
func (x *EventSet) IsSet(mask uint64) bool {
	x.cond.Lock()
	defer x.cond.Unlock()
	return x.bits&mask == mask
}

// IsSetAny returns the flags in mask that are set.
func (x *EventSet) IsSetAny(mask uint64) uint64 {
	x.cond.Lock()
	defer x.cond.Unlock()
	return x.bits & mask
}

// Wait blocks until every flag in mask is set, returning false if the
// timeout elapses first.
func (x *EventSet) Wait(ctx context.Context, mask uint64, timeout time.Duration) (bool, error) {
	ok, _, err := x.wait(ctx, mask, timeout, true, false)
	return ok, err
}

// WaitAndClear is like Wait, but clears the flags in mask, atomically with
// observing them set.
func (x *EventSet) WaitAndClear(ctx context.Context, mask uint64, timeout time.Duration) (bool, error) {
	ok, _, err := x.wait(ctx, mask, timeout, true, true)
	return ok, err
}

// WaitAny blocks until at least one flag in mask is set, returning the
// flags in mask that were set, or 0 if the timeout elapsed first.
func (x *EventSet) WaitAny(ctx context.Context, mask uint64, timeout time.Duration) (uint64, error) {
	_, matched, err := x.wait(ctx, mask, timeout, false, false)
	return matched, err
}

// WaitAnyAndClear is like WaitAny, but clears the matched flags, atomically
// with observing them set.
func (x *EventSet) WaitAnyAndClear(ctx context.Context, mask uint64, timeout time.Duration) (uint64, error) {
	_, matched, err := x.wait(ctx, mask, timeout, false, true)
	return matched, err
}

func (x *EventSet) wait(ctx context.Context, mask uint64, timeout time.Duration, all, reset bool) (bool, uint64, error) {
	x.cond.Lock()
	defer x.cond.Unlock()
	predicate := func() bool { return x.bits&mask != 0 }
	if all {
		predicate = func() bool { return x.bits&mask == mask }
	}
	ok, err := x.cond.WaitFor(ctx, predicate, timeout)
	if !ok {
		return false, 0, err
	}
	matched := x.bits & mask
	if reset {
		x.bits &^= matched
	}
	return true, matched, nil
}
