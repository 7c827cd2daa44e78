package threading

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-threading/goroutineid"
)

// Mutex is a non-reentrant mutual exclusion lock, that tracks which
// goroutine holds it. The zero value is an unlocked Mutex.
//
// Unlike [sync.Mutex], it must be unlocked by the goroutine that locked it.
//
// A Mutex must not be copied after first use.
type Mutex struct {
	mu sync.Mutex
	// owner is the goroutine id of the holder, or 0, written only while mu
	// is held
	owner atomic.Uint64
}

var _ sync.Locker = (*Mutex)(nil)

// Lock blocks until the mutex is acquired, then records the caller as the
// owner. Locking a mutex already held by the caller deadlocks.
func (x *Mutex) Lock() {
	id := goroutineid.Current()
	x.mu.Lock()
	x.owner.Store(id)
}

// TryLock acquires the mutex, if it is available, without blocking.
func (x *Mutex) TryLock() bool {
	if !x.mu.TryLock() {
		return false
	}
	x.owner.Store(goroutineid.Current())
	return true
}

// Unlock releases the mutex. It panics with [ErrUnlockUnheld] if the mutex
// is not locked, or [ErrNotOwner] if another goroutine holds it. In both
// cases, the state of the mutex is unchanged.
func (x *Mutex) Unlock() {
	switch owner := x.owner.Load(); owner {
	case 0:
		panic(ErrUnlockUnheld)
	case goroutineid.Current():
		x.owner.Store(0)
		x.mu.Unlock()
	default:
		panic(ErrNotOwner)
	}
}

// Locked reports whether the mutex is held, by any goroutine.
func (x *Mutex) Locked() bool {
	return x.owner.Load() != 0
}

// Owner returns the id of the holding goroutine, see [goroutineid.Current],
// or 0 if the mutex is not held.
func (x *Mutex) Owner() uint64 {
	return x.owner.Load()
}

// HeldByCurrent reports whether the calling goroutine holds the mutex.
func (x *Mutex) HeldByCurrent() bool {
	owner := x.owner.Load()
	return owner != 0 && owner == goroutineid.Current()
}
