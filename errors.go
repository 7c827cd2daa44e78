package threading

import (
	"errors"
	"math"
	"time"
)

// Forever may be passed as the timeout of any blocking operation, to wait
// without a time bound (the context may still cancel the wait).
const Forever time.Duration = math.MaxInt64

var (
	// ErrInvalidTimeout is returned by blocking operations given a timeout
	// that is neither positive nor Forever.
	ErrInvalidTimeout = errors.New(`threading: timeout must be positive`)

	// ErrInvalidCount is returned for a negative notify count, or a release
	// count less than one.
	ErrInvalidCount = errors.New(`threading: invalid count`)

	// ErrNotOwner indicates the calling goroutine does not hold a Mutex that
	// it is required to hold.
	ErrNotOwner = errors.New(`threading: mutex not held by caller`)

	// ErrUnlockUnheld is the panic value for Mutex.Unlock of an unlocked
	// Mutex.
	ErrUnlockUnheld = errors.New(`threading: unlock of unlocked mutex`)

	// ErrOverRelease is returned by BoundedSemaphore.Release if the release
	// would raise the count above the initial count.
	ErrOverRelease = errors.New(`threading: semaphore released too many times`)
)

func checkTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
