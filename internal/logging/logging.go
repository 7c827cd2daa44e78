// Package logging provides the default logger, used where a caller has not
// configured one.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Default returns the shared JSON logger writing to stderr, which only logs
// warnings and above.
var Default = sync.OnceValue(func() *logiface.Logger[logiface.Event] {
	return New(os.Stderr, logiface.LevelWarning)
})

// New returns a JSON logger writing to w, at the given level.
func New(w io.Writer, level logiface.Level) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}
