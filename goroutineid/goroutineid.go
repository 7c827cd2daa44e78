// Package goroutineid identifies the calling goroutine.
//
// The Go runtime deliberately hides goroutine identity. It is still exposed
// by the header line of a stack trace, which is what this package parses.
// Intended uses are ownership assertions (e.g. "is this lock held by me?")
// and diagnostics, never scheduling decisions.
package goroutineid

import (
	"runtime"
)

const prefix = `goroutine `

// Current returns the id of the calling goroutine. The value is never 0 for a
// running goroutine, so 0 may be used as "no goroutine".
//
// Each call costs a (small, fixed size) stack capture.
func Current() uint64 {
	var buf [64]byte
	return Parse(buf[:runtime.Stack(buf[:], false)])
}

// Parse extracts the goroutine id from the leading bytes of a stack trace, as
// produced by runtime.Stack, e.g. "goroutine 123 [running]:". It returns 0 if
// b does not start with a well-formed header.
func Parse(b []byte) uint64 {
	if len(b) <= len(prefix) || string(b[:len(prefix)]) != prefix {
		return 0
	}
	var id uint64
	for _, c := range b[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
