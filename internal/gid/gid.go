// Package gid extracts the identity of the calling goroutine.
//
// The runtime does not expose goroutine IDs through a public API, so the
// ID is parsed out of the "goroutine N [state]:" header that
// runtime.Stack prints for the current goroutine. IDs are unique for the
// lifetime of the process and never reused, which makes them suitable as
// registry keys.
//
// The ID is opaque: callers may compare and hash it, nothing else.
package gid

import (
	"bytes"
	"runtime"
	"strconv"
)

// ID uniquely identifies a goroutine for the lifetime of the process.
type ID uint64

// stackPrefix is the fixed header runtime.Stack emits before the ID.
var stackPrefix = []byte("goroutine ")

// Current returns the ID of the calling goroutine.
//
// Safe to call from any goroutine, including inside a deferred panic
// handler. Returns 0 only if the runtime header format changes, which
// would be a Go release regression.
func Current() ID {
	// 64 bytes is enough for "goroutine N [running]:" with any ID.
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	return parseHeader(buf[:n])
}

// parseHeader extracts the numeric ID from a stack trace header.
func parseHeader(buf []byte) ID {
	if !bytes.HasPrefix(buf, stackPrefix) {
		return 0
	}
	rest := buf[len(stackPrefix):]
	end := bytes.IndexByte(rest, ' ')
	if end <= 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(rest[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return ID(id)
}
