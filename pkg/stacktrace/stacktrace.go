// Package stacktrace captures the execution context of a call site: the
// backtrace, the current goroutine id, and the identity of the host machine.
package stacktrace

import (
	"bytes"
	"os"
	"runtime"
	"strconv"
)

// Frame is one captured call frame. Frames are immutable once captured and
// ordered innermost first.
type Frame struct {
	File     string
	Function string
	Line     int
}

// Capture returns the current backtrace, innermost frame first. skip is the
// number of innermost frames to drop in addition to Capture itself; frames
// below the skip count are never reported.
func Capture(skip int) []Frame {
	// 2 skips runtime.Callers and Capture.
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2+skip, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	var out []Frame
	for {
		fr, more := frames.Next()
		out = append(out, Frame{
			File:     fr.File,
			Function: fr.Function,
			Line:     fr.Line,
		})
		if !more {
			break
		}
	}
	return out
}

// GoroutineID returns the id of the calling goroutine as reported in the
// runtime's stack dump header ("goroutine N [running]:"). The runtime does
// not expose this directly, so we parse it out.
func GoroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i > 0 {
		buf = buf[:i]
	}
	id, err := strconv.ParseUint(string(buf), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Hostname identifies the machine the snapshot was captured on. Failures
// fall back to an empty string; host identity is best-effort.
func Hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}
