package keyhole

import (
	"time"

	"github.com/pkg/errors"

	"github.com/keyhole-io/keyhole/pkg/stacktrace"
)

// EventData is the in-memory record of one snapshot. It is created fresh per
// Dbg/DbgIf call and discarded once dispatch completes; concurrent dispatch
// attempts each receive their own shallow copy with Host filled in.
type EventData struct {
	// Backtrace of the call site, innermost frame first. Frames below the
	// configured skip count are never present.
	Backtrace []stacktrace.Frame
	// Timestamp of capture.
	Timestamp time.Time
	// Hostname and GoroutineID identify where the snapshot was taken.
	Hostname    string
	GoroutineID uint64
	// App and TargetClient are the resolved identity fields.
	App          string
	TargetClient string
	// Host is the resolved endpoint of the dispatch attempt in flight.
	// Only set on the per-host copies handed to the sender.
	Host HostData
	// Condition holds the result of the DbgIf condition, true for plain Dbg.
	Condition bool
	// Vars are the unresolved user variables from the call site.
	Vars Vars
	// Debugger is the facade that produced this snapshot.
	Debugger *RemoteDebugger
	// Resolving points at the provider currently being resolved against this
	// snapshot, if any, so stateful providers can introspect.
	Resolving Provider
}

// Condition gates a DbgIf call: either a literal boolean or a predicate over
// the preliminary EventData.
type Condition struct {
	lit bool
	fn  func(*EventData) (bool, error)
}

// If builds a literal condition.
func If(b bool) Condition {
	return Condition{lit: b}
}

// IfFunc builds a condition evaluated against a preliminary snapshot (without
// variables) at each DbgIf call.
func IfFunc(fn func(*EventData) (bool, error)) Condition {
	return Condition{fn: fn}
}

// buildSnapshot assembles the EventData for one call. skip counts user frames
// to drop beyond the instrumentation path itself; buildSnapshot and its
// caller (Dbg or DbgIf) are always hidden.
func (d *RemoteDebugger) buildSnapshot(vars Vars, skip int) *EventData {
	ev := &EventData{
		Backtrace:   stacktrace.Capture(skip + 2),
		Timestamp:   time.Now(),
		Hostname:    stacktrace.Hostname(),
		GoroutineID: stacktrace.GoroutineID(),
		Condition:   true,
		Vars:        vars,
		Debugger:    d,
	}
	ev.App = d.resolveString(d.appValue(), ev)
	ev.TargetClient = d.resolveString(d.targetClientValue(), ev)
	return ev
}

func evalCondition(fn func(*EventData) (bool, error), ev *EventData) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = errors.Errorf("condition panicked: %v", r)
		}
	}()
	return fn(ev)
}
