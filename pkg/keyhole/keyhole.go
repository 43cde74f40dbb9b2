// Package keyhole is a runtime instrumentation client. An instrumented
// program calls Dbg or DbgIf at points of interest; keyhole captures a
// snapshot of execution state (backtrace, variables, goroutine and host
// identity) and ships it, best-effort and without blocking the caller, to
// every registered listener host.
//
// It is not a debugger: it cannot set breakpoints, step, or pause the target
// process. It only reports state at points the program chooses to call it.
package keyhole

import (
	"sync"

	"github.com/keyhole-io/keyhole/pkg/options"
)

// Vars are the user variables supplied at a call site. A value may itself be
// a keyhole.Value wrapping a provider; such values are resolved lazily by the
// entry encoder, field by field.
type Vars map[string]interface{}

// RemoteDebugger is the facade an instrumented program configures once and
// then calls at arbitrary call sites. All configuration methods return the
// facade for chaining and are safe to call concurrently with in-flight
// dispatches.
type RemoteDebugger struct {
	mu           sync.Mutex
	app          Value
	targetClient Value
	hosts        []HostProvider
	sender       Sender
	errorHandler ErrorHandler
	transformer  Transformer
	typer        VariableTyper
	maxSteps     int
}

// New returns a facade with the default TCP sender, identity transformer and
// variable typing policy, no error handler, and no hosts registered.
func New() *RemoteDebugger {
	return &RemoteDebugger{
		sender:      netSender{},
		transformer: TransformerFunc(identityTransform),
		typer:       DefaultVariableTyper,
		maxSteps:    options.MaxResolveSteps,
	}
}

// SetApp configures the application identity reported in entries.
func (d *RemoteDebugger) SetApp(v Value) *RemoteDebugger {
	d.mu.Lock()
	d.app = v
	d.mu.Unlock()
	return d
}

// SetTargetClient configures the client identity entries are aimed at.
func (d *RemoteDebugger) SetTargetClient(v Value) *RemoteDebugger {
	d.mu.Lock()
	d.targetClient = v
	d.mu.Unlock()
	return d
}

// SetSender replaces the transport behavior entirely; snapshot capture and
// encoding are unaffected.
func (d *RemoteDebugger) SetSender(s Sender) *RemoteDebugger {
	d.mu.Lock()
	d.sender = s
	d.mu.Unlock()
	return d
}

// SetErrorHandler routes all failures to h. A nil handler restores the
// default of silently dropping failures.
func (d *RemoteDebugger) SetErrorHandler(h ErrorHandler) *RemoteDebugger {
	d.mu.Lock()
	d.errorHandler = h
	d.mu.Unlock()
	return d
}

// SetTransformer replaces the post-serialization transform applied to each
// encoded entry, e.g. to add compression or encryption.
func (d *RemoteDebugger) SetTransformer(t Transformer) *RemoteDebugger {
	d.mu.Lock()
	d.transformer = t
	d.mu.Unlock()
	return d
}

// SetVariableTyper replaces the type-tag inference policy used by the entry
// encoder.
func (d *RemoteDebugger) SetVariableTyper(t VariableTyper) *RemoteDebugger {
	d.mu.Lock()
	d.typer = t
	d.mu.Unlock()
	return d
}

// SetMaxResolveSteps overrides the provider-chain resolution budget.
func (d *RemoteDebugger) SetMaxResolveSteps(n int) *RemoteDebugger {
	d.mu.Lock()
	d.maxSteps = n
	d.mu.Unlock()
	return d
}

func (d *RemoteDebugger) maxResolveSteps() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.maxSteps <= 0 {
		return options.MaxResolveSteps
	}
	return d.maxSteps
}

func (d *RemoteDebugger) appValue() Value {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.app
}

func (d *RemoteDebugger) targetClientValue() Value {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.targetClient
}

// Dbg captures a snapshot at the call site and queues it for dispatch to
// every registered host. skipFrames optionally drops that many innermost
// user frames from the backtrace. Dbg never blocks on network I/O and never
// panics into the caller.
func (d *RemoteDebugger) Dbg(vars Vars, skipFrames ...int) {
	defer swallowPanic()
	ev := d.buildSnapshot(vars, firstOrZero(skipFrames))
	d.dispatch(ev)
}

// DbgIf is Dbg gated by a condition. A literal false suppresses all capture
// work; a function condition is evaluated against a preliminary snapshot
// without variables. Condition failures are reported under "condition" and
// never prevent future DbgIf calls.
func (d *RemoteDebugger) DbgIf(cond Condition, vars Vars, skipFrames ...int) {
	defer swallowPanic()
	skip := firstOrZero(skipFrames)

	if cond.fn == nil {
		if !cond.lit {
			return
		}
		ev := d.buildSnapshot(vars, skip)
		d.dispatch(ev)
		return
	}

	ev := d.buildSnapshot(nil, skip)
	ok, err := evalCondition(cond.fn, ev)
	if err != nil {
		d.handleError(ErrorCondition, ErrorContext{Message: err.Error()}, ev)
		return
	}
	ev.Condition = ok
	if !ok {
		return
	}
	ev.Vars = vars
	d.dispatch(ev)
}

func firstOrZero(vals []int) int {
	if len(vals) > 0 {
		return vals[0]
	}
	return 0
}

func swallowPanic() {
	// Instrumentation must never crash the program it observes.
	recover()
}
