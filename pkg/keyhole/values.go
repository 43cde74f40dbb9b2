package keyhole

import (
	"fmt"

	"github.com/pkg/errors"
)

// Provider lazily computes a configurable value. It may return another
// provider-backed Value, forming a chain that the resolver walks until a
// literal is produced or the step budget runs out. Providers run on every
// resolution; they are free to be stateful or time-varying.
type Provider func(d *RemoteDebugger, ev *EventData, step, maxSteps int) Value

// Value is either a literal or a provider. The zero Value is the literal nil.
type Value struct {
	literal  interface{}
	provider Provider
}

// Literal wraps a concrete value.
func Literal(v interface{}) Value {
	return Value{literal: v}
}

// Compute wraps a provider that is invoked at resolution time.
func Compute(p Provider) Value {
	return Value{provider: p}
}

// IsProvider reports whether the value still needs resolution.
func (v Value) IsProvider() bool {
	return v.provider != nil
}

// Resolve walks a provider chain until it yields a literal, invoking each
// provider with the current step count. Resolution stops after maxSteps
// invocations even if the chain keeps producing providers; in that case the
// last produced provider is returned as-is. maxSteps <= 0 selects the
// facade's configured budget. A provider panic is routed to the error handler
// under the "unwrap" category and yields nil.
func (d *RemoteDebugger) Resolve(v Value, ev *EventData, maxSteps int) interface{} {
	if maxSteps <= 0 {
		maxSteps = d.maxResolveSteps()
	}
	for step := 0; v.provider != nil && step < maxSteps; step++ {
		next, err := invokeProvider(v.provider, d, ev, step, maxSteps)
		if err != nil {
			d.handleError(ErrorUnwrap, ErrorContext{Message: err.Error()}, ev)
			return nil
		}
		v = next
	}
	if v.provider != nil {
		// Budget exhausted mid-chain. Hand back what was last produced.
		return v.provider
	}
	return v.literal
}

func invokeProvider(p Provider, d *RemoteDebugger, ev *EventData, step, maxSteps int) (out Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("value provider panicked: %v", r)
		}
	}()
	if ev != nil {
		ev.Resolving = p
		defer func() { ev.Resolving = nil }()
	}
	return p(d, ev, step, maxSteps), nil
}

// resolveString resolves v and renders the result as a string, the form the
// wire entry carries identity fields in.
func (d *RemoteDebugger) resolveString(v Value, ev *EventData) string {
	resolved := d.Resolve(v, ev, 0)
	if resolved == nil {
		return ""
	}
	if s, ok := resolved.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", resolved)
}
