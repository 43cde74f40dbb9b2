package keyhole

// Error categories passed to the error handler. Each failure is caught at its
// origin and routed here; none propagate as panics back through Dbg/DbgIf.
const (
	// ErrorHost - a HostProvider failed to resolve.
	ErrorHost = "host"
	// ErrorConnect - the transport connection failed or timed out.
	ErrorConnect = "connect"
	// ErrorSend - the write failed after the connection succeeded.
	ErrorSend = "send"
	// ErrorTransform - the entry could not be serialized or transformed.
	ErrorTransform = "transform"
	// ErrorCondition - a DbgIf condition evaluator failed.
	ErrorCondition = "condition"
	// ErrorUnwrap - a value provider failed during resolution.
	ErrorUnwrap = "unwrap"
)

// ErrorContext describes one failure. Both fields are optional; a zero Code
// means no code was available.
type ErrorContext struct {
	Code    int
	Message string
}

// ErrorHandler receives every failure together with the EventData in flight.
// Implementations must tolerate concurrent calls: dispatch attempts for
// different hosts run in parallel.
type ErrorHandler interface {
	HandleError(category string, errCtx ErrorContext, ev *EventData)
}

// ErrorHandlerFunc adapts a function to the ErrorHandler interface.
type ErrorHandlerFunc func(category string, errCtx ErrorContext, ev *EventData)

func (f ErrorHandlerFunc) HandleError(category string, errCtx ErrorContext, ev *EventData) {
	f(category, errCtx, ev)
}

// handleError routes a failure to the configured handler, if any. With no
// handler configured failures are dropped: instrumentation must never change
// the behavior of the program it observes unless explicitly asked to.
func (d *RemoteDebugger) handleError(category string, errCtx ErrorContext, ev *EventData) {
	d.mu.Lock()
	h := d.errorHandler
	d.mu.Unlock()
	if h == nil {
		return
	}
	defer func() {
		// A panicking handler must not take the program down either.
		recover()
	}()
	h.HandleError(category, errCtx, ev)
}
