package keyhole

import (
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Sender delivers one encoded entry to the host resolved into ev.Host.
// Replacing the sender swaps the transport while keeping snapshot capture and
// encoding intact. Implementations report failures through the supplied
// handler and must not panic.
type Sender interface {
	Send(buf []byte, ev *EventData, handler ErrorHandler)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(buf []byte, ev *EventData, handler ErrorHandler)

func (f SenderFunc) Send(buf []byte, ev *EventData, handler ErrorHandler) {
	f(buf, ev, handler)
}

// dispatch queues one send attempt per registered host. Attempts run on
// their own goroutines, fully isolated from one another: a failing or slow
// host never delays another host, and the caller returns as soon as the
// attempts are launched.
func (d *RemoteDebugger) dispatch(ev *EventData) {
	hosts := d.snapshotHosts()
	d.mu.Lock()
	sender := d.sender
	d.mu.Unlock()
	if len(hosts) == 0 || sender == nil {
		return
	}

	buf, err := d.Encode(ev)
	if err != nil {
		d.handleError(ErrorTransform, ErrorContext{Message: err.Error()}, ev)
		return
	}

	for _, provider := range hosts {
		provider := provider
		go d.sendOne(provider, sender, buf, ev)
	}
}

// sendOne resolves one host and hands the buffer to the sender. Every
// failure path ends at the error handler; nothing escapes the goroutine.
func (d *RemoteDebugger) sendOne(provider HostProvider, sender Sender, buf []byte, ev *EventData) {
	host, err := resolveHost(provider, d)
	if err != nil {
		d.handleError(ErrorHost, ErrorContext{Message: err.Error()}, ev)
		return
	}

	// Per-attempt copy: EventData is never shared across concurrent sends.
	attempt := *ev
	attempt.Host = host

	defer func() {
		if r := recover(); r != nil {
			d.handleError(ErrorSend, ErrorContext{Message: errors.Errorf("sender panicked: %v", r).Error()}, &attempt)
		}
	}()
	sender.Send(buf, &attempt, handlerFor(d))
}

func resolveHost(provider HostProvider, d *RemoteDebugger) (host HostData, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("host provider panicked: %v", r)
		}
	}()
	return provider(d)
}

// handlerFor hands senders a handler that always reflects the facade's
// current configuration and swallows handler panics.
func handlerFor(d *RemoteDebugger) ErrorHandler {
	return ErrorHandlerFunc(func(category string, errCtx ErrorContext, ev *EventData) {
		d.handleError(category, errCtx, ev)
	})
}

// netSender is the default transport: one TCP connection per message, write
// the whole buffer, close. The resolved timeout bounds both the dial and the
// write; there is no other cancellation.
type netSender struct{}

func (netSender) Send(buf []byte, ev *EventData, handler ErrorHandler) {
	addr := net.JoinHostPort(ev.Host.Address, strconv.Itoa(ev.Host.Port))
	conn, err := net.DialTimeout("tcp", addr, ev.Host.Timeout)
	if err != nil {
		report(handler, ErrorConnect, errors.Wrapf(err, "connecting to %v", addr), ev)
		return
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(ev.Host.Timeout)); err != nil {
		report(handler, ErrorSend, errors.Wrapf(err, "arming write deadline for %v", addr), ev)
		return
	}
	if _, err := conn.Write(buf); err != nil {
		report(handler, ErrorSend, errors.Wrapf(err, "writing entry to %v", addr), ev)
	}
}

func report(handler ErrorHandler, category string, err error, ev *EventData) {
	if handler == nil {
		return
	}
	handler.HandleError(category, ErrorContext{Message: err.Error()}, ev)
}
