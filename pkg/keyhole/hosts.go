package keyhole

import (
	"time"

	"github.com/keyhole-io/keyhole/pkg/options"
)

// HostData is one resolved remote endpoint. It is built fresh per dispatch
// attempt and immutable once built.
type HostData struct {
	Address string
	Port    int
	Timeout time.Duration
}

// HostProvider produces the HostData for one dispatch attempt. It is invoked
// with the owning facade every time an entry is dispatched, so it may pick a
// different endpoint per call. A provider that fails (or panics) causes a
// per-host "host" failure, never a failed dispatch to other hosts.
type HostProvider func(d *RemoteDebugger) (HostData, error)

// StaticHost builds a provider that always returns the same endpoint.
// Zero values select the defaults: loopback address, options.DefaultPort,
// options.DefaultTimeout.
func StaticHost(address string, port int, timeout time.Duration) HostProvider {
	if address == "" {
		address = options.DefaultAddress
	}
	if port == 0 {
		port = options.DefaultPort
	}
	if timeout == 0 {
		timeout = options.DefaultTimeout
	}
	host := HostData{Address: address, Port: port, Timeout: timeout}
	return func(*RemoteDebugger) (HostData, error) {
		return host, nil
	}
}

// AddHost registers a static listener endpoint. Zero values select defaults
// (see StaticHost). Returns the facade for chaining.
func (d *RemoteDebugger) AddHost(address string, port int, timeout time.Duration) *RemoteDebugger {
	return d.AddHostProvider(StaticHost(address, port, timeout))
}

// AddHostProvider registers a custom host provider. The registry is
// append-only; a provider is never mutated once added. Registering no hosts
// at all makes Dbg/DbgIf capture without any network activity.
func (d *RemoteDebugger) AddHostProvider(p HostProvider) *RemoteDebugger {
	d.mu.Lock()
	d.hosts = append(d.hosts, p)
	d.mu.Unlock()
	return d
}

// snapshotHosts copies the provider list so an AddHost racing an in-flight
// dispatch cannot corrupt iteration.
func (d *RemoteDebugger) snapshotHosts() []HostProvider {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]HostProvider, len(d.hosts))
	copy(out, d.hosts)
	return out
}
