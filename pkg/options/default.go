package options

import "time"

var (
	// The port where a spool/listener waits for snapshot entries by default.
	DefaultPort = 23654

	// DefaultTimeout bounds a single connect+write cycle for one host.
	// A timeout is the only bound on how long a send attempt may run.
	DefaultTimeout = 5000 * time.Millisecond

	// DefaultAddress is used when a host is registered without an address.
	DefaultAddress = "127.0.0.1"

	// MaxResolveSteps bounds provider-chain resolution. Providers are
	// arbitrary user code, so this is the only protection against cyclic
	// chains.
	MaxResolveSteps = 64

	// ScopeDepth is how many levels of nested objects the encoder expands
	// into scopes before falling back to a rendered string.
	ScopeDepth = 3

	// ConfigDirName is the directory under the user home that holds the
	// keyhole CLI config file.
	ConfigDirName = ".keyhole"
)
