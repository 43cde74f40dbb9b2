package keyholectl

type Options struct {
	Spool SpoolOptions
	Demo  DemoOptions

	// Internal contains cli-specific metadata
	Internal Internal

	// Config may be blended into other options
	Config Config
}

type SpoolOptions struct {
	Port int
}

type DemoOptions struct {
	Address  string
	Port     int
	App      string
	Count    int
	ShipLogs bool
}

type Internal struct {
	// ConfigLoaded should be set once the config has been loaded
	ConfigLoaded bool
}

type Config struct {
	verbose   bool
	app       string
	spoolPort int
}
