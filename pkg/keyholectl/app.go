package keyholectl

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const descriptionUsage = `Keyhole ships point-in-time snapshots (stack, variables, goroutine)
from instrumented programs to one or more listeners.
Run "keyhole spool" to watch snapshots arrive, or "keyhole demo" to
instrument this process and send a few snapshots to a spool.
`

func App(version string) (*cobra.Command, error) {
	opts := &Options{}
	app := &cobra.Command{
		Use:     "keyhole",
		Short:   "live state snapshots from running programs",
		Long:    descriptionUsage,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := opts.readConfigValues(&opts.Config); err != nil {
				log.Warnf("could not read config file: %v", err)
			}
			if opts.Config.verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	app.SuggestionsMinimumDistance = 1
	app.AddCommand(
		opts.SpoolCmd(),
		opts.DemoCmd(),
	)

	return app, nil
}
