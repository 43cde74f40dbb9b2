package keyholectl

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keyhole-io/keyhole/pkg/keyhole"
	"github.com/keyhole-io/keyhole/pkg/options"
	"github.com/keyhole-io/keyhole/pkg/spoollog"
)

func (o *Options) DemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "instrument this process and send a few snapshots to a spool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runDemo()
		},
	}
	cmd.Flags().StringVar(&o.Demo.Address, "address", "", "spool address (default: loopback)")
	cmd.Flags().IntVar(&o.Demo.Port, "port", 0, "spool port (default: spool_port from config)")
	cmd.Flags().StringVar(&o.Demo.App, "app", "", "app identity to report (default: app from config, else keyhole-demo)")
	cmd.Flags().IntVar(&o.Demo.Count, "count", 3, "number of snapshots to send")
	cmd.Flags().BoolVar(&o.Demo.ShipLogs, "ship-logs", false, "also ship demo log output to the spool")
	return cmd
}

func (o *Options) runDemo() error {
	port := o.Demo.Port
	if port == 0 {
		port = o.Config.spoolPort
	}
	app := o.Demo.App
	if app == "" {
		app = o.Config.app
	}
	if app == "" {
		app = "keyhole-demo"
	}

	handler := keyhole.NewZapErrorHandler(zap.NewExample())
	dbg := keyhole.New().
		SetApp(keyhole.Literal(app)).
		SetErrorHandler(handler).
		AddHost(o.Demo.Address, port, 0)

	if o.Demo.ShipLogs {
		addr := o.Demo.Address
		if addr == "" {
			addr = options.DefaultAddress
		}
		logPort := port
		if logPort == 0 {
			logPort = options.DefaultPort
		}
		spoolLogger := zap.New(spoollog.GetSpoolLoggerCore(fmt.Sprintf("%v:%d", addr, logPort)))
		spoolLogger.Info("keyhole demo starting", zap.Int("count", o.Demo.Count))
	}

	for i := 0; i < o.Demo.Count; i++ {
		log.Infof("sending snapshot %v", i)
		dbg.Dbg(keyhole.Vars{
			"iteration": i,
			"started":   keyhole.Literal(time.Now().String()),
			"uptime": keyhole.Compute(func(d *keyhole.RemoteDebugger, ev *keyhole.EventData, step, maxSteps int) keyhole.Value {
				return keyhole.Literal(time.Since(ev.Timestamp).String())
			}),
		})
		dbg.DbgIf(keyhole.If(i%2 == 0), keyhole.Vars{"even": i})
		time.Sleep(200 * time.Millisecond)
	}
	// Give the async dispatches a moment before the process exits.
	time.Sleep(time.Second)
	return nil
}
