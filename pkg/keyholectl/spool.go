package keyholectl

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/keyhole-io/keyhole/pkg/options"
	"github.com/keyhole-io/keyhole/pkg/spool"
)

func (o *Options) SpoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spool",
		Short: "listen for snapshot entries and print them",
		RunE: func(cmd *cobra.Command, args []string) error {
			port := o.Spool.Port
			if port == 0 {
				port = o.Config.spoolPort
			}
			if port == 0 {
				port = options.DefaultPort
			}
			srv, err := spool.Listen(fmt.Sprintf(":%d", port), nil)
			if err != nil {
				return err
			}
			log.Infof("spooling snapshot entries on %v", srv.Addr())
			return srv.Serve()
		},
	}
	cmd.Flags().IntVar(&o.Spool.Port, "port", 0, "port to listen on (default: spool_port from config)")
	return cmd
}
