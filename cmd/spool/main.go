package main

import (
	"fmt"
	"os"

	"github.com/keyhole-io/keyhole/pkg/options"
	"github.com/keyhole-io/keyhole/pkg/spool"
)

// Helper program to watch snapshot entries without the full CLI.
func main() {
	srv, err := spool.Listen(fmt.Sprintf(":%d", options.DefaultPort), nil)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Printf("spooling on %v\n", srv.Addr())
	if err := srv.Serve(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
