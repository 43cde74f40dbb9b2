package main

import (
	"fmt"
	"os"

	"github.com/keyhole-io/keyhole/pkg/keyholectl"
	"github.com/keyhole-io/keyhole/pkg/version"
)

func main() {
	app, err := keyholectl.App(version.Version)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if err := app.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
