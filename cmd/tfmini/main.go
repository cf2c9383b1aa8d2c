// Package main is the tfmini command line tool.
package main

import (
	"fmt"
	"os"

	"go.viam.com/tfmini/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
