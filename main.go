package main

import (
	"os"

	"habitcoach/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		cli.PrintError(err)
		os.Exit(1)
	}
}
