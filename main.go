package main

import (
	"os"

	"github.com/flightops/rotables/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
