package main

import (
	"os"

	"github.com/rustyeddy/edgelab/cmd/edgelab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
