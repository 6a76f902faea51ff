package main

import (
	"os"

	"github.com/janusbot/janus/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
