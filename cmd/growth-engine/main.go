package main

import (
	"os"

	"github.com/prepflow/growth-engine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
