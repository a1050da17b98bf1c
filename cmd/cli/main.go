package main

import (
	"os"

	"github.com/corebank-dev/corebank/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
