package main

import (
	"os"

	"github.com/acta-dev/acta-mcp/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
