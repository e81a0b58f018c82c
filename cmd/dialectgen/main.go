// Package main provides the dialectgen command.
package main

import (
	"os"

	"github.com/leapstack-labs/dialectgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
