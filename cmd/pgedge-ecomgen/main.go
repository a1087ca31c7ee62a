// Package main is the entry point for pgedge-ecomgen.
package main

import (
	"fmt"
	"os"

	"github.com/pgEdge/pgedge-ecomgen/internal/cli"

	// Register store backends
	_ "github.com/pgEdge/pgedge-ecomgen/internal/store/postgres"
	_ "github.com/pgEdge/pgedge-ecomgen/internal/store/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
