package main

import (
	"os"

	"github.com/KingJoefa/AFBParley-sub002/cmd/parley/commands"
)

// main is the entry point for the parley CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
