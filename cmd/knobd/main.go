// Package main starts the knobslice server.
package main

import (
	"flag"
	"fmt"
	"os"
)

// main is the entrypoint for the knobslice server.
func main() {
	debug := flag.Bool("debug", false, "Force debug logging regardless of LOG_LEVEL")
	flag.Parse()

	if err := run(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
