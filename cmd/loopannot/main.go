// Command loopannot attaches stable identifiers to the loops of Go programs.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
