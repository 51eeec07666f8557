// Command browse is a terminal client for the reelhouse backend: it browses
// discovery rows, opens title and person pages and manages favorites.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout, appOptions{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
