// Command lvroute plans collectible routes from a marker file.
//
//	lvroute solve   --markers markers.json
//	lvroute expand  --threshold 0.05
//	lvroute show
//	lvroute delete-marker <id>
//	lvroute list
//
// Routes are kept in the configured repository under --name.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
