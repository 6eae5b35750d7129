// Command digraph manages the state graphs of the source types listed in a
// configuration file.
//
//	digraph migrate --config digraph.yaml
//	digraph add-edge --source Order 1 2 --attr 7
//	digraph graph --source Order 1 --format dot
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
