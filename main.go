// Command svnwc synchronizes Subversion working copies and exports from a
// declarative control manifest.
package main

import (
	"fmt"
	"os"

	"github.com/temirov/svnwc/cmd/cli"
)

func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintln(os.Stderr, executionError)
		os.Exit(1)
	}
}
