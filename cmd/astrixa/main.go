// Command astrixa is the reference CLI for the Astrixa compiler and
// runtime: build (emit WAT), run (execute via wazero), and the lex /
// parse / check debugging commands.
package main

import (
	"fmt"
	"os"

	"github.com/astrixa-lang/astrixa/cmd/astrixa/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
