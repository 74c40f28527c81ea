// swserve serves the WASM player build output over plain HTTP,
// adding the cross-origin-isolation headers SharedArrayBuffer requires.
package main

import (
	"os"

	"github.com/Quackster/LibreShockwave/cmd/swserve/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
