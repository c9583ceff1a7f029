// cmd/weft/main.go
//
// This is the entry point for the weft CLI. `weft edit` opens the terminal
// workflow editor; `weft show` and `weft check` work on saved records
// without starting the TUI.

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
