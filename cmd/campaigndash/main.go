// ABOUTME: CLI entrypoint for campaigndash, the terminal dashboard for the campaign generation backend.
// ABOUTME: Loads .env files, then hands off to the cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/2389-research/campaigndash/config"
)

var version = "dev"

func main() {
	config.LoadDotEnvAuto()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
