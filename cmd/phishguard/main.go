// Command phishguard evaluates URLs for phishing risk from the command line
// or serves the evaluation API.
//
// Usage: phishguard check|batch|rules|serve [flags]
package main

import (
	"fmt"
	"os"

	"github.com/raysh454/phishguard/internal/cli"
	"github.com/raysh454/phishguard/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(cli.Execute())
}
