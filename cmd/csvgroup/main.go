// Command csvgroup groups CSV files by a shared column and exports the
// grouped and ungrouped rows back to CSV.
package main

import (
	"os"

	"github.com/hartfield/csvgroup/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
