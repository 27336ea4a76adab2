// Command granuletvf runs SQL queries over registered table functions,
// either once from the command line or behind an HTTP endpoint.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
