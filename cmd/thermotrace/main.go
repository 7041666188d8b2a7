// main is the entry point for the thermotrace binary.
package main

import (
	"os"

	"github.com/thermotrace/thermotrace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
