package main

import (
	"os"

	"github.com/civicprep/civicprep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
