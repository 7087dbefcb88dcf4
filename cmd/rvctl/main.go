package main

import (
	"os"

	"rvmanagement/cmd/rvctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
