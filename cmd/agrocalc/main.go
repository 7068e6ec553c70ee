package main

import (
	"os"

	"github.com/yanqian/agrocalc/cmd/agrocalc/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
