package main

import (
	"os"

	"github.com/hybridship/powersim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
