package main

import (
	"os"

	"github.com/intelligrit/fitment/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
