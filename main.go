package main

import (
	"os"

	"github.com/birdquiz/birdquiz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
