package main

import (
	"os"

	"github.com/toeicpractice/toeic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
