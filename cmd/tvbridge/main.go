package main

import (
	"os"

	"tvbridge/cmd/tvbridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
