package main

import (
	"os"

	"ikhtibar/cmd"
	_ "ikhtibar/docs" // swagger spec registration
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
