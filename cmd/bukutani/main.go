package main

import (
	"os"

	"github.com/bukutani/bukutani/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
