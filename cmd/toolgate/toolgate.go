package main

import (
	"os"

	"github.com/kiosk404/toolgate/internal/toolgate/cmd"
	_ "go.uber.org/automaxprocs"
)

func main() {
	command := cmd.NewDefaultToolgateCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
