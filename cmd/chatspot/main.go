package main

import (
	"os"

	"github.com/awnumar/memguard"

	"chatspot/cmd/chatspot/commands"
)

func main() {
	memguard.CatchInterrupt()
	defer memguard.Purge()

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
