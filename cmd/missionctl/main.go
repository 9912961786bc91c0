package main

import (
	"fmt"
	"os"

	"github.com/jholhewres/missionctl/cmd/missionctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
