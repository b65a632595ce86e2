package main

import (
	"os"

	"github.com/wonny/vreflex/backend/cmd/vreflex/commands"
)

// main is the entry point for the vreflex CLI
// ⭐ single CLI entry point: go run ./cmd/vreflex [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
