// Package main provides the entry point for the PawChat CLI.
package main

import (
	"fmt"
	"os"

	"github.com/pawchat-ai/pawchat/cmd/pawchat/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
