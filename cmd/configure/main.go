package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ambientanki/ambientd/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "ambientd-configure",
		Short: "Configuration tool for the Ambient Anki daemon",
		Long:  "CLI tool for inspecting and changing a running daemon's settings, credentials, and capture history",
	}

	rootCmd.AddCommand(commands.NewSettingsCmd())
	rootCmd.AddCommand(commands.NewAPIKeyCmd())
	rootCmd.AddCommand(commands.NewStatusCmd())
	rootCmd.AddCommand(commands.NewHistoryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
