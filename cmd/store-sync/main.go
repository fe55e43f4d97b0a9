package main

import (
	"fmt"
	"os"

	"github.com/anatoly-dev/go-store-sync/cmd/store-sync/commands"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "store-sync",
		Short: "Storefront client-sync agent",
		Long:  "A sync agent for the storefront client: keeps favorites consistent with the server, maintains the realtime chat connection and enforces the inactivity session guard",
	}

	rootCmd.AddCommand(commands.NewRunCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
