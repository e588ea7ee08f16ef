package main

import (
	"github.com/spf13/cobra"
)

var (
	serverURL string
	outputFmt string
)

var rootCmd = &cobra.Command{
	Use:   "registryctl",
	Short: "CLI for the vehicle registry server",
	Long: `registryctl talks to a running vehicle registry server.

It covers the full registry surface: registering vehicles, transferring
ownership, issuing and administering license plates, and browsing the
ownership history and audit trail.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Registry server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")

	rootCmd.AddCommand(ownersCmd)
	rootCmd.AddCommand(vehiclesCmd)
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(platesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(healthCmd)
}
