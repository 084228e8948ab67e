package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/switchboard/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "swbctl",
		Short: "swbctl - operator CLI for the switchboard dispatch service",
		Long: `swbctl talks to a running switchboard instance over its HTTP API.
Reviewers use it to inspect the pending approval queue and resolve items;
it can also classify a message for a quick routing check.`,
	}

	rootCmd.PersistentFlags().String("server", envOr("SWITCHBOARD_URL", "http://localhost:8080"), "base URL of the switchboard API")

	rootCmd.AddCommand(cli.PendingCmd())
	rootCmd.AddCommand(cli.ResolveCmd())
	rootCmd.AddCommand(cli.ClassifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
