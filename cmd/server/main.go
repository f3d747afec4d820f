package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "klm-wiki-api",
	Short: "KLM wiki backend",
	Long: `KLM wiki backend: articles, categories, comments with attachments, users,
the useful services directory and affiliate approvals.

Configuration is read from KLMWIKI_* environment variables and an optional .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, approvalsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
