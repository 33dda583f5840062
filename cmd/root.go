package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillence",
	Short: "LLM-backed micro-lesson service",
	Long:  "Skillence generates structured micro-lessons with an LLM, scores their readability, and serves them over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SKILLENCE_DB env var)")
	rootCmd.PersistentFlags().String("port", "", "HTTP listen port (overrides SKILLENCE_PORT env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
