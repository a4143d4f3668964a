package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "resumeforge",
	Short: "Resume builder API, analysis worker and offline tools",
	Long: `resumeforge serves the resume builder HTTP API, runs the queued ATS
analysis worker, and exposes the same scoring, analysis and PDF export as
offline commands.

Settings come from an optional YAML file, a .env file and the environment.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "resumeforge.yaml", "path to the YAML config file (optional)")
	rootCmd.AddCommand(serveCmd, workerCmd, migrateCmd, analyzeCmd, scoreCmd, exportCmd, fetchCmd, templatesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
