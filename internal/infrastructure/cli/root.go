// Package cli implements the pulse command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:     "pulse",
	Version: Version,
	Short:   "Deterministic analytics and AI insights for project management data",
	Long: `Pulse reads a project-management document store and answers:
1. How healthy is each project?
2. Where is work piling up or stalling?
3. What should the team do about it?`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to pulse.yaml (defaults to ./pulse.yaml)")
}
