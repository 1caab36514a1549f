package cmd

import "github.com/spf13/cobra"

// runCmd is an explicit alias for the root behaviour.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play a single scoring session",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(runCmd)
}
