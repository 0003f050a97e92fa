package main

import (
	"github.com/aretw0/citywalk/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Plan a walk interactively in the terminal",
	Long:  `Starts the planner in interactive mode. Each screen lists its actions; type a key (or the command name) to trigger one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")
		confirmMap, _ := cmd.Flags().GetBool("confirm-map")

		return cli.RunSession(cmd.Context(), cfg, logger, cli.RunOptions{
			JSON:       jsonMode,
			Headless:   headless,
			ConfirmMap: confirmMap,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, plain output)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("confirm-map", false, "Ask before opening the maps application")

	// 'run' is the default when no command is provided.
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
	rootCmd.RunE = runCmd.RunE
}
