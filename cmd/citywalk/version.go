package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/citywalk"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of citywalk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "citywalk version %s\n", strings.TrimSpace(citywalk.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
