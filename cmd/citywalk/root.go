package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/citywalk/internal/cli"
	"github.com/aretw0/citywalk/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "citywalk",
	Short: "CityWalk plans themed city walks around you",
	Long: `CityWalk locates you, asks a generation service for a themed walking route
and walks you through its stops, from the terminal, over HTTP or as MCP tools.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	addPersistentFlags(rootCmd)
}

// addPersistentFlags declares the flags available to all commands.
func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (default: citywalk.yaml, citywalk.yml or citywalk.toml)")
	cmd.PersistentFlags().String("env-file", "", "Path of the .env file (default: ./.env)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().String("location", "", "Fixed position as \"lat,lng\" (skips geolocation)")
	cmd.PersistentFlags().String("model", "", "Generation model name")
	cmd.PersistentFlags().Bool("debug", false, "Shorthand for --log-level debug")
}

// loadConfig reads every configuration source and applies the flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	file, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(config.LoadOptions{File: file, EnvFile: envFile})
	if err != nil {
		return nil, nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("location") {
		raw, _ := cmd.Flags().GetString("location")
		loc, err := config.ParseCoordinates(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --location: %w", err)
		}
		cfg.SetStaticLocation(loc)
	}
	if cmd.Flags().Changed("model") {
		cfg.Model, _ = cmd.Flags().GetString("model")
	}

	// The API key is checked later, only by the hosts that generate.
	if err := cfg.Validate(false); err != nil {
		return nil, nil, err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	return cfg, cli.NewLogger(cfg, debug), nil
}
