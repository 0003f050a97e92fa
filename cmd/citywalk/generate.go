package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/citywalk/internal/cli"
	"github.com/aretw0/citywalk/internal/presentation/tui"
	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/runner"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one route and print it",
	Long: `Locates you (or uses --location), asks the generation service for a route and prints it.
--theme and --duration take a catalog label or its 1-based index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		if format != "json" && format != "markdown" {
			return fmt.Errorf("unknown format: %s. Supported: json, markdown", format)
		}

		theme, _ := cmd.Flags().GetString("theme")
		duration, _ := cmd.Flags().GetString("duration")
		prefs, err := resolvePreferences(theme, duration)
		if err != nil {
			return err
		}
		if err := prefs.Validate(cfg.AllowCustom); err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		app, err := cli.NewApp(ctx, cfg, logger, cli.AppOptions{})
		if err != nil {
			return err
		}

		loc, err := app.Planner.Locate(ctx)
		if err != nil {
			return err
		}
		logger.Debug("located", "location", loc.String())

		route, err := app.Planner.Generate(ctx, loc, prefs)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if format == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(route)
		}

		md := runner.RouteMarkdown(route)
		if f, ok := out.(*os.File); ok && tui.IsTerminal(f) {
			if render, err := tui.NewRenderer(tui.Width(f)); err == nil {
				if styled, err := render(md); err == nil {
					md = styled
				}
			}
		}
		_, err = fmt.Fprintln(out, md)
		return err
	},
}

// resolvePreferences maps indexes or case-insensitive labels to catalog entries.
// Anything else is kept as a sanitized free-text label.
func resolvePreferences(theme, duration string) (domain.UserPreferences, error) {
	var prefs domain.UserPreferences
	var err error
	if prefs.Theme, err = resolveLabel(domain.Themes, theme); err != nil {
		return prefs, err
	}
	prefs.Duration, err = resolveLabel(domain.Durations, duration)
	return prefs, err
}

func resolveLabel(catalog []string, answer string) (string, error) {
	if label, ok := domain.ResolveChoice(catalog, answer); ok {
		return label, nil
	}
	return runner.SanitizeLabel(answer)
}

func init() {
	rootCmd.AddCommand(generateCmd)

	defaults := domain.DefaultPreferences()
	generateCmd.Flags().String("theme", defaults.Theme, "Walk theme")
	generateCmd.Flags().String("duration", defaults.Duration, "Walk duration")
	generateCmd.Flags().String("format", "markdown", "Output format: json or markdown")
}
