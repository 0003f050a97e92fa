package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Theme labels offered by the preference screen.
const (
	ThemeTrending = "网红打卡"
	ThemeCoffee   = "咖啡闲逛"
	ThemeHistory  = "人文历史"
	ThemeNight    = "夜游探索"
)

// Duration labels offered by the preference screen.
const (
	DurationShort  = "短途 (< 1小时)"
	DurationMedium = "适中 (1-2小时)"
	DurationLong   = "深度 (3小时+)"
)

// Themes lists the theme catalog in display order.
var Themes = []string{ThemeTrending, ThemeCoffee, ThemeHistory, ThemeNight}

// Durations lists the duration catalog in display order.
var Durations = []string{DurationShort, DurationMedium, DurationLong}

// UserPreferences holds the two selections sent to the route generator.
type UserPreferences struct {
	Theme    string `json:"theme" mapstructure:"theme"`
	Duration string `json:"duration" mapstructure:"duration"`
}

// DefaultPreferences returns the selection pre-filled on the preference screen.
func DefaultPreferences() UserPreferences {
	return UserPreferences{Theme: ThemeTrending, Duration: DurationMedium}
}

// Validate checks the selections. With allowCustom, any non-blank label is accepted;
// otherwise both labels must come from the catalogs.
func (p UserPreferences) Validate(allowCustom bool) error {
	if strings.TrimSpace(p.Theme) == "" || strings.TrimSpace(p.Duration) == "" {
		return fmt.Errorf("%w: theme and duration are required", ErrInvalidPreferences)
	}
	if allowCustom {
		return nil
	}
	if !slices.Contains(Themes, p.Theme) {
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidPreferences, p.Theme)
	}
	if !slices.Contains(Durations, p.Duration) {
		return fmt.Errorf("%w: unknown duration %q", ErrInvalidPreferences, p.Duration)
	}
	return nil
}

// ResolveChoice maps a menu answer to a catalog entry. It accepts a 1-based index
// or the label itself; ok is false when nothing matches.
func ResolveChoice(catalog []string, answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", false
	}
	if idx, err := strconv.Atoi(answer); err == nil {
		if idx >= 1 && idx <= len(catalog) {
			return catalog[idx-1], true
		}
		return "", false
	}
	for _, c := range catalog {
		if strings.EqualFold(c, answer) {
			return c, true
		}
	}
	return "", false
}
