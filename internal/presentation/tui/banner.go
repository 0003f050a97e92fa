package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"   ____ _ _        __        __    _ _    ",
	"  / ___(_) |_ _   _\\ \\      / /_ _| | | __",
	" | |   | | __| | | |\\ \\ /\\ / / _` | | |/ /",
	" | |___| | |_| |_| | \\ V  V / (_| | |   < ",
	"  \\____|_|\\__|\\__, |  \\_/\\_/ \\__,_|_|_|\\_\\",
	"              |___/                       ",
}

// Sunset palette, one color per line.
var bannerColors = []string{"#f59e0b", "#f97316", "#ef4444", "#ec4899", "#d946ef", "#a855f7"}

// PrintBanner writes the CityWalk banner and version to w. Colors are dropped when w is not a terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, out.String("  CityWalk 智行 v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
