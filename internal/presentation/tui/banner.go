package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"             _",
	"   __ _ _ __| |__   ___  _ __",
	"  / _` | '__| '_ \\ / _ \\| '__|",
	" | (_| | |  | |_) | (_) | |",
	"  \\__,_|_|  |_.__/ \\___/|_|",
}

// Green-to-teal, one shade per line.
var bannerColors = []string{"#4ade80", "#34d399", "#2dd4bf", "#22d3ee", "#38bdf8"}

// PrintBanner writes the arbor banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, termenv.String("  prompt tree explorer "+version).Faint())
	fmt.Fprintln(w)
}
