package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the tether banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.Profile

	lines := []struct {
		text  string
		color string
	}{
		{"  _        _   _", "#34d399"},
		{" | |_ ___ | |_| |__   ___ _ __", "#2dd4bf"},
		{" | __/ _ \\| __| '_ \\ / _ \\ '__|", "#22d3ee"},
		{" | ||  __/| |_| | | |  __/ |", "#38bdf8"},
		{"  \\__\\___| \\__|_| |_|\\___|_|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
