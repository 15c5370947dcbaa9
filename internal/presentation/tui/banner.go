package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                 _                                `, "#34d399"},
	{` _ __ ___   ___| |_ __ _ _ __ ___   __ _ _______ `, "#2dd4bf"},
	{`| '_ ' _ \ / _ \ __/ _' | '_ ' _ \ / _' |_  / _ \`, "#22d3ee"},
	{`| | | | | |  __/ || (_| | | | | | | (_| |/ /  __/`, "#38bdf8"},
	{`|_| |_| |_|\___|\__\__,_|_| |_| |_|\__,_/___\___|`, "#60a5fa"},
}

// PrintBanner writes the metamaze banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Highlight colors s for a terminal: goals green, blocked doors red.
func Highlight(s string, good bool) string {
	p := termenv.ColorProfile()
	color := "#f87171"
	if good {
		color = "#34d399"
	}
	return termenv.String(s).Foreground(p.Color(color)).Bold().String()
}
