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
	{`        _                 `, "#818cf8"},
	{`   __ _| |_ _ __ ___  ___ `, "#a78bfa"},
	{`  / _' | __| '__/ _ \/ _ \`, "#c084fc"},
	{` | (_| | |_| | |  __/  __/`, "#e879f9"},
	{`  \__, |\__|_|  \___|\___|`, "#f472b6"},
	{`     |_|                  `, "#fb7185"},
}

// PrintBanner writes the qtree ASCII banner to w using the color profile of
// the terminal behind w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()

	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}
