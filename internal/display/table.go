// Package display renders weather readings for the terminal.
package display

import (
	"bufio"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"

	"github.com/i474232898/weather-cli/internal/weather"
)

const (
	cellWidth = 7
	border    = "+-------------------------------------------------+"
	header    = "|  Date   |  Time   |  Temp   | Weather |  Wind   |"
)

// Table writes readings as a bordered table, one row per reading, in order.
// Cells are padded to a fixed display width; longer values widen their row.
func Table(w io.Writer, readings []weather.Reading) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(border + "\n")
	bw.WriteString(header + "\n")
	for _, r := range readings {
		bw.WriteString(border + "\n")
		bw.WriteString(row(
			r.Date,
			r.Time,
			formatFloat(r.Temperature),
			r.Description,
			formatFloat(r.WindSpeed),
		))
	}
	bw.WriteString(border + "\n")

	return bw.Flush()
}

func row(cells ...string) string {
	out := "|"
	for _, c := range cells {
		out += " " + runewidth.FillRight(c, cellWidth) + " |"
	}
	return out + "\n"
}

// formatFloat prints the shortest representation: 12 rather than 12.000000.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
