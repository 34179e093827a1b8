package termview

import (
	"slices"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// reset ends any style left open by a cut through a styled span.
const reset = "\x1b[m"

// overlay draws box over base with its top-left corner at column x of line
// y, keeping whatever of base shows on either side.
func overlay(base, box []string, x, y int) []string {
	out := slices.Clone(base)
	for len(out) < y+len(box) {
		out = append(out, "")
	}
	for i, line := range box {
		row := out[y+i]
		if w := ansi.StringWidth(row); w < x {
			row += strings.Repeat(" ", x-w)
		}
		left := ansi.Truncate(row, x, "")
		right := ansi.TruncateLeft(row, x+ansi.StringWidth(line), "")
		out[y+i] = left + reset + line + reset + right
	}
	return out
}
