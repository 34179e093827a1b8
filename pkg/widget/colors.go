package widget

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	lightBackground = colorful.Color{R: 1, G: 1, B: 1}
	darkBackground  = colorful.Color{R: 30.0 / 255, G: 30.0 / 255, B: 30.0 / 255}
)

// TopMode is the color mode that shades cells by their top-1 probability.
const TopMode = "top"

// ProbToColor shades a heatmap cell. With a base color the cell blends from
// the background (white, or #1e1e1e in dark mode) toward base by prob;
// without one a blue gradient is used. The result is an "rgb(r,g,b)"
// string.
func ProbToColor(prob float64, base string, dark bool) string {
	return rgbString(ProbToRGB(prob, base, dark))
}

// ProbToRGB is ProbToColor for hosts that want the color itself.
func ProbToRGB(prob float64, base string, dark bool) colorful.Color {
	if base != "" {
		if c, err := colorful.Hex(base); err == nil {
			from := lightBackground
			if dark {
				from = darkBackground
			}
			return from.BlendRgb(c, prob)
		}
	}
	if dark {
		return rgb8(
			round8(30+(100-30)*prob*0.8),
			round8(30+(150-30)*prob*0.6),
			round8(30+(255-30)*prob))
	}
	return rgb8(
		round8(255*(1-prob*0.8)),
		round8(255*(1-prob*0.6)),
		255)
}

func rgb8(r, g, b int) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// TextColor picks a readable text color for a heatmap cell.
func TextColor(prob float64, dark, shaded bool) string {
	switch {
	case dark && (!shaded || prob < 0.7):
		return "#e0e0e0"
	case dark:
		return "#fff"
	case !shaded || prob < 0.5:
		return "#333"
	default:
		return "#fff"
	}
}

// Tint returns color at roughly 13% opacity (an "#rrggbb22" value), used
// behind pinned entries.
func Tint(color string) string {
	c, err := colorful.Hex(color)
	if err != nil {
		return color
	}
	return c.Hex() + "22"
}

func rgbString(c colorful.Color) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", round8(c.R*255), round8(c.G*255), round8(c.B*255))
}

func round8(v float64) int {
	return int(math.Max(0, math.Min(255, math.Round(v))))
}

// CellShade is the resolved coloring of one heatmap cell.
type CellShade struct {
	Background string
	// Fill is Background as a color.
	Fill colorful.Color
	Text string
	// Mode is the winning color mode, or "" when none won.
	Mode string
	Prob float64
	// Outline is the color of the group the cell is attributed to, if any.
	Outline string
}

// heatmapBase is the color of the "top" mode.
func (w *Widget) heatmapBase() string {
	if w.st.HeatmapBaseColor != nil {
		return *w.st.HeatmapBaseColor
	}
	return w.cfg.HeatmapBase
}

// heatmapNext is the color of a token mode whose token isn't pinned.
func (w *Widget) heatmapNext() string {
	if w.st.HeatmapNextColor != nil {
		return *w.st.HeatmapNextColor
	}
	return w.cfg.HeatmapNext
}

// ModeColor returns the color a color mode paints with.
func (w *Widget) ModeColor(mode string) string {
	if mode == TopMode {
		return w.heatmapBase()
	}
	if c, ok := w.ColorForToken(mode); ok {
		return c
	}
	return w.heatmapNext()
}

func modeProb(mode string, pos, layer int, w *Widget) float64 {
	c, ok := w.data.Cell(pos, layer)
	if !ok {
		return 0
	}
	if mode == TopMode {
		return c.Prob
	}
	for _, p := range c.TopK {
		if p.Token == mode {
			return p.Prob
		}
	}
	return 0
}

// WinningMode resolves which active color mode paints the cell. Modes are
// considered in the order they were added; the highest probability wins.
// "top" needs to strictly beat the running best, any other mode wins ties,
// and once "top" is winning any mode that matches it takes over.
func (w *Widget) WinningMode(pos, layer int) (string, float64) {
	var winner string
	var best float64
	for _, mode := range w.st.ColorModes {
		p := modeProb(mode, pos, layer, w)
		var wins bool
		switch {
		case winner == TopMode:
			wins = p >= best
		case mode == TopMode:
			wins = p > best
		default:
			wins = p >= best
		}
		if wins {
			winner, best = mode, p
		}
	}
	return winner, best
}

// Shade resolves the full coloring of the cell at (pos, layer).
func (w *Widget) Shade(pos, layer int) CellShade {
	dark := w.DarkMode()
	var shade CellShade

	if len(w.st.ColorModes) == 0 {
		shade.Background = "#fff"
		shade.Fill = lightBackground
		if dark {
			shade.Background = "#1e1e1e"
			shade.Fill = darkBackground
		}
		shade.Text = TextColor(0, dark, false)
	} else {
		mode, prob := w.WinningMode(pos, layer)
		var base string
		if mode != "" {
			base = w.ModeColor(mode)
		}
		shade.Mode = mode
		shade.Prob = prob
		shade.Fill = ProbToRGB(prob, base, dark)
		shade.Background = rgbString(shade.Fill)
		shade.Text = TextColor(prob, dark, true)
	}

	if c, ok := w.data.Cell(pos, layer); ok {
		if color, ok := w.ColorForToken(c.Token); ok {
			shade.Outline = color
		} else if g := w.winningGroupAt(pos, layer); g != nil {
			shade.Outline = g.Color
		}
	}
	return shade
}
