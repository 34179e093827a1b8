package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbToColor(t *testing.T) {
	assert.Equal(t, "rgb(255,255,255)", ProbToColor(0, "#8844ff", false))
	assert.Equal(t, "rgb(136,68,255)", ProbToColor(1, "#8844ff", false))
	assert.Equal(t, "rgb(184,143,255)", ProbToColor(0.6, "#8844ff", false))
	assert.Equal(t, "rgb(30,30,30)", ProbToColor(0, "#8844ff", true))
	assert.Equal(t, "rgb(128,128,128)", ProbToColor(0.5, "#000000", false))
}

func TestProbToColorDefaultGradient(t *testing.T) {
	assert.Equal(t, "rgb(255,255,255)", ProbToColor(0, "", false))
	assert.Equal(t, "rgb(51,102,255)", ProbToColor(1, "", false))
	assert.Equal(t, "rgb(30,30,30)", ProbToColor(0, "", true))
	assert.Equal(t, "rgb(86,102,255)", ProbToColor(1, "", true))

	// unparseable base colors fall back to the gradient
	assert.Equal(t, "rgb(51,102,255)", ProbToColor(1, "nope", false))
}

func TestTextColor(t *testing.T) {
	assert.Equal(t, "#fff", TextColor(0.8, false, true))
	assert.Equal(t, "#333", TextColor(0.4, false, true))
	assert.Equal(t, "#333", TextColor(0.9, false, false))
	assert.Equal(t, "#fff", TextColor(0.8, true, true))
	assert.Equal(t, "#e0e0e0", TextColor(0.5, true, true))
	assert.Equal(t, "#e0e0e0", TextColor(0.9, true, false))
}

func TestTint(t *testing.T) {
	assert.Equal(t, "#2196f322", Tint("#2196F3"))
	assert.Equal(t, "bogus", Tint("bogus"))
}

func TestWinningMode(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)

	w.st.ColorModes = []string{TopMode}
	mode, p := w.WinningMode(0, 1)
	assert.Equal(t, TopMode, mode)
	assert.Equal(t, 0.5, p)

	// a token mode matching the top-1 takes over from "top" in either order
	w.st.ColorModes = []string{" dog", TopMode}
	mode, _ = w.WinningMode(0, 1)
	assert.Equal(t, " dog", mode)
	w.st.ColorModes = []string{TopMode, " dog"}
	mode, _ = w.WinningMode(0, 1)
	assert.Equal(t, " dog", mode)

	// a weaker token mode loses to "top"
	w.st.ColorModes = []string{TopMode, " cat"}
	mode, p = w.WinningMode(0, 1)
	assert.Equal(t, TopMode, mode)
	assert.Equal(t, 0.5, p)

	// a token missing from the top-k still wins with nothing to beat
	w.st.ColorModes = []string{" cat"}
	mode, p = w.WinningMode(0, 0)
	assert.Equal(t, " cat", mode)
	assert.Zero(t, p)

	w.st.ColorModes = nil
	mode, _ = w.WinningMode(0, 0)
	assert.Empty(t, mode)
}

func TestShade(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)

	s := w.Shade(1, 1)
	assert.Equal(t, TopMode, s.Mode)
	assert.Equal(t, "rgb(184,143,255)", s.Background)
	assert.Equal(t, "#fff", s.Text)
	assert.Empty(t, s.Outline)

	w.TogglePinnedTrajectory(" sat", false)
	s = w.Shade(1, 1)
	assert.Equal(t, "#2196F3", s.Outline)
	// the pinned token's mode now paints with the group color
	assert.Equal(t, "#2196F3", w.ModeColor(" sat"))
	assert.Equal(t, "#cc6622", w.ModeColor(" ran"))
}

func TestShadeWithoutModes(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	w.st.ColorModes = nil
	s := w.Shade(0, 0)
	assert.Equal(t, "#fff", s.Background)
	assert.Equal(t, "#333", s.Text)

	dark := newWidgetIn(t, twoByTwo(), fakeEnv{dark: true})
	dark.st.ColorModes = nil
	s = dark.Shade(0, 0)
	assert.Equal(t, "#1e1e1e", s.Background)
	assert.Equal(t, "#e0e0e0", s.Text)
}

func TestDarkModeOverride(t *testing.T) {
	w := newWidgetIn(t, twoByTwo(), fakeEnv{dark: true})
	assert.True(t, w.DarkMode())
	w.SetDarkMode(ptr(false))
	assert.False(t, w.DarkMode())
	w.SetDarkMode(nil)
	assert.True(t, w.DarkMode())
}
