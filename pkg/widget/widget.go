// Package widget implements the logit lens widget: its state, the layout
// engine, pointer-drag interactions, token grouping and row pinning, widget
// linking, snapshot serialization, and an HTML/SVG renderer.
//
// A Widget is driven by one event loop at a time. Hosts deliver pointer and
// keyboard events through Handle (or a Host dispatcher), then call Render.
package widget

import (
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vito/logitlens/pkg/lens"
)

// Environment is what a widget needs to know about where it is displayed.
// Zero values mean "not measured" and fall back to defaults.
type Environment interface {
	// ContainerWidth is the measured width of the widget's container.
	ContainerWidth() float64
	// RowHeight is the measured height of one table row.
	RowHeight() float64
	// DarkScheme reports whether the host prefers a dark color scheme.
	DarkScheme() bool
}

// Options configure a new Widget.
type Options struct {
	Config *Config
	Env    Environment
	Logger *slog.Logger
}

// Widget is one live logit lens visualization.
type Widget struct {
	id     string
	data   *lens.Data
	cfg    Config
	env    Environment
	logger *slog.Logger

	st   State
	drag *drag

	// Captured is true while a popup or menu has installed its
	// full-viewport capture layer.
	captured bool
	// swallowClick drops the click that follows a dismissing pointer-down.
	swallowClick bool

	peers   []ColumnPeer
	syncing bool

	destroyed bool
}

// New creates a widget over data, optionally restoring a snapshot.
func New(data *lens.Data, snap *Snapshot, opts Options) (*Widget, error) {
	if data == nil || data.NumLayers() == 0 || data.NumPositions() == 0 {
		return nil, errors.New("widget needs at least one layer and one position")
	}

	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := "ll_" + uuid.NewString()
	w := &Widget{
		id:     id,
		data:   data,
		cfg:    cfg,
		env:    opts.Env,
		logger: logger.With("widget", id),
	}
	w.restore(snap)
	w.relayout()

	return w, nil
}

// ID is the widget's unique instance id.
func (w *Widget) ID() string {
	return w.id
}

// Data returns the model the widget renders.
func (w *Widget) Data() *lens.Data {
	return w.data
}

// Peek exposes the live state for read-only inspection (debug dumps and
// hosts drawing their own view). Callers must not mutate it.
func (w *Widget) Peek() *State {
	return &w.st
}

// Destroy detaches the widget from its peers and makes every later
// mutation a no-op.
func (w *Widget) Destroy() {
	if w.destroyed {
		return
	}
	for _, p := range slices.Clone(w.peers) {
		p.UnlinkColumns(w)
		w.UnlinkColumns(p)
	}
	w.drag = nil
	w.captured = false
	w.destroyed = true
	w.logger.Debug("destroyed")
}

// Destroyed reports whether Destroy has been called.
func (w *Widget) Destroyed() bool {
	return w.destroyed
}

func (w *Widget) nLayers() int {
	return w.data.NumLayers()
}

func (w *Widget) nPositions() int {
	return w.data.NumPositions()
}

func (w *Widget) limits() Limits {
	return w.cfg.Limits
}

// actualContainerWidth is the measured container width, ignoring any
// table width constraint.
func (w *Widget) actualContainerWidth() float64 {
	if w.env != nil {
		if cw := w.env.ContainerWidth(); cw > 0 {
			return cw
		}
	}
	return w.cfg.ContainerWidth
}

// ContainerWidth is the width the table may use: the container width,
// narrowed by MaxTableWidth when set.
func (w *Widget) ContainerWidth() float64 {
	actual := w.actualContainerWidth()
	if w.st.MaxTableWidth != nil {
		return math.Min(*w.st.MaxTableWidth, actual)
	}
	return actual
}

// TableWidth is the laid out width of the table: the input column, a
// one pixel border, and the visible layer columns.
func (w *Widget) TableWidth() float64 {
	return w.st.InputTokenWidth + 1 + float64(len(w.st.VisibleLayers))*w.st.CellWidth
}

func (w *Widget) rowHeight() float64 {
	if w.env != nil {
		if h := w.env.RowHeight(); h > 0 {
			return h
		}
	}
	return w.FontSize().ContentPx() * 2
}

// EffectiveChartHeight is the explicit chart height, or one derived from
// the row height and font size.
func (w *Widget) EffectiveChartHeight() float64 {
	if w.st.ChartHeight != nil {
		return *w.st.ChartHeight
	}
	var measured float64
	if w.env != nil {
		measured = w.env.RowHeight()
	}
	return DefaultChartHeight(w.FontSize().ContentPx(), measured)
}

// Chart returns the current chart geometry.
func (w *Widget) Chart() Chart {
	fs := w.FontSize().ContentPx()
	m := ChartMargin(fs)
	height := w.EffectiveChartHeight()
	inner := w.TableWidth() - w.st.InputTokenWidth
	scale := fs / 10
	return Chart{
		Height:       height,
		InnerWidth:   inner,
		InnerHeight:  height - m.Top - m.Bottom,
		Margin:       m,
		FontScale:    scale,
		DotRadius:    3 * scale,
		UsableWidth:  inner - m.Right,
		nLayers:      w.nLayers(),
		plotMinLayer: w.st.PlotMinLayer,
	}
}

// relayout recomputes the cached visible layers and stride.
func (w *Widget) relayout() {
	v := ComputeVisibleLayers(w.nLayers(), w.st.InputTokenWidth, w.st.CellWidth, w.ContainerWidth())
	w.st.VisibleLayers = v.Indices
	w.st.Stride = v.Stride
}

// DarkMode reports the effective color scheme: the override if set,
// otherwise the host's preference.
func (w *Widget) DarkMode() bool {
	if w.st.DarkModeOverride != nil {
		return *w.st.DarkModeOverride
	}
	return w.env != nil && w.env.DarkScheme()
}

// SetDarkMode overrides the color scheme; nil returns to auto-detection.
func (w *Widget) SetDarkMode(dark *bool) {
	if w.destroyed {
		return
	}
	if dark == nil {
		w.st.DarkModeOverride = nil
	} else {
		v := *dark
		w.st.DarkModeOverride = &v
	}
}

// FontSize returns the effective font sizes.
func (w *Widget) FontSize() FontSize {
	fs := w.cfg.FontSize
	def := DefaultFontSize()
	if fs.Title == "" {
		fs.Title = def.Title
	}
	if fs.Content == "" {
		fs.Content = def.Content
	}
	if w.st.FontSize.Title != "" {
		fs.Title = w.st.FontSize.Title
	}
	if w.st.FontSize.Content != "" {
		fs.Content = w.st.FontSize.Content
	}
	return fs
}

// SetFontSize overrides the title and/or content font size. nil, or a
// value with neither field set, restores the defaults.
func (w *Widget) SetFontSize(fs *FontSize) {
	if w.destroyed {
		return
	}
	if fs == nil || (fs.Title == "" && fs.Content == "") {
		w.st.FontSize = FontSize{}
		return
	}
	if fs.Title != "" {
		w.st.FontSize.Title = fs.Title
	}
	if fs.Content != "" {
		w.st.FontSize.Content = fs.Content
	}
}
