package widget

import (
	"encoding/json"
	"io"
	"math"
	"slices"
)

// Snapshot is the plain-data form of a widget's persistent state. Its JSON
// encoding is the interchange format accepted by New and produced by
// Widget.State.
type Snapshot struct {
	ChartHeight          *float64      `json:"chartHeight"`
	InputTokenWidth      float64       `json:"inputTokenWidth"`
	CellWidth            float64       `json:"cellWidth"`
	MaxRows              *int          `json:"maxRows"`
	MaxTableWidth        *float64      `json:"maxTableWidth"`
	PlotMinLayer         float64       `json:"plotMinLayer"`
	ColorModes           []string      `json:"colorModes"`
	Title                string        `json:"title"`
	ColorIndex           int           `json:"colorIndex"`
	PinnedGroups         []Group       `json:"pinnedGroups"`
	LastPinnedGroupIndex *int          `json:"lastPinnedGroupIndex"`
	PinnedRows           []SnapshotRow `json:"pinnedRows"`
	HeatmapBaseColor     *string       `json:"heatmapBaseColor"`
	HeatmapNextColor     *string       `json:"heatmapNextColor"`
	DarkMode             *bool         `json:"darkMode"`

	// ColorMode is the legacy single-mode field, read but never written.
	ColorMode *string `json:"colorMode,omitempty"`
}

// SnapshotRow is a pinned row in a snapshot.
type SnapshotRow struct {
	Pos           int    `json:"pos"`
	LineStyleName string `json:"lineStyleName"`
}

// DecodeSnapshot reads a JSON snapshot.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// State exports the widget's persistent state.
func (w *Widget) State() Snapshot {
	st := &w.st

	groups := make([]Group, len(st.Groups))
	for i, g := range st.Groups {
		groups[i] = Group{Tokens: slices.Clone(g.Tokens), Color: g.Color}
	}
	rows := make([]SnapshotRow, len(st.Rows))
	for i, r := range st.Rows {
		rows[i] = SnapshotRow{Pos: r.Pos, LineStyleName: r.Style.Name()}
	}
	modes := slices.Clone(st.ColorModes)
	if modes == nil {
		modes = []string{}
	}
	last := st.LastGroup

	return Snapshot{
		ChartHeight:          clonePtr(st.ChartHeight),
		InputTokenWidth:      st.InputTokenWidth,
		CellWidth:            st.CellWidth,
		MaxRows:              clonePtr(st.MaxRows),
		MaxTableWidth:        clonePtr(st.MaxTableWidth),
		PlotMinLayer:         st.PlotMinLayer,
		ColorModes:           modes,
		Title:                st.Title,
		ColorIndex:           st.ColorIndex,
		PinnedGroups:         groups,
		LastPinnedGroupIndex: &last,
		PinnedRows:           rows,
		HeatmapBaseColor:     clonePtr(st.HeatmapBaseColor),
		HeatmapNextColor:     clonePtr(st.HeatmapNextColor),
		DarkMode:             clonePtr(st.DarkModeOverride),
	}
}

// restore seeds state from a snapshot, or from defaults when snap is nil.
// Every value is clamped or filtered so the resulting state satisfies the
// widget's invariants no matter what the snapshot contained.
func (w *Widget) restore(snap *Snapshot) {
	lim := w.limits()
	st := &w.st
	*st = State{
		InputTokenWidth: 100,
		CellWidth:       44,
		HoverPos:        w.nPositions() - 1,
		LastGroup:       -1,
		ColorModes:      []string{"top"},
		Title:           w.cfg.Title,
		Stride:          1,
	}
	if st.Title == "" {
		st.Title = DefaultTitle
	}

	if snap == nil {
		st.InputTokenWidth = clamp(st.InputTokenWidth, lim.MinInputWidth, lim.MaxInputWidth)
		st.CellWidth = clamp(st.CellWidth, lim.MinCellWidth, lim.MaxCellWidth)
		return
	}

	if snap.ChartHeight != nil && *snap.ChartHeight > 0 {
		h := clamp(*snap.ChartHeight, lim.MinChartHeight, lim.MaxChartHeight)
		st.ChartHeight = &h
	}
	if snap.InputTokenWidth != 0 {
		st.InputTokenWidth = snap.InputTokenWidth
	}
	st.InputTokenWidth = clamp(st.InputTokenWidth, lim.MinInputWidth, lim.MaxInputWidth)
	if snap.CellWidth != 0 {
		st.CellWidth = snap.CellWidth
	}
	st.CellWidth = clamp(st.CellWidth, lim.MinCellWidth, lim.MaxCellWidth)

	if snap.MaxRows != nil {
		rows := max(1, *snap.MaxRows)
		if rows < w.nPositions() {
			st.MaxRows = &rows
		}
	}
	if snap.MaxTableWidth != nil && !math.IsNaN(*snap.MaxTableWidth) {
		mtw := math.Max(*snap.MaxTableWidth, st.InputTokenWidth+lim.MinCellWidth+1)
		st.MaxTableWidth = &mtw
	}
	st.PlotMinLayer = w.clampPlotMinLayer(snap.PlotMinLayer)

	switch {
	case snap.ColorModes != nil:
		st.ColorModes = slices.Clone(snap.ColorModes)
	case snap.ColorMode != nil && *snap.ColorMode == "none":
		st.ColorModes = []string{}
	case snap.ColorMode != nil:
		st.ColorModes = []string{*snap.ColorMode}
	}

	if snap.Title != "" {
		st.Title = snap.Title
	}
	st.ColorIndex = max(0, snap.ColorIndex)

	// A token may only belong to one group, and groups are never empty.
	seen := map[string]bool{}
	for _, g := range snap.PinnedGroups {
		var tokens []string
		for _, t := range g.Tokens {
			if !seen[t] {
				seen[t] = true
				tokens = append(tokens, t)
			}
		}
		if len(tokens) == 0 {
			continue
		}
		st.Groups = append(st.Groups, Group{Tokens: tokens, Color: g.Color})
	}
	if snap.LastPinnedGroupIndex != nil {
		st.LastGroup = *snap.LastPinnedGroupIndex
	}
	if st.LastGroup >= len(st.Groups) || st.LastGroup < -1 {
		st.LastGroup = len(st.Groups) - 1
	}

	for _, r := range snap.PinnedRows {
		if r.Pos < 0 || r.Pos >= w.nPositions() || st.rowFor(r.Pos) >= 0 {
			continue
		}
		st.Rows = append(st.Rows, PinnedRow{Pos: r.Pos, Style: ParseLineStyle(r.LineStyleName)})
	}

	st.HeatmapBaseColor = nonEmpty(snap.HeatmapBaseColor)
	st.HeatmapNextColor = nonEmpty(snap.HeatmapNextColor)
	st.DarkModeOverride = clonePtr(snap.DarkMode)
}

func (w *Widget) clampPlotMinLayer(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(float64(w.nLayers()-2), v))
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return clonePtr(s)
}
