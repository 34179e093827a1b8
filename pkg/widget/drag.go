package widget

import "math"

// DragKind identifies one of the pointer-drag interactions.
type DragKind int

const (
	// DragColumn resizes layer columns from a column border.
	DragColumn DragKind = iota + 1
	// DragInputColumn resizes the input token column from its border.
	DragInputColumn
	// DragYAxis resizes the input token column from the chart's y-axis.
	DragYAxis
	// DragChartHeight resizes the chart from its x-axis.
	DragChartHeight
	// DragRows truncates the table from its bottom edge.
	DragRows
	// DragTableWidth constrains or widens the table from its right edge.
	DragTableWidth
	// DragLayerZoom zooms the chart's x-axis by dragging a layer tick.
	DragLayerZoom
)

var dragNames = map[DragKind]string{
	DragColumn:      "column-resize",
	DragInputColumn: "input-resize",
	DragYAxis:       "y-axis-resize",
	DragChartHeight: "chart-height-resize",
	DragRows:        "row-resize",
	DragTableWidth:  "table-width-resize",
	DragLayerZoom:   "layer-zoom",
}

func (k DragKind) String() string {
	return dragNames[k]
}

// drag is the in-flight state of the active drag.
type drag struct {
	kind   DragKind
	startX float64
	startY float64

	// start value of whatever is being dragged
	start float64

	// DragColumn
	col int

	// DragRows
	startRows *int

	// DragTableWidth
	hadMaxTableWidth bool

	// DragLayerZoom
	layer       int
	layerX      float64
	usableWidth float64
	dotRadius   float64
}

// Dragging returns the active drag kind, if any.
func (w *Widget) Dragging() (DragKind, bool) {
	if w.drag == nil {
		return 0, false
	}
	return w.drag.kind, true
}

// BeginDrag starts a drag at pointer position (x, y). index is the visible
// column index for DragColumn and the layer index for DragLayerZoom, and is
// ignored otherwise. Starting a drag closes any open popup or menu. Returns
// false, leaving both open, if another drag is active or the target can't
// be dragged.
func (w *Widget) BeginDrag(kind DragKind, x, y float64, index int) bool {
	if w.destroyed {
		return false
	}
	if w.drag != nil {
		w.logger.Debug("drag refused, another drag is active", "active", w.drag.kind, "requested", kind)
		return false
	}

	d := &drag{kind: kind, startX: x, startY: y}
	switch kind {
	case DragColumn:
		if index < 0 {
			return false
		}
		d.col = index
		d.start = w.st.CellWidth
	case DragInputColumn, DragYAxis:
		d.start = w.st.InputTokenWidth
	case DragChartHeight:
		d.start = w.EffectiveChartHeight()
	case DragRows:
		d.startRows = clonePtr(w.st.MaxRows)
	case DragTableWidth:
		d.start = w.TableWidth()
		d.hadMaxTableWidth = w.st.MaxTableWidth != nil
	case DragLayerZoom:
		if !w.LayerDraggable(index) {
			return false
		}
		chart := w.Chart()
		d.layer = index
		d.start = w.st.PlotMinLayer
		d.layerX = chart.LayerToX(float64(index))
		d.usableWidth = chart.UsableWidth
		d.dotRadius = chart.DotRadius
	default:
		return false
	}

	w.ClosePopup()
	w.CloseColorMenu()
	w.drag = d
	w.logger.Debug("drag started", "kind", kind, "x", x, "y", y)
	return true
}

// LayerDraggable reports whether the x-axis tick for layer can be dragged
// to zoom: any visible layer except the first layer and the last visible
// one.
func (w *Widget) LayerDraggable(layer int) bool {
	vis := w.st.VisibleLayers
	if layer <= 0 || len(vis) == 0 || layer == vis[len(vis)-1] {
		return false
	}
	for _, l := range vis {
		if l == layer {
			return true
		}
	}
	return false
}

// MoveDrag applies a pointer move to the active drag. Returns whether any
// state changed.
func (w *Widget) MoveDrag(x, y float64) bool {
	if w.destroyed || w.drag == nil {
		return false
	}
	d := w.drag
	dx := x - d.startX
	dy := y - d.startY
	lim := w.limits()

	switch d.kind {
	case DragInputColumn, DragYAxis:
		width := clamp(d.start+dx, lim.MinInputWidth, lim.MaxInputWidth)
		if width == w.st.InputTokenWidth {
			return false
		}
		w.st.InputTokenWidth = width
		w.relayout()
		w.notifyPeers()
		return true

	case DragColumn:
		// dragging the border of column n stretches all n+1 columns left of it
		width := clamp(d.start+dx/float64(d.col+1), lim.MinCellWidth, lim.MaxCellWidth)
		if math.Abs(width-w.st.CellWidth) <= 1 {
			return false
		}
		w.st.CellWidth = width
		w.relayout()
		w.notifyPeers()
		return true

	case DragChartHeight:
		height := clamp(d.start+dy, lim.MinChartHeight, lim.MaxChartHeight)
		if math.Abs(height-w.EffectiveChartHeight()) <= 2 {
			return false
		}
		w.st.ChartHeight = &height
		return true

	case DragRows:
		return w.moveRows(d, dy)

	case DragTableWidth:
		return w.moveTableWidth(d, dx)

	case DragLayerZoom:
		return w.moveLayerZoom(d, dx)
	}
	return false
}

func (w *Widget) moveRows(d *drag, dy float64) bool {
	total := w.nPositions()
	delta := int(math.Round(dy / w.rowHeight()))

	startRows := total
	if d.startRows != nil {
		startRows = *d.startRows
	}
	rows := max(1, min(total, startRows+delta))

	var next *int
	if rows < total {
		next = &rows
	}
	if equalPtr(next, w.st.MaxRows) {
		return false
	}
	w.st.MaxRows = next
	return true
}

func (w *Widget) moveTableWidth(d *drag, dx float64) bool {
	lim := w.limits()
	target := d.start + dx

	if dx < 0 {
		// inward: constrain the table, keep the cell width, let stride
		// hide layers
		target = math.Max(w.st.InputTokenWidth+lim.MinCellWidth+1, target)
		if !d.hadMaxTableWidth && target >= d.start {
			w.st.MaxTableWidth = nil
		} else {
			w.st.MaxTableWidth = &target
		}
		w.relayout()
		w.notifyPeers()
		return true
	}

	// outward: grow toward the container and widen the cells to fill it
	actual := w.actualContainerWidth()
	target = math.Min(target, actual)
	if target >= actual-w.st.CellWidth {
		w.st.MaxTableWidth = nil
	} else {
		w.st.MaxTableWidth = &target
	}

	cols := len(w.st.VisibleLayers)
	if cols == 0 {
		return true
	}
	avail := target - w.st.InputTokenWidth - 1
	width := avail / float64(cols)
	if width > lim.MaxCellWidth && cols < w.nLayers() {
		cols++
		width = avail / float64(cols)
	}
	width = clamp(width, lim.MinCellWidth, lim.MaxCellWidth)

	threshold := 0.5 / float64(max(1, cols))
	if math.Abs(width-w.st.CellWidth) > threshold {
		w.st.CellWidth = width
		w.relayout()
		w.notifyPeers()
	}
	return true
}

func (w *Widget) moveLayerZoom(d *drag, dx float64) bool {
	dr, uw := d.dotRadius, d.usableWidth
	if uw-2*dr <= 0 {
		return false
	}
	targetX := clamp(d.layerX+dx, dr, uw-dr)

	// invert layerToX for the minimum layer that puts d.layer at targetX
	t := (targetX - dr) / (uw - 2*dr)
	if math.Abs(t-1) < 0.001 {
		return false
	}
	last := float64(w.nLayers() - 1)
	minLayer := (t*last - float64(d.layer)) / (t - 1)
	minLayer = math.Max(0, math.Min(float64(d.layer)-0.1, minLayer))
	minLayer = w.clampPlotMinLayer(minLayer)

	if math.Abs(minLayer-w.st.PlotMinLayer) <= 0.01 {
		return false
	}
	w.st.PlotMinLayer = minLayer
	return true
}

// EndDrag finishes whatever drag is active. Hosts call it for a pointer-up
// anywhere, not only over the original handle.
func (w *Widget) EndDrag() {
	if w.drag == nil {
		return
	}
	w.logger.Debug("drag ended", "kind", w.drag.kind)
	w.drag = nil
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
