package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnDrag(t *testing.T) {
	w := newWidget(t, wideData(32, 3), nil)

	require.True(t, w.BeginDrag(DragColumn, 0, 0, 1))
	// the second column's border stretches two columns
	assert.True(t, w.MoveDrag(20, 0))
	assert.Equal(t, 54.0, w.st.CellWidth)

	assert.False(t, w.MoveDrag(21, 0), "sub-pixel changes are ignored")
	assert.Equal(t, 54.0, w.st.CellWidth)

	w.MoveDrag(10000, 0)
	assert.Equal(t, 200.0, w.st.CellWidth)
	w.MoveDrag(-10000, 0)
	assert.Equal(t, 10.0, w.st.CellWidth)

	w.EndDrag()
	_, dragging := w.Dragging()
	assert.False(t, dragging)
	assert.False(t, w.MoveDrag(50, 0))
}

func TestColumnDragRelayouts(t *testing.T) {
	w := newWidget(t, wideData(32, 3), nil)
	require.Len(t, w.st.VisibleLayers, 18)

	w.BeginDrag(DragColumn, 0, 0, 0)
	w.MoveDrag(56, 0)
	// floor(799/100) = 7 columns
	assert.Equal(t, 100.0, w.st.CellWidth)
	assert.Len(t, w.st.VisibleLayers, 7)
	assert.Equal(t, 31, w.st.VisibleLayers[6])
}

func TestInputColumnDrag(t *testing.T) {
	for _, kind := range []DragKind{DragInputColumn, DragYAxis} {
		t.Run(kind.String(), func(t *testing.T) {
			w := newWidget(t, twoByTwo(), nil)
			require.True(t, w.BeginDrag(kind, 10, 10, 0))

			w.MoveDrag(30, 10)
			assert.Equal(t, 120.0, w.st.InputTokenWidth)
			w.MoveDrag(-1000, 10)
			assert.Equal(t, 40.0, w.st.InputTokenWidth)
			w.MoveDrag(1000, 10)
			assert.Equal(t, 200.0, w.st.InputTokenWidth)
		})
	}
}

func TestChartHeightDrag(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	require.Equal(t, 157.0, w.EffectiveChartHeight())

	require.True(t, w.BeginDrag(DragChartHeight, 0, 0, 0))
	assert.False(t, w.MoveDrag(0, 1))
	assert.Nil(t, w.st.ChartHeight)

	assert.True(t, w.MoveDrag(0, 50))
	assert.Equal(t, 207.0, w.EffectiveChartHeight())

	w.MoveDrag(0, 1000)
	assert.Equal(t, 400.0, w.EffectiveChartHeight())
	w.MoveDrag(0, -1000)
	assert.Equal(t, 60.0, w.EffectiveChartHeight())
}

func TestRowDrag(t *testing.T) {
	w := newWidget(t, wideData(4, 6), nil)

	require.True(t, w.BeginDrag(DragRows, 0, 0, 0))
	assert.True(t, w.MoveDrag(0, -45))
	assert.Equal(t, ptr(4), w.st.MaxRows)
	assert.Equal(t, []int{2, 3, 4, 5}, w.VisiblePositions())

	w.MoveDrag(0, -1000)
	assert.Equal(t, ptr(1), w.st.MaxRows)

	w.MoveDrag(0, 1000)
	assert.Nil(t, w.st.MaxRows, "showing every row stores no limit")
	assert.Len(t, w.VisiblePositions(), 6)
}

func TestRowDragUsesMeasuredRowHeight(t *testing.T) {
	w := newWidgetIn(t, wideData(4, 6), fakeEnv{row: 30})
	w.BeginDrag(DragRows, 0, 0, 0)
	w.MoveDrag(0, -59)
	assert.Equal(t, ptr(4), w.st.MaxRows)
}

func TestTableWidthDrag(t *testing.T) {
	w := newWidget(t, wideData(32, 3), nil)
	require.Equal(t, 893.0, w.TableWidth())

	// inward: constrain the table and let the stride hide layers
	require.True(t, w.BeginDrag(DragTableWidth, 0, 0, 0))
	w.MoveDrag(-200, 0)
	assert.Equal(t, ptr(693.0), w.st.MaxTableWidth)
	assert.Equal(t, 44.0, w.st.CellWidth)
	assert.Len(t, w.st.VisibleLayers, 13)
	assert.Equal(t, 2, w.st.Stride)
	w.EndDrag()

	// outward to the container edge: unconstrained, cells widen to fill
	require.True(t, w.BeginDrag(DragTableWidth, 0, 0, 0))
	w.MoveDrag(1000, 0)
	assert.Nil(t, w.st.MaxTableWidth)
	assert.InDelta(t, 799.0/13, w.st.CellWidth, 1e-9)
	w.EndDrag()
}

func TestTableWidthDragInwardFloor(t *testing.T) {
	w := newWidget(t, wideData(32, 3), nil)
	w.BeginDrag(DragTableWidth, 0, 0, 0)
	w.MoveDrag(-5000, 0)
	// input column, one minimum cell, one border
	assert.Equal(t, ptr(111.0), w.st.MaxTableWidth)
	assert.Len(t, w.st.VisibleLayers, 1)
}

func TestLayerZoomDrag(t *testing.T) {
	w := newWidget(t, wideData(32, 3), nil)
	chart := w.Chart()
	start := chart.LayerToX(16)

	assert.False(t, w.BeginDrag(DragLayerZoom, 0, 0, 31), "the last tick is fixed")
	assert.False(t, w.BeginDrag(DragLayerZoom, 0, 0, 0), "layer 0 is fixed")
	assert.False(t, w.BeginDrag(DragLayerZoom, 0, 0, 3), "layer 3 isn't visible")

	require.True(t, w.BeginDrag(DragLayerZoom, 0, 0, 16))
	assert.True(t, w.MoveDrag(-200, 0))
	assert.InDelta(t, 10.747, w.st.PlotMinLayer, 0.01)
	// the dragged layer follows the pointer
	assert.InDelta(t, start-200, w.Chart().LayerToX(16), 1e-6)

	assert.False(t, w.MoveDrag(10000, 0), "dragging onto the last layer does nothing")
	w.EndDrag()
}

func TestLayerZoomClamps(t *testing.T) {
	w := newWidget(t, wideData(32, 3), nil)
	require.True(t, w.BeginDrag(DragLayerZoom, 0, 0, 16))
	w.MoveDrag(-10000, 0)
	assert.LessOrEqual(t, w.st.PlotMinLayer, 15.9)
	assert.GreaterOrEqual(t, w.st.PlotMinLayer, 0.0)
}

func TestOneDragAtATime(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	require.True(t, w.BeginDrag(DragChartHeight, 0, 0, 0))
	assert.False(t, w.BeginDrag(DragInputColumn, 0, 0, 0))

	kind, ok := w.Dragging()
	require.True(t, ok)
	assert.Equal(t, DragChartHeight, kind)
}

func TestDragClosesPopupAndMenu(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	w.OpenPopup(0, 0)
	w.BeginDrag(DragYAxis, 0, 0, 0)
	assert.Nil(t, w.st.OpenPopup)
	w.EndDrag()

	w.ToggleColorMenu()
	w.BeginDrag(DragRows, 0, 0, 0)
	assert.False(t, w.st.MenuOpen)
	assert.False(t, w.CaptureActive())
}

func TestRefusedDragKeepsPopupAndMenu(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	w.OpenPopup(0, 0)
	require.NotNil(t, w.st.OpenPopup)

	assert.False(t, w.BeginDrag(DragColumn, 0, 0, -1))
	assert.False(t, w.BeginDrag(DragLayerZoom, 0, 0, 99))
	assert.False(t, w.BeginDrag(DragKind(-1), 0, 0, 0))
	assert.NotNil(t, w.st.OpenPopup)

	w.ClosePopup()
	w.ToggleColorMenu()
	require.True(t, w.st.MenuOpen)
	assert.False(t, w.BeginDrag(DragColumn, 0, 0, -1))
	assert.True(t, w.st.MenuOpen)
	assert.True(t, w.CaptureActive())

	_, dragging := w.Dragging()
	assert.False(t, dragging)
}

func TestPointerEventsDriveDrags(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	require.True(t, w.Handle(Event{Kind: PointerDown, Target: Target{Kind: TargetXAxis}, X: 5, Y: 100}))
	require.True(t, w.Handle(Event{Kind: PointerMove, X: 5, Y: 140}))
	assert.Equal(t, 197.0, w.EffectiveChartHeight())

	// the pointer-up can land anywhere
	assert.True(t, w.Handle(Event{Kind: PointerUp}))
	assert.False(t, w.Handle(Event{Kind: PointerUp}))
}

func TestDragKindNames(t *testing.T) {
	assert.Equal(t, "column-resize", DragColumn.String())
	assert.Equal(t, "y-axis-resize", DragYAxis.String())
	assert.Equal(t, "layer-zoom", DragLayerZoom.String())
}
