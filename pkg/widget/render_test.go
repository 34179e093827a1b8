package widget

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func byClass(n *html.Node, class string) []*html.Node {
	return findAll(n, func(n *html.Node) bool {
		v, _ := attr(n, "class")
		return slices.Contains(strings.Fields(v), class)
	})
}

func byTarget(n *html.Node, kind TargetKind) []*html.Node {
	return findAll(n, func(n *html.Node) bool {
		v, _ := attr(n, "data-target")
		return v == kind.String()
	})
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func TestRenderTable(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	root := w.Render()

	id, _ := attr(root, "id")
	assert.Equal(t, w.ID(), id)
	class, _ := attr(root, "class")
	assert.Equal(t, "ll-widget", class)

	assert.Len(t, byClass(root, "input-token"), 2)
	assert.Len(t, byClass(root, "layer-hdr"), 2)
	assert.Len(t, byClass(root, "pred-cell"), 4)
	assert.Equal(t, "showing all 2 layers", textOf(byClass(root, "resize-hint-main")[0]))

	title := byClass(root, "ll-title-text")
	require.Len(t, title, 1)
	assert.Equal(t, DefaultTitle, textOf(title[0]))

	assert.Empty(t, byClass(root, "popup"))
	assert.Empty(t, byClass(root, "color-menu"))
	assert.Empty(t, byClass(root, "ll-overlay"))
}

func TestRenderMaxRows(t *testing.T) {
	w := newWidget(t, wideData(4, 6), nil)
	w.st.MaxRows = ptr(2)
	root := w.Render()

	rows := byClass(root, "input-token")
	require.Len(t, rows, 2)
	assert.Equal(t, Target{Kind: TargetInputToken, Pos: 4}, TargetOf(rows[0]))
	// only the first visible row carries the input handle
	assert.Len(t, byTarget(root, TargetInputHandle), 2, "first row and corner header")
}

func TestRenderStrideHint(t *testing.T) {
	w := newWidget(t, wideData(32, 2), nil)
	w.SetColumnState(ColumnState{CellWidth: ptr(100.0)}, false)
	root := w.Render()
	assert.Equal(t, "showing every 5 layers ending at 31", textOf(byClass(root, "resize-hint-main")[0]))
	assert.Len(t, byClass(root, "layer-hdr"), 7)
	// column handles on the left half of the columns
	assert.Len(t, byTarget(root, TargetColumnHandle), 6)
}

func TestRenderPinnedRowAndChart(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	root := w.Render()
	assert.Empty(t, byClass(root, "max-tick"))
	assert.Empty(t, byClass(root, "trajectory"))

	w.TogglePinnedTrajectory(" dog", false)
	require.True(t, w.TogglePinnedRow(0))
	root = w.Render()

	pinned := byClass(root, "pinned-row")
	require.Len(t, pinned, 1)
	assert.Equal(t, 0, TargetOf(pinned[0]).Pos)
	assert.Len(t, byClass(root, "line-sample"), 1)

	ticks := byClass(root, "max-tick")
	require.Len(t, ticks, 1)
	assert.Equal(t, "50%", textOf(ticks[0]))
	assert.Len(t, byClass(root, "trajectory"), 1)
	assert.Len(t, findAll(root, func(n *html.Node) bool { return n.Data == "circle" }), 2)

	w.HoverCell(1, 1)
	root = w.Render()
	assert.Len(t, byClass(root, "trajectory"), 2)
	assert.Len(t, byClass(root, "hover-trajectory"), 1)
	assert.Equal(t, "100%", textOf(byClass(root, "max-tick")[0]))
	assert.Len(t, byClass(root, "hover-legend"), 1)
}

func TestRenderLegend(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	w.TogglePinnedTrajectory(" dog", false)
	w.TogglePinnedTrajectory(" sat", false)
	root := w.Render()
	assert.False(t, w.LegendByRow())
	assert.Len(t, byTarget(root, TargetLegendGroup), 2)
	assert.Empty(t, byClass(root, "legend-title"))

	w.RemoveGroup(1)
	w.TogglePinnedRow(0)
	w.TogglePinnedRow(1)
	root = w.Render()
	require.True(t, w.LegendByRow())
	assert.Len(t, byClass(root, "legend-title"), 1)
	closers := byTarget(root, TargetLegendRow)
	require.Len(t, closers, 2)
	assert.Equal(t, Target{Kind: TargetLegendRow, Index: 1}, TargetOf(closers[1]))
}

func TestRenderPopupAndOverlay(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	w.OpenPopup(0, 1)
	root := w.Render()

	require.Len(t, byClass(root, "popup"), 1)
	entries := byClass(root, "topk-item")
	require.Len(t, entries, 2)
	assert.Equal(t, Target{Kind: TargetPopupEntry, Index: 1}, TargetOf(entries[1]))
	assert.Len(t, byTarget(root, TargetPopupClose), 1)
	assert.Len(t, byClass(root, "ll-overlay"), 1)
	assert.Len(t, byClass(root, "selected"), 1)

	w.ClosePopup()
	root = w.Render()
	assert.Empty(t, byClass(root, "popup"))
	assert.Empty(t, byClass(root, "ll-overlay"))
}

func TestRenderMenu(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	w.ToggleColorMenu()
	root := w.Render()

	items := byClass(root, "color-menu-item")
	require.Len(t, items, len(w.MenuItems())+1)
	last := TargetOf(items[len(items)-1])
	assert.Equal(t, TargetMenuItem, last.Kind)
	assert.Equal(t, NoneMode, last.Mode)
	assert.Len(t, byClass(root, "color-swatch"), len(w.MenuItems()))
	assert.Len(t, byClass(root, "ll-overlay"), 1)
}

func TestRenderLayerTicks(t *testing.T) {
	w := newWidget(t, wideData(32, 2), nil)
	root := w.Render()

	draggable := byTarget(root, TargetLayerTick)
	require.NotEmpty(t, draggable)
	for _, n := range draggable {
		li := TargetOf(n).Layer
		assert.True(t, w.LayerDraggable(li), "layer %d", li)
		assert.NotEqual(t, 31, li)
	}
	assert.Len(t, byTarget(root, TargetXAxis), 1)
	assert.Len(t, byTarget(root, TargetYAxis), 1)
}

func TestRenderDarkMode(t *testing.T) {
	w := newWidgetIn(t, twoByTwo(), fakeEnv{dark: true})
	class, _ := attr(w.Render(), "class")
	assert.Equal(t, "ll-widget dark-mode", class)
}

func TestTargetOfWalksUp(t *testing.T) {
	w := newWidget(t, twoByTwo(), nil)
	root := w.Render()
	cells := byClass(root, "pred-cell")
	require.NotEmpty(t, cells)

	last := cells[len(cells)-1]
	want := Target{Kind: TargetPredCell, Pos: 1, Layer: 1}
	assert.Equal(t, want, TargetOf(last))
	require.NotNil(t, last.FirstChild)
	assert.Equal(t, want, TargetOf(last.FirstChild))
	assert.Equal(t, Target{}, TargetOf(root))
}

func TestTargetKindNames(t *testing.T) {
	for k := TargetPredCell; k <= TargetCapture; k++ {
		assert.Equal(t, k, ParseTargetKind(k.String()), k.String())
	}
	assert.Equal(t, "pred-cell", TargetPredCell.String())
	assert.Equal(t, TargetNone, ParseTargetKind("bogus"))
}

func TestWritePage(t *testing.T) {
	a := newWidget(t, twoByTwo(), nil)
	b := newWidget(t, promptData(), nil)

	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, "lens", a, b))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"), out[:20])
	assert.Contains(t, out, "<title>lens</title>")
	assert.Contains(t, out, `id="`+a.ID()+`"`)
	assert.Contains(t, out, `id="`+b.ID()+`"`)
	assert.Contains(t, out, "<svg")

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, byClass(doc, "ll-widget"), 2)
}
