package widget

import (
	"fmt"
	"math"
)

// Visible is the result of fitting layer columns into a width.
type Visible struct {
	Stride  int
	Indices []int
}

// ComputeVisibleLayers picks which layer columns fit into availableWidth
// given the input column and per-cell widths. When not all layers fit, it
// keeps every stride-th layer counting back from the last one, so the
// final layer is always shown and every gap equals the stride.
func ComputeVisibleLayers(nLayers int, inputWidth, cellWidth, availableWidth float64) Visible {
	maxCols := 1
	if cellWidth > 0 {
		maxCols = max(1, int(math.Floor((availableWidth-inputWidth-1)/cellWidth)))
	}

	if maxCols >= nLayers {
		indices := make([]int, nLayers)
		for i := range indices {
			indices[i] = i
		}
		return Visible{Stride: 1, Indices: indices}
	}

	stride := nLayers
	if maxCols > 1 {
		stride = max(1, (nLayers-1)/(maxCols-1))
	}

	var indices []int
	for i := nLayers - 1; i >= 0; i -= stride {
		indices = append(indices, i)
	}
	if len(indices) > maxCols {
		indices = indices[:maxCols]
	}
	// collected back to front
	for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
		indices[i], indices[j] = indices[j], indices[i]
	}

	return Visible{Stride: stride, Indices: indices}
}

// StrideHint is the status line under the table.
func StrideHint(stride, nLayers int) string {
	if stride > 1 {
		return fmt.Sprintf("showing every %d layers ending at %d", stride, nLayers-1)
	}
	return fmt.Sprintf("showing all %d layers", nLayers)
}

var niceValues = []float64{0.003, 0.005, 0.01, 0.02, 0.03, 0.05, 0.1, 0.2, 0.3, 0.5, 1.0}

// NiceMax rounds a peak probability up to a readable axis maximum.
func NiceMax(p float64) float64 {
	if p >= 0.95 {
		return 1.0
	}
	for _, v := range niceValues {
		if p <= v {
			return v
		}
	}
	return 1.0
}

// Margin is the space around the chart's plot area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// ChartMargin scales the chart margins with the content font size.
func ChartMargin(fontPx float64) Margin {
	return Margin{
		Top:    math.Max(10, fontPx*1.2),
		Right:  8,
		Bottom: math.Max(25, fontPx*1.5),
		Left:   10,
	}
}

// DefaultChartHeight is six table rows tall plus margins. A rowHeight of 0
// means the host could not measure one.
func DefaultChartHeight(fontPx, rowHeight float64) float64 {
	if rowHeight <= 0 {
		rowHeight = fontPx * 2
	}
	m := ChartMargin(fontPx)
	return m.Top + rowHeight*6 + m.Bottom
}

// Chart is the pixel geometry of the trajectory chart.
type Chart struct {
	Height      float64
	InnerWidth  float64
	InnerHeight float64
	Margin      Margin
	FontScale   float64
	DotRadius   float64
	UsableWidth float64

	nLayers      int
	plotMinLayer float64
}

// LayerToX maps a layer index to an x offset inside the plot area.
// plotMinLayer sits at DotRadius and the last layer at
// UsableWidth-DotRadius; with nothing to span the layer is centered.
func (c Chart) LayerToX(layer float64) float64 {
	return layerToX(layer, c.nLayers, c.plotMinLayer, c.DotRadius, c.UsableWidth)
}

func layerToX(layer float64, nLayers int, minLayer, dotRadius, usableWidth float64) float64 {
	if nLayers <= 1 {
		return usableWidth / 2
	}
	span := float64(nLayers-1) - minLayer
	if span <= 0 {
		return usableWidth / 2
	}
	return dotRadius + ((layer-minLayer)/span)*(usableWidth-2*dotRadius)
}

// ProbToY maps a probability to a y offset given the axis maximum.
func (c Chart) ProbToY(p, maxProb float64) float64 {
	return c.InnerHeight - (p/maxProb)*c.InnerHeight
}

// minTickGap is the smallest pixel gap between x-axis labels.
const minTickGap = 24

// TickLabels returns which entries of visible get an x-axis label. The
// first and last are always labelled; in between, labels are thinned so
// neighbours are at least minTickGap apart.
func (c Chart) TickLabels(visible []int) []bool {
	show := make([]bool, len(visible))
	if len(visible) == 0 {
		return show
	}

	labelStride := 1
	if len(visible) >= 2 {
		gap := math.Abs(c.LayerToX(float64(visible[1])) - c.LayerToX(float64(visible[0])))
		if gap >= 1 && gap < minTickGap {
			labelStride = int(math.Ceil(minTickGap / gap))
		}
	}

	last := len(visible) - 1
	for i := last; i >= 0; i -= labelStride {
		show[i] = true
	}
	show[0] = true
	if labelStride > 1 {
		// the label just right of index 0 would collide with it
		for i := last; i > 0; i -= labelStride {
			if i < labelStride {
				show[i] = false
				break
			}
		}
	}
	return show
}
