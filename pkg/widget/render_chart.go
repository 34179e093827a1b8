package widget

import (
	"strings"

	"golang.org/x/net/html"
)

const hoverColor = "#999"

// ShownPositions are the positions whose trajectories are charted: the
// pinned rows, or else the hovered position.
func (w *Widget) ShownPositions() []int {
	if len(w.st.Rows) > 0 {
		positions := make([]int, len(w.st.Rows))
		for i, r := range w.st.Rows {
			positions[i] = r.Pos
		}
		return positions
	}
	return []int{w.st.HoverPos}
}

// ChartMax is the y-axis maximum: a round number above every charted
// probability, with a floor of 0.1%.
func (w *Widget) ChartMax() float64 {
	raw := 0.001
	for _, pos := range w.ShownPositions() {
		for i := range w.st.Groups {
			for _, p := range w.GroupTrajectory(&w.st.Groups[i], pos) {
				raw = max(raw, p)
			}
		}
	}
	if h := w.st.Hover; h != nil {
		for _, p := range h.Trajectory {
			raw = max(raw, p)
		}
	}
	return NiceMax(raw)
}

func (w *Widget) renderChart() *html.Node {
	chart := w.Chart()
	dark := w.DarkMode()
	scale := chart.FontScale
	fs := w.FontSize().ContentPx()
	inputRight := w.st.InputTokenWidth
	inner := chart.InnerWidth
	innerH := chart.InnerHeight
	maxProb := w.ChartMax()

	svg := svgEl("svg",
		"id", w.id+"_chart",
		"class", "ll-chart",
		"width", fmtNum(w.TableWidth()),
		"height", fmtNum(chart.Height),
	)

	legend := svgEl("g", "class", "legend-area")
	svg.AppendChild(legend)

	// clip at the plot edge, leaving room for the y-axis tick label
	clipID := w.id + "_chart_clip"
	trajClipID := w.id + "_traj_clip"
	clipLeft := 10 + fs*5
	clipTop := fs * 1.2
	defs := svgEl("defs")
	appendAll(defs,
		appendAll(svgEl("clipPath", "id", clipID),
			svgEl("rect",
				"x", fmtNum(-clipLeft),
				"y", fmtNum(-clipTop),
				"width", fmtNum(inner+clipLeft),
				"height", fmtNum(innerH+clipTop+chart.Margin.Bottom+fs*0.5),
			)),
		appendAll(svgEl("clipPath", "id", trajClipID),
			svgEl("rect",
				"x", "0",
				"y", fmtNum(-clipTop),
				"width", fmtNum(inner),
				"height", fmtNum(innerH+clipTop+10),
			)),
	)
	svg.AppendChild(defs)

	g := svgEl("g",
		"transform", "translate("+fmtNum(inputRight)+","+fmtNum(chart.Margin.Top)+")",
		"clip-path", "url(#"+clipID+")",
	)
	svg.AppendChild(g)

	// x-axis: dragging it resizes the chart
	g.AppendChild(appendAll(svgEl("g", "class", "x-axis", "data-target", TargetXAxis.String()),
		svgEl("rect", "class", "xaxis-hover-bg",
			"x", "0", "y", fmtNum(innerH-2), "width", fmtNum(inner), "height", "4",
			"fill", "rgba(33, 150, 243, 0.3)", "style", "display: none;"),
		svgEl("rect",
			"x", "0", "y", fmtNum(innerH-4), "width", fmtNum(inner), "height", "8",
			"fill", "transparent"),
		svgEl("line",
			"x1", "0", "y1", fmtNum(innerH), "x2", fmtNum(inner), "y2", fmtNum(innerH),
			"stroke", "#ccc"),
	))

	traj := svgEl("g", "class", "trajectories", "clip-path", "url(#"+trajClipID+")")
	g.AppendChild(traj)

	tickFill := "#666"
	if dark {
		tickFill = "#aaa"
	}
	vis := w.st.VisibleLayers
	labels := chart.TickLabels(vis)
	for i, li := range vis {
		if !labels[i] {
			continue
		}
		x := chart.LayerToX(float64(li))
		if w.st.PlotMinLayer > 0 && x < 8 {
			continue
		}
		var tick *html.Node
		if w.LayerDraggable(li) {
			tick = svgEl("g",
				"class", "layer-tick draggable",
				"data-target", TargetLayerTick.String(),
				"data-li", itoa(li),
			)
			bgWidth := max(16, fs*1.6)
			tick.AppendChild(svgEl("rect", "class", "tick-hover-bg",
				"x", fmtNum(x-bgWidth/2), "y", fmtNum(innerH+2),
				"width", fmtNum(bgWidth), "height", fmtNum(fs+2), "rx", "2",
				"fill", "rgba(33, 150, 243, 0.3)", "style", "display: none;"))
		} else {
			tick = svgEl("g", "class", "layer-tick")
		}
		label := svgEl("text",
			"x", fmtNum(x), "y", fmtNum(innerH+2+fs),
			"text-anchor", "middle",
			"style", "font-size: var(--ll-content-size, 10px);",
			"fill", tickFill,
		)
		label.AppendChild(text(itoa(w.data.Layers[li])))
		g.AppendChild(appendAll(tick, label))
	}

	// y-axis: dragging it resizes the input column
	g.AppendChild(appendAll(svgEl("g", "class", "y-axis", "data-target", TargetYAxis.String()),
		svgEl("rect", "class", "yaxis-hover-bg",
			"x", "-2", "y", "0", "width", "4", "height", fmtNum(innerH),
			"fill", "rgba(33, 150, 243, 0.3)", "style", "display: none;"),
		svgEl("rect",
			"x", "-4", "y", "0", "width", "8", "height", fmtNum(innerH),
			"fill", "transparent"),
		svgEl("line",
			"x1", "0", "y1", "0", "x2", "0", "y2", fmtNum(innerH),
			"stroke", "#ccc"),
	))

	yLabel := svgEl("text", "class", "y-label",
		"x", fmtNum(-innerH/2), "y", fmtNum(-inputRight+15),
		"text-anchor", "middle",
		"style", "font-size: var(--ll-content-size, 10px);",
		"fill", "#666",
		"transform", "rotate(-90)",
	)
	yLabel.AppendChild(text("Probability"))
	svg.AppendChild(yLabel)

	hover := w.st.Hover
	if len(w.st.Groups) > 0 || hover != nil {
		tickFS := fs * 0.9
		maxLabel := svgEl("text", "class", "max-tick",
			"x", "-5", "y", fmtNum(tickFS*0.35),
			"text-anchor", "end",
			"style", "font-size: calc(var(--ll-content-size, 10px) * 0.9);",
			"fill", tickFill,
		)
		maxLabel.AppendChild(text(FormatPct(maxProb)))
		appendAll(g,
			svgEl("line", "x1", "-3", "y1", "0", "x2", "3", "y2", "0", "stroke", "#999"),
			maxLabel,
		)
	}

	for _, pos := range w.ShownPositions() {
		style := w.st.rowStyle(pos)
		for i := range w.st.Groups {
			grp := &w.st.Groups[i]
			w.drawTrajectory(traj, chart, w.GroupTrajectory(grp, pos), grp.Color, grp.Label(), maxProb, style.Dash(scale), false)
		}
	}
	if hover != nil {
		w.drawTrajectory(traj, chart, hover.Trajectory, hoverColor, hover.Token, maxProb, "", true)
	}

	w.renderLegend(legend, chart)
	return svg
}

// drawTrajectory appends one trajectory path, with a dot at each visible
// layer.
func (w *Widget) drawTrajectory(g *html.Node, chart Chart, trajectory []float64, color, label string, maxProb float64, dash string, hover bool) {
	if len(trajectory) == 0 {
		return
	}
	scale := chart.FontScale
	dot, stroke := 3*scale, 2*scale
	if hover {
		dot, stroke = 2*scale, 1.5*scale
		dash = fmtNum(4*scale) + "," + fmtNum(2*scale)
	}
	xAt := func(layer int) float64 {
		return layerToX(float64(layer), chart.nLayers, chart.plotMinLayer, dot, chart.UsableWidth)
	}

	var d strings.Builder
	for li, p := range trajectory {
		if li == 0 {
			d.WriteString("M")
		} else {
			d.WriteString("L")
		}
		d.WriteString(fmtFixed(xAt(li), 1) + "," + fmtFixed(chart.ProbToY(p, maxProb), 1))
	}

	class := "trajectory"
	if hover {
		class += " hover-trajectory"
	}
	path := svgEl("path",
		"class", class,
		"d", d.String(),
		"fill", "none",
		"stroke", color,
		"stroke-width", fmtNum(stroke),
	)
	if dash != "" {
		setAttrs(path, "stroke-dasharray", dash)
	}
	if hover {
		setAttrs(path, "style", "opacity: 0.7;")
	}
	g.AppendChild(path)

	for _, li := range w.st.VisibleLayers {
		if li >= len(trajectory) {
			continue
		}
		p := trajectory[li]
		circle := svgEl("circle",
			"cx", fmtFixed(xAt(li), 1),
			"cy", fmtFixed(chart.ProbToY(p, maxProb), 1),
			"r", fmtNum(dot),
			"fill", color,
		)
		if hover {
			setAttrs(circle, "style", "opacity: 0.7;")
		}
		title := svgEl("title")
		title.AppendChild(text(label + " L" + itoa(w.data.Layers[li]) + ": " + fmtFixed(p*100, 2) + "%"))
		g.AppendChild(appendAll(circle, title))
	}
}

// LegendByRow reports whether the legend lists pinned rows under a single
// group title instead of listing groups.
func (w *Widget) LegendByRow() bool {
	return len(w.st.Rows) > 1 && len(w.st.Groups) == 1
}

func (w *Widget) renderLegend(legend *html.Node, chart Chart) {
	st := &w.st
	scale := chart.FontScale
	dark := w.DarkMode()
	stroke := fmtNum(2 * scale)
	entryHeight := 14 * scale
	textY := fmtNum(4 * scale)
	indent := 18 * scale

	entries := len(st.Groups)
	if w.LegendByRow() {
		entries = 1 + len(st.Rows)
	}
	if st.Hover != nil {
		entries++
	}
	y := chart.Margin.Top + max(10*scale, (chart.InnerHeight-float64(entries)*entryHeight)/2)

	textFill := "#333"
	if dark {
		textFill = "#ddd"
	}

	entry := func(target TargetKind, idx int, x float64, line *html.Node, textX float64, clipWidth float64, label string) *html.Node {
		item := svgEl("g",
			"class", "legend-item",
			"transform", "translate("+fmtNum(x)+", "+fmtNum(y)+")",
		)
		closeBtn := svgEl("text",
			"class", "legend-close",
			"data-target", target.String(),
			"data-idx", itoa(idx),
			"x", fmtNum(-12*scale), "y", "4",
			"style", "font-size: var(--ll-title-size, 16px);",
			"fill", "#999",
		)
		closeBtn.AppendChild(text("×"))

		clipID := w.id + "_legend_" + target.String() + "_" + itoa(idx)
		clip := appendAll(svgEl("clipPath", "id", clipID),
			svgEl("rect",
				"x", fmtNum(textX), "y", fmtNum(-10*scale),
				"width", fmtNum(clipWidth), "height", fmtNum(20*scale)))
		labelText := svgEl("text",
			"x", fmtNum(textX), "y", textY,
			"style", "font-size: var(--ll-content-size, 10px);",
			"fill", textFill,
			"clip-path", "url(#"+clipID+")",
		)
		labelText.AppendChild(text(label))

		hit := svgEl("rect",
			"x", "-15", "y", "-8",
			"width", fmtNum(st.InputTokenWidth-5), "height", "14",
			"fill", "transparent")
		y += entryHeight
		return appendAll(item, hit, closeBtn, line, clip, labelText)
	}

	if w.LegendByRow() {
		grp := &st.Groups[0]
		titleClip := w.id + "_legend_title_clip"
		title := svgEl("g", "class", "legend-title", "transform", "translate(5, "+fmtNum(y)+")")
		label := svgEl("text",
			"x", "0", "y", textY,
			"style", "font-size: var(--ll-content-size, 10px);",
			"fill", grp.Color,
			"font-weight", "600",
			"clip-path", "url(#"+titleClip+")",
		)
		label.AppendChild(text(grp.Label()))
		legend.AppendChild(appendAll(title,
			appendAll(svgEl("clipPath", "id", titleClip),
				svgEl("rect", "x", "0", "y", "-10", "width", fmtNum(st.InputTokenWidth-10), "height", "20")),
			label,
		))
		y += entryHeight

		for i, r := range st.Rows {
			line := svgEl("line",
				"x1", "0", "y1", "0", "x2", fmtNum(20*scale), "y2", "0",
				"stroke", grp.Color, "stroke-width", stroke)
			if dash := r.Style.Dash(scale); dash != "" {
				setAttrs(line, "stroke-dasharray", dash)
			}
			legend.AppendChild(entry(TargetLegendRow, i, indent, line, 25*scale, st.InputTokenWidth-50*scale,
				VisualizeSpaces(w.data.Tokens[r.Pos], false)))
		}
	} else {
		for i := range st.Groups {
			grp := &st.Groups[i]
			line := svgEl("line",
				"x1", "0", "y1", "0", "x2", fmtNum(15*scale), "y2", "0",
				"stroke", grp.Color, "stroke-width", stroke)
			legend.AppendChild(entry(TargetLegendGroup, i, indent, line, 20*scale, st.InputTokenWidth-45*scale, grp.Label()))
		}
	}

	if h := st.Hover; h != nil {
		hoverFill := "#666"
		if dark {
			hoverFill = "#aaa"
		}
		clipID := w.id + "_hover_clip"
		item := svgEl("g",
			"class", "legend-item hover-legend",
			"transform", "translate("+fmtNum(indent)+", "+fmtNum(y)+")",
		)
		label := svgEl("text",
			"x", fmtNum(20*scale), "y", textY,
			"style", "font-size: var(--ll-content-size, 10px);",
			"fill", hoverFill,
			"clip-path", "url(#"+clipID+")",
		)
		label.AppendChild(text(VisualizeSpaces(h.Token, false)))
		legend.AppendChild(appendAll(item,
			svgEl("line",
				"x1", "0", "y1", "0", "x2", fmtNum(15*scale), "y2", "0",
				"stroke", hoverColor,
				"stroke-width", fmtNum(1.5*scale),
				"stroke-dasharray", fmtNum(4*scale)+","+fmtNum(2*scale),
				"style", "opacity: 0.7;"),
			appendAll(svgEl("clipPath", "id", clipID),
				svgEl("rect",
					"x", fmtNum(20*scale), "y", fmtNum(-10*scale),
					"width", fmtNum(st.InputTokenWidth-45*scale), "height", fmtNum(20*scale))),
			label,
		))
	}
}
