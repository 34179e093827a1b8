package termview

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/vito/logitlens/pkg/widget"
)

// zone maps a span of one screen line to the widget element drawn there.
// Inert zones swallow pointer events (popup borders and padding).
type zone struct {
	x0, x1 int
	y      int
	target widget.Target
	inert  bool
}

// targetAt finds the topmost zone under (x, y).
func (m *Model) targetAt(x, y int) (widget.Target, bool) {
	for i := len(m.zones) - 1; i >= 0; i-- {
		z := m.zones[i]
		if z.y == y && x >= z.x0 && x < z.x1 {
			return z.target, z.inert
		}
	}
	return widget.Target{}, false
}

// canvas collects rendered lines and the zones on them.
type canvas struct {
	lines []string
	zones []zone
}

func (c *canvas) line() int {
	return len(c.lines)
}

func (c *canvas) add(s string) {
	c.lines = append(c.lines, s)
}

func (c *canvas) mark(y, x, width int, t widget.Target) {
	c.zones = append(c.zones, zone{x0: x, x1: x + width, y: y, target: t})
}

// geometry is the table's size in terminal cells.
type geometry struct {
	inputCols int
	cellCols  int
	layers    []int
	positions []int
}

func (g geometry) tableCols() int {
	return g.inputCols + 1 + len(g.layers)*g.cellCols
}

func (m *Model) geometry() geometry {
	st := m.widget.Peek()
	return geometry{
		inputCols: max(4, int(st.InputTokenWidth/pxPerCol)),
		cellCols:  max(2, int(st.CellWidth/pxPerCol)),
		layers:    st.VisibleLayers,
		positions: m.widget.VisiblePositions(),
	}
}

type palette struct {
	dim    lipgloss.Style
	axis   lipgloss.Style
	title  lipgloss.Style
	pinned lipgloss.Style
	box    lipgloss.Style
}

func (m *Model) palette() palette {
	dark := m.widget.DarkMode()
	p := palette{
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")),
		axis:   lipgloss.NewStyle().Foreground(lipgloss.Color("#cccccc")),
		title:  lipgloss.NewStyle().Bold(true),
		pinned: lipgloss.NewStyle().Background(lipgloss.Color("#fff59d")).Foreground(lipgloss.Color("#333333")),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#cccccc")).
			Padding(0, 1),
	}
	if dark {
		p.axis = p.axis.Foreground(lipgloss.Color("#666666"))
		p.pinned = lipgloss.NewStyle().Background(lipgloss.Color("#4a4a00")).Foreground(lipgloss.Color("#ffffff"))
		p.box = p.box.BorderForeground(lipgloss.Color("#444444"))
	}
	return p
}

// hexColor parses "#rgb" and "#rrggbb" colors.
func hexColor(s string) color.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return lipgloss.Color(s)
	}
	return c
}

// label makes a token printable on one terminal line.
func label(tok string) string {
	return widget.VisualizeSpaces(tok, true)
}

// fit truncates s to width cells and pads it, on the left when right is
// set.
func fit(s string, width int, right bool) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "…")
	pad := strings.Repeat(" ", max(0, width-ansi.StringWidth(s)))
	if right {
		return pad + s
	}
	return s + pad
}

// Render draws the whole view and records where each element landed.
func (m *Model) Render() string {
	w := m.widget
	st := w.Peek()
	p := m.palette()
	g := m.geometry()
	c := &canvas{}

	buttonX := m.renderTitle(c, p)
	c.add("")
	tableTop := c.line()
	m.renderTable(c, p, g)
	c.add(p.dim.Render(widget.StrideHint(st.Stride, w.Data().NumLayers())))
	c.add("")
	m.renderChart(c, p, g)
	m.renderLegend(c, p)
	c.add("")
	c.add(p.dim.Render(m.help()))

	lines := c.lines
	if st.OpenPopup != nil {
		lines = m.renderPopup(c, lines, p, g, tableTop)
	}
	if st.MenuOpen {
		lines = m.renderMenu(c, lines, p, buttonX)
	}
	m.zones = c.zones

	if m.width > 0 {
		for i, l := range lines {
			lines[i] = ansi.Truncate(l, m.width, "")
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) help() string {
	st := m.widget.Peek()
	switch {
	case st.TitleEditing:
		return "type a title • enter save • esc cancel"
	case st.OpenPopup != nil:
		return "↑/↓ select • enter pin • p group • x close"
	case st.MenuOpen:
		return "↑/↓ select • enter color by • p add mode • s recolor • esc close"
	}
	return "←↑↓→ move • enter top-k • p pin token • r pin row • c colors • t title • +/- <> [] {} z/Z resize • q quit"
}

// renderTitle draws the title line and returns the column of the color
// button.
func (m *Model) renderTitle(c *canvas, p palette) int {
	w := m.widget
	st := w.Peek()
	y := c.line()

	var title string
	if st.TitleEditing {
		title = "✎ " + m.edit + "▏"
	} else {
		title = st.Title
	}
	titleW := ansi.StringWidth(title)
	c.mark(y, 0, titleW, widget.Target{Kind: widget.TargetTitle})

	btn := w.ColorButton()
	btnStyle := p.dim
	btnText := btn.Label
	switch {
	case btn.Affordance == widget.AffordancePlaceholder:
		// invisible, but still clickable
		btnText = strings.Repeat(" ", ansi.StringWidth(btn.Label))
	case len(btn.Tint) >= 7:
		// the tint is the group color at low opacity
		btnStyle = btnStyle.Background(widget.ProbToRGB(0.13, btn.Tint[:7], w.DarkMode()))
	}
	buttonX := titleW + 1
	c.mark(y, buttonX, ansi.StringWidth(btnText), widget.Target{Kind: widget.TargetColorButton})

	c.add(p.title.Render(title) + " " + btnStyle.Render(btnText))
	return buttonX
}

func (m *Model) renderTable(c *canvas, p palette, g geometry) {
	w := m.widget
	st := w.Peek()
	data := w.Data()
	curRow, curCol := m.cursor()
	halfway := len(g.layers) / 2

	for rowIdx, pos := range g.positions {
		y := c.line()
		var b strings.Builder

		input := fit(label(data.Tokens[pos]), g.inputCols, true)
		if isPinnedRow(st, pos) {
			input = p.pinned.Render(input)
		}
		b.WriteString(input)
		c.mark(y, 0, g.inputCols, widget.Target{Kind: widget.TargetInputToken, Pos: pos})

		b.WriteString(p.axis.Render("│"))
		c.mark(y, g.inputCols, 1, widget.Target{Kind: widget.TargetInputHandle})

		for colIdx, li := range g.layers {
			cell, ok := data.Cell(pos, li)
			if !ok {
				continue
			}
			shade := w.Shade(pos, li)
			style := lipgloss.NewStyle().Background(shade.Fill).Foreground(hexColor(shade.Text))
			if shade.Outline != "" {
				style = style.Underline(true)
			}
			if sel := st.Selected; sel != nil && sel.Pos == pos && sel.Layer == li {
				style = style.Bold(true)
			}
			if rowIdx == curRow && colIdx == curCol {
				style = style.Reverse(true)
			}
			b.WriteString(style.Render(fit(label(cell.Token), g.cellCols, false)))
			c.mark(y, g.inputCols+1+colIdx*g.cellCols, g.cellCols,
				widget.Target{Kind: widget.TargetPredCell, Pos: pos, Layer: li})
		}

		b.WriteString(p.axis.Render("┊"))
		c.mark(y, g.tableCols(), 1, widget.Target{Kind: widget.TargetRightEdge})
		c.add(b.String())
	}

	// the header sits under the rows, as in the HTML table
	y := c.line()
	var hdr strings.Builder
	hdr.WriteString(p.dim.Render(fit("Layer", g.inputCols, true)))
	hdr.WriteString(p.axis.Render("│"))
	c.mark(y, g.inputCols, 1, widget.Target{Kind: widget.TargetInputHandle})
	for colIdx, li := range g.layers {
		hdr.WriteString(p.dim.Render(fit(strconv.Itoa(data.Layers[li]), g.cellCols-1, true)))
		x := g.inputCols + 1 + colIdx*g.cellCols + g.cellCols - 1
		if colIdx < halfway {
			hdr.WriteString(p.axis.Render("╎"))
			c.mark(y, x, 1, widget.Target{Kind: widget.TargetColumnHandle, Index: colIdx})
		} else {
			hdr.WriteString(" ")
		}
	}
	hdr.WriteString(p.axis.Render("┊"))
	c.mark(y, g.tableCols(), 1, widget.Target{Kind: widget.TargetRightEdge})
	c.add(hdr.String())

	y = c.line()
	c.add(p.axis.Render(strings.Repeat("╌", g.tableCols()+1)))
	c.mark(y, 0, g.tableCols()+1, widget.Target{Kind: widget.TargetBottomEdge})
}

func isPinnedRow(st *widget.State, pos int) bool {
	for _, r := range st.Rows {
		if r.Pos == pos {
			return true
		}
	}
	return false
}

var rowGlyphs = map[widget.LineStyle]string{
	widget.Solid:   "●",
	widget.Dashed:  "◆",
	widget.Dotted:  "•",
	widget.DashDot: "▪",
}

const hoverGlyph = "∘"

func rowStyleFor(st *widget.State, pos int) widget.LineStyle {
	for _, r := range st.Rows {
		if r.Pos == pos {
			return r.Style
		}
	}
	return widget.Solid
}

func (m *Model) renderChart(c *canvas, p palette, g geometry) {
	w := m.widget
	st := w.Peek()
	chart := w.Chart()
	maxProb := w.ChartMax()
	plotCols := max(1, g.tableCols()-g.inputCols-1)
	rows := max(3, int(math.Round(w.EffectiveChartHeight()/pxPerRow))-2)

	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, plotCols)
	}
	xCol := func(li int) int {
		return int(chart.LayerToX(float64(li)) / pxPerCol)
	}
	plot := func(traj []float64, glyph string) {
		for li, prob := range traj {
			x := xCol(li)
			if float64(li) < st.PlotMinLayer || x < 0 || x >= plotCols {
				continue
			}
			y := int(math.Round((1 - prob/maxProb) * float64(rows-1)))
			grid[max(0, min(rows-1, y))][x] = glyph
		}
	}

	for _, pos := range w.ShownPositions() {
		glyph := rowGlyphs[rowStyleFor(st, pos)]
		for i := range st.Groups {
			grp := &st.Groups[i]
			style := lipgloss.NewStyle().Foreground(hexColor(grp.Color))
			plot(w.GroupTrajectory(grp, pos), style.Render(glyph))
		}
	}
	if h := st.Hover; h != nil {
		plot(h.Trajectory, p.dim.Render(hoverGlyph))
	}

	showMax := len(st.Groups) > 0 || st.Hover != nil
	for r := range rows {
		y := c.line()
		var left string
		switch {
		case r == 0 && showMax:
			left = widget.FormatPct(maxProb)
		case r == rows/2:
			left = "Probability"
		case r == rows-1:
			left = "0%"
		}
		axis := "│"
		if r == 0 && showMax {
			axis = "┤"
		}
		var b strings.Builder
		b.WriteString(p.dim.Render(fit(left, g.inputCols, true)))
		b.WriteString(p.axis.Render(axis))
		c.mark(y, g.inputCols, 1, widget.Target{Kind: widget.TargetYAxis})
		for _, cell := range grid[r] {
			if cell == "" {
				cell = " "
			}
			b.WriteString(cell)
		}
		c.add(b.String())
	}

	y := c.line()
	c.add(strings.Repeat(" ", g.inputCols) + p.axis.Render("└"+strings.Repeat("─", plotCols)))
	c.mark(y, g.inputCols+1, plotCols, widget.Target{Kind: widget.TargetXAxis})

	// layer tick labels
	y = c.line()
	ticks := []rune(strings.Repeat(" ", plotCols))
	show := chart.TickLabels(st.VisibleLayers)
	for i, li := range st.VisibleLayers {
		if !show[i] {
			continue
		}
		text := strconv.Itoa(w.Data().Layers[li])
		x := xCol(li) - len(text)/2
		if x < 0 || x+len(text) > plotCols || (st.PlotMinLayer > 0 && xCol(li) < 1) {
			continue
		}
		copy(ticks[x:], []rune(text))
		if w.LayerDraggable(li) {
			c.mark(y, g.inputCols+1+x, len(text), widget.Target{Kind: widget.TargetLayerTick, Layer: li})
		}
	}
	c.add(strings.Repeat(" ", g.inputCols+1) + p.dim.Render(string(ticks)))
}

func (m *Model) renderLegend(c *canvas, p palette) {
	w := m.widget
	st := w.Peek()
	closer := p.dim.Render("× ")

	if w.LegendByRow() {
		grp := &st.Groups[0]
		ink := lipgloss.NewStyle().Foreground(hexColor(grp.Color))
		c.add("  " + ink.Bold(true).Render(grp.Label()))
		for i, r := range st.Rows {
			y := c.line()
			glyph := rowGlyphs[r.Style]
			c.add("  " + closer + ink.Render(glyph+glyph) + " " + label(w.Data().Tokens[r.Pos]))
			c.mark(y, 2, 1, widget.Target{Kind: widget.TargetLegendRow, Index: i})
		}
	} else {
		for i := range st.Groups {
			grp := &st.Groups[i]
			y := c.line()
			ink := lipgloss.NewStyle().Foreground(hexColor(grp.Color))
			c.add(closer + ink.Render("━━") + " " + grp.Label())
			c.mark(y, 0, 1, widget.Target{Kind: widget.TargetLegendGroup, Index: i})
		}
	}

	if h := st.Hover; h != nil {
		c.add("  " + p.dim.Render(hoverGlyph+hoverGlyph+" "+label(h.Token)))
	}
}

// boxLines renders content in the popup frame, padding every line to the
// same width so zones line up.
func boxLines(p palette, content []string) []string {
	width := 0
	for _, l := range content {
		width = max(width, ansi.StringWidth(l))
	}
	padded := make([]string, len(content))
	for i, l := range content {
		padded[i] = fit(l, width, false)
	}
	return strings.Split(p.box.Render(strings.Join(padded, "\n")), "\n")
}

// inert marks a whole box as belonging to the overlay.
func inert(c *canvas, x, y int, box []string) {
	for i, l := range box {
		c.zones = append(c.zones, zone{x0: x, x1: x + ansi.StringWidth(l), y: y + i, inert: true})
	}
}

func (m *Model) renderPopup(c *canvas, lines []string, p palette, g geometry, tableTop int) []string {
	w := m.widget
	st := w.Peek()
	ref := *st.OpenPopup
	data := w.Data()
	cell, ok := data.Cell(ref.Pos, ref.Layer)
	if !ok {
		return lines
	}

	content := []string{
		"Layer " + strconv.Itoa(data.Layers[ref.Layer]) + "  #" + strconv.Itoa(ref.Pos) + " " + label(data.Tokens[ref.Pos]),
	}
	tokW := 0
	for _, pr := range cell.TopK {
		tokW = max(tokW, ansi.StringWidth(label(pr.Token)))
	}
	for k, pr := range cell.TopK {
		entry := fit(label(pr.Token), tokW, false) + "  " + fit(strconv.FormatFloat(pr.Prob*100, 'f', 1, 64)+"%", 6, true)
		style := lipgloss.NewStyle()
		if groupColor, pinned := w.ColorForToken(pr.Token); pinned {
			style = style.Foreground(hexColor(groupColor)).Bold(true)
		}
		if k == m.popupIdx {
			style = style.Reverse(true)
		}
		content = append(content, style.Render(entry))
	}
	innerW := 0
	for _, l := range content {
		innerW = max(innerW, ansi.StringWidth(l))
	}
	innerW += 2
	content[0] = fit(content[0], innerW-1, false) + "×"
	box := boxLines(p, content)

	// beside the cell, or to its left when there's no room
	col, row := 0, 0
	for i, li := range g.layers {
		if li == ref.Layer {
			col = i
		}
	}
	for i, pos := range g.positions {
		if pos == ref.Pos {
			row = i
		}
	}
	boxW := ansi.StringWidth(box[0])
	x := g.inputCols + 1 + (col+1)*g.cellCols + 1
	if m.width > 0 && x+boxW > m.width {
		x = max(0, g.inputCols+1+col*g.cellCols-boxW)
	}
	y := tableTop + row

	inert(c, x, y, box)
	// border, then padding
	left := x + 2
	c.mark(y+1, left+innerW-1, 1, widget.Target{Kind: widget.TargetPopupClose})
	for k := range cell.TopK {
		c.mark(y+2+k, left, innerW, widget.Target{Kind: widget.TargetPopupEntry, Index: k})
	}
	return overlay(lines, box, x, y)
}

func (m *Model) renderMenu(c *canvas, lines []string, p palette, buttonX int) []string {
	w := m.widget
	st := w.Peek()
	items := w.MenuItems()

	check := func(active bool) string {
		if active {
			return "✓ "
		}
		return "  "
	}
	var content []string
	for i, item := range items {
		text := check(item.Active) + label(item.Label)
		style := lipgloss.NewStyle()
		if item.Border != "" {
			style = style.Foreground(hexColor(item.Border))
		}
		if i == m.menuIdx {
			style = style.Reverse(true)
		}
		content = append(content, style.Render(text))
	}
	none := check(len(st.ColorModes) == 0) + "None"
	if m.menuIdx >= len(items) {
		none = lipgloss.NewStyle().Reverse(true).Render(none)
	}
	content = append(content, none)

	innerW := 0
	for _, l := range content {
		innerW = max(innerW, ansi.StringWidth(l))
	}
	// swatch column
	for i, item := range items {
		swatch := lipgloss.NewStyle().Foreground(hexColor(item.Color)).Render("■")
		content[i] = fit(content[i], innerW, false) + " " + swatch
	}
	box := boxLines(p, content)

	x, y := buttonX, 1
	inert(c, x, y, box)
	left := x + 2
	for i, item := range items {
		c.mark(y+1+i, left, innerW, widget.Target{Kind: widget.TargetMenuItem, Mode: item.Mode, Index: i})
		c.mark(y+1+i, left+innerW+1, 1, widget.Target{Kind: widget.TargetMenuSwatch, Index: i})
	}
	c.mark(y+1+len(items), left, innerW, widget.Target{Kind: widget.TargetMenuItem, Mode: widget.NoneMode, Index: len(items)})
	return overlay(lines, box, x, y)
}
