package widget

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// el creates an HTML element with key/value attribute pairs.
func el(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	setAttrs(n, attrs...)
	return n
}

// svgEl creates an element in the SVG namespace.
func svgEl(name string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:      html.ElementNode,
		DataAtom:  atom.Lookup([]byte(name)),
		Data:      name,
		Namespace: "svg",
	}
	setAttrs(n, attrs...)
	return n
}

func setAttrs(n *html.Node, attrs ...string) {
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendAll(n *html.Node, kids ...*html.Node) *html.Node {
	for _, k := range kids {
		if k != nil {
			n.AppendChild(k)
		}
	}
	return n
}

func px(v float64) string {
	return fmtNum(v) + "px"
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

// Render projects the widget's state into an HTML node tree. It only reads
// state; VisibleLayers and Stride are kept current by the operations that
// change layout.
func (w *Widget) Render() *html.Node {
	dark := w.DarkMode()
	fs := w.FontSize()

	class := "ll-widget"
	if dark {
		class += " dark-mode"
	}
	root := el(atom.Div,
		"id", w.id,
		"class", class,
		"style", "--ll-title-size: "+fs.Title+"; --ll-content-size: "+fs.Content+";",
	)

	appendAll(root,
		w.renderTitle(),
		w.renderTable(),
		w.renderHint(),
		w.renderChart(),
	)
	if w.st.OpenPopup != nil {
		root.AppendChild(w.renderPopup())
	}
	if w.st.MenuOpen {
		root.AppendChild(w.renderMenu())
	}
	if w.st.ColorPickerTarget != nil {
		root.AppendChild(w.renderColorPicker())
	}
	if w.captured {
		root.AppendChild(el(atom.Div,
			"id", w.id+"_overlay",
			"class", "ll-overlay",
			"data-target", TargetCapture.String(),
			"style", "position:fixed;top:0;left:0;right:0;bottom:0;z-index:50;",
		))
	}
	return root
}

// RenderHTML writes the rendered widget as an HTML fragment.
func (w *Widget) RenderHTML(out io.Writer) error {
	return html.Render(out, w.Render())
}

func (w *Widget) renderTitle() *html.Node {
	title := el(atom.Div, "id", w.id+"_title", "class", "ll-title")
	if w.st.MaxTableWidth != nil {
		setAttrs(title, "style", "max-width: "+px(*w.st.MaxTableWidth)+"; white-space: normal;")
	}

	textSpan := el(atom.Span,
		"id", w.id+"_title_text",
		"class", "ll-title-text",
		"data-target", TargetTitle.String(),
	)
	if w.st.TitleEditing {
		textSpan.AppendChild(el(atom.Input, "type", "text", "class", "ll-title-input", "value", w.st.Title))
	} else {
		textSpan.AppendChild(text(w.st.Title))
	}

	btn := w.ColorButton()
	btnStyle := ""
	switch {
	case btn.Affordance == AffordancePlaceholder:
		btnStyle = "background: transparent; border: none; color: transparent; cursor: pointer;"
	case btn.Tint != "":
		btnStyle = "background: " + btn.Tint + ";"
	}
	btnSpan := el(atom.Span,
		"id", w.id+"_color_btn",
		"class", "color-mode-btn",
		"data-target", TargetColorButton.String(),
		"data-affordance", btn.Affordance.String(),
		"style", btnStyle,
	)
	btnSpan.AppendChild(text(btn.Label))

	return appendAll(title, textSpan, text(" "), btnSpan)
}

// VisiblePositions returns the positions shown as table rows: the last
// MaxRows of them, or all.
func (w *Widget) VisiblePositions() []int {
	total := w.nPositions()
	start := 0
	if w.st.MaxRows != nil && *w.st.MaxRows < total {
		start = total - *w.st.MaxRows
	}
	positions := make([]int, 0, total-start)
	for p := start; p < total; p++ {
		positions = append(positions, p)
	}
	return positions
}

func (w *Widget) renderTable() *html.Node {
	st := &w.st
	dark := w.DarkMode()
	vis := st.VisibleLayers
	positions := w.VisiblePositions()
	halfway := len(vis) / 2
	inputStyle := "width:" + px(st.InputTokenWidth) + "; max-width:" + px(st.InputTokenWidth) + ";"
	cellSize := "width:" + px(st.CellWidth) + "; max-width:" + px(st.CellWidth) + ";"

	table := el(atom.Table, "id", w.id+"_table", "class", "ll-table")

	colgroup := el(atom.Colgroup)
	colgroup.AppendChild(el(atom.Col, "style", "width:"+px(st.InputTokenWidth)+";"))
	for range vis {
		colgroup.AppendChild(el(atom.Col, "style", "width:"+px(st.CellWidth)+";"))
	}
	table.AppendChild(colgroup)

	inputHandle := func() *html.Node {
		return el(atom.Div, "class", "resize-handle-input", "data-target", TargetInputHandle.String())
	}
	columnHandle := func(col int) *html.Node {
		return el(atom.Div,
			"class", "resize-handle",
			"data-target", TargetColumnHandle.String(),
			"data-idx", itoa(col),
		)
	}

	for rowIdx, pos := range positions {
		tok := w.data.Tokens[pos]
		first := rowIdx == 0
		pinned := st.rowFor(pos) >= 0
		tr := el(atom.Tr)

		class := "input-token"
		style := inputStyle
		if pinned {
			class += " pinned-row"
			if dark {
				style += " background: #4a4a00; color: #fff;"
			} else {
				style += " background: #fff59d;"
			}
		}
		td := el(atom.Td,
			"class", class,
			"data-target", TargetInputToken.String(),
			"data-pos", itoa(pos),
			"title", tok,
			"style", style,
		)
		if pinned {
			td.AppendChild(w.renderLineSample(st.rowStyle(pos)))
		}
		td.AppendChild(text(tok))
		if first {
			td.AppendChild(inputHandle())
		}
		tr.AppendChild(td)

		for colIdx, li := range vis {
			cell, ok := w.data.Cell(pos, li)
			if !ok {
				continue
			}
			shade := w.Shade(pos, li)
			class := "pred-cell"
			style := "background:" + shade.Background + "; color:" + shade.Text + "; " + cellSize
			if shade.Outline != "" {
				class += " pinned"
				style += " box-shadow: inset 0 0 0 2px " + shade.Outline + ";"
			}
			if st.Selected != nil && st.Selected.Pos == pos && st.Selected.Layer == li {
				class += " selected"
			}
			if rowIdx == len(positions)-1 && colIdx == len(vis)-1 {
				style += " font-weight: bold;"
			}
			td := el(atom.Td,
				"class", class,
				"data-target", TargetPredCell.String(),
				"data-pos", itoa(pos),
				"data-li", itoa(li),
				"data-col", itoa(colIdx),
				"style", style,
			)
			td.AppendChild(text(cell.Token))
			if first && colIdx < halfway {
				td.AppendChild(columnHandle(colIdx))
			}
			tr.AppendChild(td)
		}
		table.AppendChild(tr)
	}

	header := el(atom.Tr)
	corner := el(atom.Th, "class", "corner-hdr", "style", inputStyle)
	appendAll(corner, text("Layer"), inputHandle())
	header.AppendChild(corner)
	for colIdx, li := range vis {
		th := el(atom.Th, "class", "layer-hdr", "style", cellSize)
		th.AppendChild(text(itoa(w.data.Layers[li])))
		if colIdx < halfway {
			th.AppendChild(columnHandle(colIdx))
		}
		header.AppendChild(th)
	}
	table.AppendChild(header)

	wrap := el(atom.Div, "class", "ll-table-wrap", "style", "width:"+px(w.TableWidth())+";")
	return appendAll(wrap,
		table,
		el(atom.Div, "class", "resize-handle-bottom", "data-target", TargetBottomEdge.String()),
		el(atom.Div, "class", "resize-handle-right", "data-target", TargetRightEdge.String()),
	)
}

// renderLineSample draws the small line-style swatch shown in a pinned
// row's input cell.
func (w *Widget) renderLineSample(style LineStyle) *html.Node {
	scale := w.FontSize().ContentPx() / 10
	width, height := 20*scale, 10*scale
	stroke := "#333"
	if w.DarkMode() {
		stroke = "#ccc"
	}
	svg := svgEl("svg",
		"class", "line-sample",
		"width", fmtNum(width),
		"height", fmtNum(height),
		"style", "vertical-align: middle; margin-right: 2px;",
	)
	line := svgEl("line",
		"x1", "0", "y1", fmtNum(height/2),
		"x2", fmtNum(width), "y2", fmtNum(height/2),
		"stroke", stroke,
		"stroke-width", fmtNum(1.5*scale),
	)
	if dash := style.Dash(scale); dash != "" {
		setAttrs(line, "stroke-dasharray", dash)
	}
	svg.AppendChild(line)
	return svg
}

func (w *Widget) renderHint() *html.Node {
	hint := el(atom.Div, "id", w.id+"_hint", "class", "resize-hint")
	main := el(atom.Span, "class", "resize-hint-main")
	main.AppendChild(text(StrideHint(w.st.Stride, w.nLayers())))
	extra := el(atom.Span, "class", "resize-hint-extra")
	extra.AppendChild(text(" (drag column borders to adjust)"))
	return appendAll(hint, main, extra)
}

func (w *Widget) renderPopup() *html.Node {
	ref := *w.st.OpenPopup
	popup := el(atom.Div, "id", w.id+"_popup", "class", "popup visible")
	cell, ok := w.data.Cell(ref.Pos, ref.Layer)
	if !ok {
		return popup
	}

	// beside the cell, aligned with its row
	col := 0
	for i, li := range w.st.VisibleLayers {
		if li == ref.Layer {
			col = i
		}
	}
	row := 0
	for i, p := range w.VisiblePositions() {
		if p == ref.Pos {
			row = i
		}
	}
	left := w.st.InputTokenWidth + float64(col+1)*w.st.CellWidth + 5
	top := float64(row) * w.rowHeight()
	setAttrs(popup, "style", "left: "+px(left)+"; top: "+px(top)+";")

	header := el(atom.Div, "class", "popup-header")
	layer := el(atom.Span, "class", "popup-layer")
	layer.AppendChild(text(itoa(w.data.Layers[ref.Layer])))
	pos := el(atom.Span, "class", "popup-pos")
	code := el(atom.Code)
	code.AppendChild(text(VisualizeSpaces(w.data.Tokens[ref.Pos], false)))
	appendAll(pos, text(itoa(ref.Pos)), el(atom.Br), text("Input "), code)
	closeBtn := el(atom.Span, "class", "popup-close", "data-target", TargetPopupClose.String())
	closeBtn.AppendChild(text("×"))
	appendAll(header, layer, pos, closeBtn)

	content := el(atom.Div, "id", w.id+"_popup_content", "class", "popup-content")
	tokens := make([]string, len(cell.TopK))
	for k, p := range cell.TopK {
		tokens[k] = p.Token
		class := "topk-item"
		style := ""
		if color, ok := w.ColorForToken(p.Token); ok {
			class += " pinned"
			style = "background: " + Tint(color) + "; border-left-color: " + color + ";"
		}
		item := el(atom.Div,
			"class", class,
			"data-target", TargetPopupEntry.String(),
			"data-idx", itoa(k),
			"style", style,
			"title", VisualizeSpaces(p.Token, true),
		)
		tok := el(atom.Span, "class", "topk-token")
		tok.AppendChild(text(VisualizeSpaces(p.Token, false)))
		prob := el(atom.Span, "class", "topk-prob")
		prob.AppendChild(text(fmtFixed(p.Prob*100, 1) + "%"))
		content.AppendChild(appendAll(item, tok, prob))
	}
	if len(tokens) > 0 && w.st.groupFor(tokens[0]) >= 0 && hasSimilarToken(tokens, tokens[0]) {
		hint := el(atom.Div, "class", "popup-hint")
		hint.AppendChild(text("Shift-click to group tokens"))
		content.AppendChild(hint)
	}

	return appendAll(popup, header, content)
}

func (w *Widget) renderMenu() *html.Node {
	menu := el(atom.Div, "id", w.id+"_color_menu", "class", "color-menu visible")

	check := func(active bool) *html.Node {
		style := "visibility: hidden;"
		if active {
			style = "font-weight: bold;"
		}
		n := el(atom.Span, "class", "color-menu-check", "style", style)
		n.AppendChild(text("✓"))
		return n
	}
	label := func(s string) *html.Node {
		n := el(atom.Span, "class", "color-menu-label")
		n.AppendChild(text(s))
		return n
	}

	for i, item := range w.MenuItems() {
		style := ""
		if item.Border != "" {
			style = "border-left: 3px solid " + item.Border + ";"
		}
		row := el(atom.Div,
			"class", "color-menu-item",
			"data-target", TargetMenuItem.String(),
			"data-mode", item.Mode,
			"data-idx", itoa(i),
			"style", style,
		)
		swatch := el(atom.Input,
			"type", "color",
			"class", "color-swatch",
			"value", item.Color,
			"data-target", TargetMenuSwatch.String(),
			"data-idx", itoa(i),
		)
		menu.AppendChild(appendAll(row, check(item.Active), label(VisualizeSpaces(item.Label, false)), swatch))
	}

	none := el(atom.Div,
		"class", "color-menu-item",
		"data-target", TargetMenuItem.String(),
		"data-mode", NoneMode,
		"style", "border-top: 1px solid #eee; margin-top: 4px;",
	)
	menu.AppendChild(appendAll(none, check(len(w.st.ColorModes) == 0), label("None")))
	return menu
}

func (w *Widget) renderColorPicker() *html.Node {
	t := *w.st.ColorPickerTarget
	var value string
	switch t.Kind {
	case PickHeatmapBase:
		value = w.heatmapBase()
	case PickHeatmapNext:
		value = w.heatmapNext()
	case PickGroup:
		if t.Group >= 0 && t.Group < len(w.st.Groups) {
			value = w.st.Groups[t.Group].Color
		}
	}
	return el(atom.Input, "type", "color", "id", w.id+"_color_picker", "class", "ll-color-picker", "value", value)
}

// WritePage writes a standalone HTML document containing the widgets.
func WritePage(out io.Writer, title string, widgets ...*Widget) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	head := el(atom.Head)
	titleEl := el(atom.Title)
	titleEl.AppendChild(text(title))
	style := el(atom.Style)
	style.AppendChild(text(strings.TrimSpace(stylesheet)))
	appendAll(head, el(atom.Meta, "charset", "utf-8"), titleEl, style)

	body := el(atom.Body)
	for _, w := range widgets {
		body.AppendChild(w.Render())
	}

	doc.AppendChild(appendAll(el(atom.Html), head, body))
	return html.Render(out, doc)
}

const stylesheet = `
.ll-widget { font-family: system-ui, sans-serif; position: relative; color: #333; }
.ll-widget.dark-mode { background: #1e1e1e; color: #e0e0e0; }
.ll-title { font-size: var(--ll-title-size, 16px); font-weight: 600; margin-bottom: 8px; }
.color-mode-btn { cursor: pointer; border: 1px solid #ccc; border-radius: 3px; padding: 1px 4px; font-weight: normal; }
.ll-table-wrap { position: relative; }
.ll-table { border-collapse: collapse; table-layout: fixed; font-size: var(--ll-content-size, 10px); }
.ll-table td, .ll-table th { overflow: hidden; white-space: pre; text-overflow: ellipsis; position: relative; padding: 2px 4px; }
.input-token { text-align: right; cursor: pointer; border-right: 1px solid #ccc; }
.pred-cell { cursor: pointer; }
.pred-cell.selected { outline: 2px solid #2196F3; }
.layer-hdr, .corner-hdr { font-weight: normal; color: #666; }
.resize-handle, .resize-handle-input { position: absolute; top: 0; right: -3px; width: 6px; height: 100%; cursor: col-resize; }
.resize-handle-bottom { height: 6px; cursor: row-resize; }
.resize-handle-right { position: absolute; top: 0; right: -3px; width: 6px; height: 100%; cursor: ew-resize; }
.resize-hint { font-size: var(--ll-content-size, 10px); color: #999; }
.resize-hint-extra { display: none; }
.resize-hint:hover .resize-hint-extra { display: inline; }
.popup { position: absolute; z-index: 100; background: #fff; border: 1px solid #ccc; border-radius: 4px; padding: 6px; font-size: var(--ll-content-size, 10px); }
.dark-mode .popup, .dark-mode .color-menu { background: #2a2a2a; border-color: #444; }
.popup-header { display: flex; gap: 8px; align-items: flex-start; }
.popup-close { cursor: pointer; margin-left: auto; }
.topk-item { display: flex; justify-content: space-between; gap: 8px; cursor: pointer; border-left: 3px solid transparent; padding: 1px 4px; white-space: pre; }
.popup-hint { font-style: italic; color: #666; margin-top: 8px; padding-top: 6px; border-top: 1px solid #eee; }
.color-menu { position: absolute; z-index: 100; background: #fff; border: 1px solid #ccc; border-radius: 4px; padding: 4px 0; font-size: var(--ll-content-size, 10px); }
.color-menu-item { display: flex; align-items: center; cursor: pointer; padding-right: 8px; }
.color-menu-check { padding: 8px 10px 8px 20px; }
.color-menu-label { flex: 1; white-space: pre; }
.color-swatch { border: 0; background: transparent; padding: 0; }
.legend-item .legend-close { display: none; cursor: pointer; }
.legend-item:hover .legend-close { display: block; }
.layer-tick.draggable { cursor: col-resize; }
.x-axis { cursor: row-resize; }
.y-axis { cursor: col-resize; }
`
