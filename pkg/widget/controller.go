package widget

import (
	"slices"
	"strings"
)

// Modifiers are the keyboard modifiers held during a pointer event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Meta  bool
}

// Any reports whether any modifier is held.
func (m Modifiers) Any() bool {
	return m.Shift || m.Ctrl || m.Meta
}

// CaptureActive reports whether a popup or menu has installed the
// full-viewport capture layer.
func (w *Widget) CaptureActive() bool {
	return w.captured
}

// ClickCell handles a click on the prediction cell at (pos, layer).
func (w *Widget) ClickCell(pos, layer int, mods Modifiers) {
	if w.destroyed {
		return
	}
	cell, ok := w.data.Cell(pos, layer)
	if !ok {
		return
	}

	if mods.Shift {
		w.TogglePinnedTrajectory(cell.Token, true)
		return
	}

	// a click while something is open only dismisses it
	if w.st.MenuOpen {
		w.CloseColorMenu()
		return
	}
	if w.st.OpenPopup != nil {
		w.ClosePopup()
		return
	}

	w.OpenPopup(pos, layer)
}

// OpenPopup selects the cell at (pos, layer) and opens its top-k popup,
// closing the color menu first.
func (w *Widget) OpenPopup(pos, layer int) {
	if w.destroyed {
		return
	}
	cell, ok := w.data.Cell(pos, layer)
	if !ok {
		return
	}
	w.CloseColorMenu()
	w.st.ColorPickerTarget = nil

	ref := CellRef{Pos: pos, Layer: layer}
	w.st.OpenPopup = &ref
	sel := ref
	w.st.Selected = &sel
	w.st.HoverPos = pos
	w.st.Hover = &HoverTrace{Token: cell.Token, Pos: pos, Trajectory: cell.Trajectory}
	w.captured = true
}

// ClosePopup closes the popup and clears the selection.
func (w *Widget) ClosePopup() {
	if w.st.OpenPopup == nil {
		return
	}
	w.st.OpenPopup = nil
	w.st.Selected = nil
	w.captured = w.st.MenuOpen
}

// ClickPopupEntry toggles the k-th top-k entry of the open popup. The popup
// stays open on the same cell.
func (w *Widget) ClickPopupEntry(k int, mods Modifiers) {
	if w.destroyed || w.st.OpenPopup == nil {
		return
	}
	ref := *w.st.OpenPopup
	cell, ok := w.data.Cell(ref.Pos, ref.Layer)
	if !ok {
		w.ClosePopup()
		return
	}
	if k < 0 || k >= len(cell.TopK) {
		return
	}
	w.TogglePinnedTrajectory(cell.TopK[k].Token, mods.Any())
	w.OpenPopup(ref.Pos, ref.Layer)
}

// ClickInputToken toggles the pinned row at pos.
func (w *Widget) ClickInputToken(pos int) {
	if w.destroyed {
		return
	}
	w.ClosePopup()
	w.CloseColorMenu()
	w.TogglePinnedRow(pos)
}

// DismissCapture handles a pointer-down on the capture layer: whatever
// installed it is closed. Reports whether anything was dismissed.
func (w *Widget) DismissCapture() bool {
	if !w.captured {
		return false
	}
	w.ClosePopup()
	w.CloseColorMenu()
	w.captured = false
	return true
}

// HoverCell shows the trajectory of the cell's top token at its position.
func (w *Widget) HoverCell(pos, layer int) {
	if w.destroyed {
		return
	}
	cell, ok := w.data.Cell(pos, layer)
	if !ok {
		return
	}
	w.st.HoverPos = pos
	w.st.Hover = &HoverTrace{Token: cell.Token, Pos: pos, Trajectory: cell.Trajectory}
}

// HoverInputToken moves the chart to pos, previewing the token that
// pinning the row would auto-pin.
func (w *Widget) HoverInputToken(pos int) {
	if w.destroyed || pos < 0 || pos >= w.nPositions() {
		return
	}
	w.st.HoverPos = pos
	w.st.Hover = nil
	if tok, ok := w.AutoPinCandidate(pos); ok && w.st.groupFor(tok) < 0 {
		w.st.Hover = &HoverTrace{Token: tok, Pos: pos, Trajectory: w.data.TrajectoryFor(tok, pos)}
	}
}

// HoverPopupEntry previews the k-th top-k entry of the open popup, pinned
// or not.
func (w *Widget) HoverPopupEntry(k int) {
	if w.destroyed || w.st.OpenPopup == nil {
		return
	}
	ref := *w.st.OpenPopup
	cell, ok := w.data.Cell(ref.Pos, ref.Layer)
	if !ok || k < 0 || k >= len(cell.TopK) {
		return
	}
	p := cell.TopK[k]
	w.st.Hover = &HoverTrace{Token: p.Token, Pos: ref.Pos, Trajectory: p.Trajectory}
}

// ClearHover drops the hover trajectory but keeps the hovered position.
func (w *Widget) ClearHover() {
	w.st.Hover = nil
}

// Leave resets the chart to the last position when the pointer leaves the
// widget.
func (w *Widget) Leave() {
	if w.destroyed {
		return
	}
	w.st.HoverPos = w.nPositions() - 1
	w.st.Hover = nil
}

// MenuItem is one entry of the color-mode menu.
type MenuItem struct {
	Mode   string
	Label  string
	Color  string
	Picker PickerTarget
	// Border is set for pinned groups.
	Border string
	Active bool
}

// NoneMode is the menu entry that turns heatmap coloring off.
const NoneMode = "none"

// topToken is the top prediction at the last position and last visible
// layer.
func (w *Widget) topToken() string {
	vis := w.st.VisibleLayers
	layer := w.nLayers() - 1
	if len(vis) > 0 {
		layer = vis[len(vis)-1]
	}
	c, ok := w.data.Cell(w.nPositions()-1, layer)
	if !ok {
		return ""
	}
	return c.Token
}

// MenuItems lists the color-mode menu entries, not including "none".
func (w *Widget) MenuItems() []MenuItem {
	active := func(mode string) bool {
		return slices.Contains(w.st.ColorModes, mode)
	}
	items := []MenuItem{{
		Mode:   TopMode,
		Label:  "top prediction",
		Color:  w.heatmapBase(),
		Picker: PickerTarget{Kind: PickHeatmapBase},
		Active: active(TopMode),
	}}
	if top := w.topToken(); w.st.groupFor(top) < 0 {
		items = append(items, MenuItem{
			Mode:   top,
			Label:  top,
			Color:  w.heatmapNext(),
			Picker: PickerTarget{Kind: PickHeatmapNext},
			Active: active(top),
		})
	}
	for i := range w.st.Groups {
		g := &w.st.Groups[i]
		items = append(items, MenuItem{
			Mode:   g.Tokens[0],
			Label:  g.Label(),
			Color:  g.Color,
			Picker: PickerTarget{Kind: PickGroup, Group: i},
			Border: g.Color,
			Active: active(g.Tokens[0]),
		})
	}
	return items
}

// ToggleColorMenu opens the color-mode menu, or closes it if it is open.
// Opening it closes the popup.
func (w *Widget) ToggleColorMenu() {
	if w.destroyed {
		return
	}
	w.ClosePopup()
	w.st.ColorPickerTarget = nil
	if w.st.MenuOpen {
		w.CloseColorMenu()
		return
	}
	w.st.MenuOpen = true
	w.captured = true
}

// CloseColorMenu closes the color-mode menu.
func (w *Widget) CloseColorMenu() {
	if !w.st.MenuOpen {
		return
	}
	w.st.MenuOpen = false
	w.captured = w.st.OpenPopup != nil
}

// SelectColorMode handles a click on a menu entry. A plain click makes
// mode the only active mode ("none" clears them all) and closes the menu;
// with a modifier held the mode is toggled and the menu stays open.
func (w *Widget) SelectColorMode(mode string, mods Modifiers) {
	if w.destroyed {
		return
	}
	if mods.Any() && mode != NoneMode {
		if i := slices.Index(w.st.ColorModes, mode); i >= 0 {
			w.st.ColorModes = slices.Delete(w.st.ColorModes, i, i+1)
		} else {
			w.st.ColorModes = append(w.st.ColorModes, mode)
		}
		return
	}
	if mode == NoneMode {
		w.st.ColorModes = []string{}
	} else {
		w.st.ColorModes = []string{mode}
	}
	w.CloseColorMenu()
}

// OpenColorPicker targets the color picker at t.
func (w *Widget) OpenColorPicker(t PickerTarget) {
	if w.destroyed {
		return
	}
	if t.Kind == PickGroup && (t.Group < 0 || t.Group >= len(w.st.Groups)) {
		return
	}
	w.st.ColorPickerTarget = &t
}

// PickColor applies color to the color picker's target and closes the
// picker.
func (w *Widget) PickColor(color string) {
	if w.destroyed || w.st.ColorPickerTarget == nil {
		return
	}
	w.SetTargetColor(*w.st.ColorPickerTarget, color)
	w.st.ColorPickerTarget = nil
}

// SetTargetColor recolors a heatmap or a group directly, as a menu swatch
// does. The palette cursor is never touched.
func (w *Widget) SetTargetColor(t PickerTarget, color string) {
	if w.destroyed || color == "" {
		return
	}
	switch t.Kind {
	case PickHeatmapBase:
		w.st.HeatmapBaseColor = &color
	case PickHeatmapNext:
		w.st.HeatmapNextColor = &color
	case PickGroup:
		if t.Group >= 0 && t.Group < len(w.st.Groups) {
			w.st.Groups[t.Group].Color = color
		}
	}
}

// BeginTitleEdit switches the title into editing.
func (w *Widget) BeginTitleEdit() {
	if w.destroyed {
		return
	}
	w.st.TitleEditing = true
}

// CommitTitle finishes editing with text. A blank title falls back to the
// prompt text.
func (w *Widget) CommitTitle(text string) {
	if w.destroyed {
		return
	}
	w.st.TitleEditing = false
	if t := strings.TrimSpace(text); t != "" {
		w.st.Title = t
		return
	}
	w.st.Title = strings.Join(promptTokens(w.data.Tokens), "")
}

// CancelTitleEdit abandons editing, keeping the old title.
func (w *Widget) CancelTitleEdit() {
	w.st.TitleEditing = false
}

// ColorButton describes the "colored by" button next to the title.
type ColorButton struct {
	Label      string
	Affordance Affordance
	// Tint is the background when a single pinned group is the mode.
	Tint string
}

// ColorButton resolves the label and look of the "colored by" button.
func (w *Widget) ColorButton() ColorButton {
	modes := w.st.ColorModes
	if len(modes) == 0 {
		return ColorButton{
			Label:      "(colored by None)",
			Affordance: AffordancePlaceholder,
		}
	}

	prefix := true
	var tint string
	labels := make([]string, len(modes))
	for i, mode := range modes {
		switch {
		case mode == TopMode:
			labels[i] = "top prediction"
		case w.st.groupFor(mode) >= 0:
			g := &w.st.Groups[w.st.groupFor(mode)]
			labels[i] = g.Label()
			if len(modes) == 1 {
				tint = Tint(g.Color)
			}
		default:
			labels[i] = VisualizeSpaces(mode, false)
		}
	}

	// a title that already ends with the prompt reads fine without the
	// "colored by" prefix when the mode is the predicted continuation
	if len(modes) == 1 && modes[0] != TopMode && modes[0] == w.topToken() {
		toks := promptTokens(w.data.Tokens)
		if len(toks) >= 3 {
			suffix := strings.Join(toks[len(toks)-3:], "")
			if suffix != "" && strings.HasSuffix(w.st.Title, suffix) {
				prefix = false
			}
		}
	}

	label := strings.Join(labels, " and ")
	if prefix {
		label = "colored by " + label
	}
	return ColorButton{
		Label:      "(" + label + ")",
		Affordance: AffordanceVisible,
		Tint:       tint,
	}
}
