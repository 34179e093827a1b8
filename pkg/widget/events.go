package widget

import (
	"strconv"

	"golang.org/x/net/html"
)

// TargetKind is the kind of element an event landed on.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetPredCell
	TargetInputToken
	TargetColumnHandle
	TargetInputHandle
	TargetYAxis
	TargetXAxis
	TargetLayerTick
	TargetBottomEdge
	TargetRightEdge
	TargetPopupEntry
	TargetPopupClose
	TargetColorButton
	TargetMenuItem
	TargetMenuSwatch
	TargetTitle
	TargetLegendGroup
	TargetLegendRow
	TargetCapture
)

var targetNames = map[TargetKind]string{
	TargetNone:         "none",
	TargetPredCell:     "pred-cell",
	TargetInputToken:   "input-token",
	TargetColumnHandle: "column-handle",
	TargetInputHandle:  "input-handle",
	TargetYAxis:        "y-axis",
	TargetXAxis:        "x-axis",
	TargetLayerTick:    "layer-tick",
	TargetBottomEdge:   "bottom-edge",
	TargetRightEdge:    "right-edge",
	TargetPopupEntry:   "popup-entry",
	TargetPopupClose:   "popup-close",
	TargetColorButton:  "color-button",
	TargetMenuItem:     "menu-item",
	TargetMenuSwatch:   "menu-swatch",
	TargetTitle:        "title",
	TargetLegendGroup:  "legend-group",
	TargetLegendRow:    "legend-row",
	TargetCapture:      "capture",
}

// String is the kebab-case name used in data-target attributes.
func (k TargetKind) String() string {
	return targetNames[k]
}

// ParseTargetKind maps a data-target attribute back to a kind.
func ParseTargetKind(name string) TargetKind {
	for k, n := range targetNames {
		if n == name {
			return k
		}
	}
	return TargetNone
}

// Target identifies the element under the pointer.
type Target struct {
	Kind  TargetKind
	Pos   int
	Layer int
	// Index is the column index for column handles, the entry index for
	// popup entries, menu items and swatches, and the group or row index
	// for legend entries.
	Index int
	Mode  string
}

// TargetOf finds the target for a rendered node, walking up to the nearest
// element carrying a data-target attribute.
func TargetOf(n *html.Node) Target {
	for ; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		kind, ok := attr(n, "data-target")
		if !ok {
			continue
		}
		t := Target{Kind: ParseTargetKind(kind)}
		t.Pos = intAttr(n, "data-pos")
		t.Layer = intAttr(n, "data-li")
		t.Index = intAttr(n, "data-idx")
		t.Mode, _ = attr(n, "data-mode")
		return t
	}
	return Target{}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func intAttr(n *html.Node, key string) int {
	v, ok := attr(n, key)
	if !ok {
		return 0
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return i
}

// EventKind is the kind of input event.
type EventKind int

const (
	PointerDown EventKind = iota + 1
	PointerMove
	PointerUp
	Click
	Hover
	Leave
	Key
)

// Event is one input event delivered to a widget.
type Event struct {
	Kind   EventKind
	Target Target
	X, Y   float64
	Mods   Modifiers
	// Color is the picked value for TargetMenuSwatch clicks.
	Color string
	// Key and Text carry Key events: "enter" commits Text as the title
	// being edited, "escape" abandons the edit.
	Key  string
	Text string
}

// Handle applies ev and reports whether the widget consumed it.
func (w *Widget) Handle(ev Event) bool {
	if w.destroyed {
		return false
	}
	switch ev.Kind {
	case PointerDown:
		return w.pointerDown(ev)
	case PointerMove:
		return w.MoveDrag(ev.X, ev.Y)
	case PointerUp:
		_, dragging := w.Dragging()
		w.EndDrag()
		return dragging
	case Click:
		if w.swallowClick {
			w.swallowClick = false
			return true
		}
		return w.click(ev)
	case Hover:
		w.hover(ev.Target)
		return true
	case Leave:
		w.Leave()
		return true
	case Key:
		return w.key(ev)
	}
	return false
}

func (w *Widget) key(ev Event) bool {
	if !w.st.TitleEditing {
		return false
	}
	switch ev.Key {
	case "enter":
		w.CommitTitle(ev.Text)
	case "escape":
		w.CancelTitleEdit()
	default:
		return false
	}
	return true
}

func (w *Widget) pointerDown(ev Event) bool {
	w.swallowClick = false
	t := ev.Target

	if w.captured && !insideOverlay(t.Kind) {
		// the capture layer covers everything else on screen
		w.DismissCapture()
		w.swallowClick = true
		return true
	}

	switch t.Kind {
	case TargetColumnHandle:
		return w.BeginDrag(DragColumn, ev.X, ev.Y, t.Index)
	case TargetInputHandle:
		return w.BeginDrag(DragInputColumn, ev.X, ev.Y, 0)
	case TargetYAxis:
		return w.BeginDrag(DragYAxis, ev.X, ev.Y, 0)
	case TargetXAxis:
		return w.BeginDrag(DragChartHeight, ev.X, ev.Y, 0)
	case TargetLayerTick:
		return w.BeginDrag(DragLayerZoom, ev.X, ev.Y, t.Layer)
	case TargetBottomEdge:
		return w.BeginDrag(DragRows, ev.X, ev.Y, 0)
	case TargetRightEdge:
		return w.BeginDrag(DragTableWidth, ev.X, ev.Y, 0)
	}
	return false
}

// insideOverlay reports whether a target belongs to the popup or menu
// themselves, which sit above the capture layer.
func insideOverlay(k TargetKind) bool {
	switch k {
	case TargetPopupEntry, TargetPopupClose, TargetMenuItem, TargetMenuSwatch:
		return true
	}
	return false
}

func (w *Widget) click(ev Event) bool {
	t := ev.Target
	switch t.Kind {
	case TargetPredCell:
		w.ClickCell(t.Pos, t.Layer, ev.Mods)
	case TargetInputToken:
		w.ClickInputToken(t.Pos)
	case TargetPopupEntry:
		w.ClickPopupEntry(t.Index, ev.Mods)
	case TargetPopupClose:
		w.ClosePopup()
	case TargetColorButton:
		w.ToggleColorMenu()
	case TargetMenuItem:
		w.SelectColorMode(t.Mode, ev.Mods)
	case TargetMenuSwatch:
		items := w.MenuItems()
		if t.Index < 0 || t.Index >= len(items) {
			return false
		}
		w.SetTargetColor(items[t.Index].Picker, ev.Color)
	case TargetTitle:
		w.BeginTitleEdit()
	case TargetLegendGroup:
		w.RemoveGroup(t.Index)
	case TargetLegendRow:
		w.UnpinRow(t.Index)
	default:
		return false
	}
	return true
}

func (w *Widget) hover(t Target) {
	switch t.Kind {
	case TargetPredCell:
		w.HoverCell(t.Pos, t.Layer)
	case TargetInputToken:
		w.HoverInputToken(t.Pos)
	case TargetPopupEntry:
		w.HoverPopupEntry(t.Index)
	default:
		w.ClearHover()
	}
}
