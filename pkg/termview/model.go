// Package termview hosts a logit lens widget in a terminal. It is a
// bubbletea program: keys and mouse events are mapped onto the widget's
// controller operations, and the table, chart and popups are drawn with
// lipgloss.
package termview

import (
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/vito/logitlens/pkg/lens"
	"github.com/vito/logitlens/pkg/widget"
)

// The widget lays itself out in pixels. One terminal cell stands in for
// pxPerCol by pxPerRow pixels.
const (
	pxPerCol = 8
	pxPerRow = 20
)

const containerID = "term"

// Options configure a terminal view.
type Options struct {
	Config *widget.Config
	Logger *slog.Logger
	// Dark selects the dark color scheme.
	Dark bool
	// Width is the initial terminal width, before the first resize.
	Width int
}

// Model is the bubbletea model for one widget.
type Model struct {
	host   *widget.Host
	widget *widget.Widget
	logger *slog.Logger

	width  int
	height int

	// cursor over the visible table; -1 means the last row or column
	row, col int

	popupIdx int
	menuIdx  int

	// edit is the title being typed while the widget is editing its title
	edit string

	// pressed is set between a mouse press and its release
	pressed bool

	zones []zone
}

var _ tea.Model = (*Model)(nil)

// New builds a widget from raw lens data and mounts it in a terminal
// container.
func New(raw *lens.Raw, snap *widget.Snapshot, opts Options) (*Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	host := widget.NewHost(opts.Config, logger)
	c := host.AddContainer(containerID, float64(opts.Width*pxPerCol))
	c.RowHeight = pxPerRow
	c.Dark = opts.Dark

	w, err := host.Create(containerID, raw, snap)
	if err != nil {
		return nil, err
	}
	return &Model{
		host:   host,
		widget: w,
		logger: logger,
		width:  opts.Width,
		row:    -1,
		col:    -1,
	}, nil
}

// Widget returns the hosted widget, e.g. to save its state on exit.
func (m *Model) Widget() *widget.Widget {
	return m.widget
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.host.Resize(containerID, float64(msg.Width*pxPerCol))
		return m, nil

	case tea.KeyPressMsg:
		return m, m.press(msg)

	case tea.MouseClickMsg:
		m.mouseDown(msg.Mouse())
		return m, nil

	case tea.MouseMotionMsg:
		m.mouseMove(msg.Mouse())
		return m, nil

	case tea.MouseReleaseMsg:
		m.mouseUp(msg.Mouse())
		return m, nil
	}
	return m, nil
}

func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	return v
}

// cursor returns the clamped cursor as indices into the visible rows and
// columns.
func (m *Model) cursor() (int, int) {
	rows := len(m.widget.VisiblePositions())
	cols := len(m.widget.Peek().VisibleLayers)
	row, col := m.row, m.col
	if row < 0 || row >= rows {
		row = rows - 1
	}
	if col < 0 || col >= cols {
		col = cols - 1
	}
	return row, col
}

// cursorCell returns the (pos, layer) under the cursor.
func (m *Model) cursorCell() (int, int) {
	row, col := m.cursor()
	return m.widget.VisiblePositions()[row], m.widget.Peek().VisibleLayers[col]
}

func (m *Model) moveCursor(dRow, dCol int) {
	row, col := m.cursor()
	rows := len(m.widget.VisiblePositions())
	cols := len(m.widget.Peek().VisibleLayers)
	m.row = max(0, min(rows-1, row+dRow))
	m.col = max(0, min(cols-1, col+dCol))
	m.widget.HoverCell(m.cursorCell())
}

func (m *Model) press(msg tea.KeyPressMsg) tea.Cmd {
	w := m.widget
	st := w.Peek()
	key := msg.String()

	if st.TitleEditing {
		m.editTitle(key, msg.Text)
		return nil
	}

	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc", "escape":
		w.DismissCapture()
		return nil
	}

	switch {
	case st.OpenPopup != nil:
		m.popupKey(key)
	case st.MenuOpen:
		m.menuKey(key)
	default:
		m.tableKey(key)
	}
	return nil
}

func (m *Model) editTitle(key, text string) {
	switch key {
	case "enter":
		m.widget.Handle(widget.Event{Kind: widget.Key, Key: "enter", Text: m.edit})
	case "esc", "escape":
		m.widget.Handle(widget.Event{Kind: widget.Key, Key: "escape"})
	case "backspace":
		if r := []rune(m.edit); len(r) > 0 {
			m.edit = string(r[:len(r)-1])
		}
	default:
		m.edit += text
	}
}

func (m *Model) popupKey(key string) {
	w := m.widget
	ref := *w.Peek().OpenPopup
	cell, ok := w.Data().Cell(ref.Pos, ref.Layer)
	if !ok {
		w.ClosePopup()
		return
	}
	n := len(cell.TopK)
	switch key {
	case "up", "k":
		m.popupIdx = max(0, m.popupIdx-1)
		w.HoverPopupEntry(m.popupIdx)
	case "down", "j":
		m.popupIdx = max(0, min(n-1, m.popupIdx+1))
		w.HoverPopupEntry(m.popupIdx)
	case "enter", "space":
		w.ClickPopupEntry(m.popupIdx, widget.Modifiers{})
	case "p", "shift+enter":
		w.ClickPopupEntry(m.popupIdx, widget.Modifiers{Shift: true})
	case "x":
		w.ClosePopup()
	}
}

func (m *Model) menuKey(key string) {
	w := m.widget
	items := w.MenuItems()
	// the trailing "none" entry follows the items
	n := len(items) + 1
	mode := widget.NoneMode
	if m.menuIdx < len(items) {
		mode = items[m.menuIdx].Mode
	}
	switch key {
	case "up", "k":
		m.menuIdx = max(0, m.menuIdx-1)
	case "down", "j":
		m.menuIdx = min(n-1, m.menuIdx+1)
	case "enter", "space":
		w.SelectColorMode(mode, widget.Modifiers{})
	case "p", "shift+enter":
		w.SelectColorMode(mode, widget.Modifiers{Shift: true})
	case "s":
		if m.menuIdx < len(items) {
			w.SetTargetColor(items[m.menuIdx].Picker, m.nextColor(items[m.menuIdx].Color))
		}
	case "c":
		w.CloseColorMenu()
	}
}

func (m *Model) tableKey(key string) {
	w := m.widget
	st := w.Peek()
	switch key {
	case "up", "k":
		m.moveCursor(-1, 0)
	case "down", "j":
		m.moveCursor(1, 0)
	case "left", "h":
		m.moveCursor(0, -1)
	case "right", "l":
		m.moveCursor(0, 1)
	case "enter", "space":
		pos, li := m.cursorCell()
		m.popupIdx = 0
		w.ClickCell(pos, li, widget.Modifiers{})
	case "p":
		pos, li := m.cursorCell()
		w.ClickCell(pos, li, widget.Modifiers{Shift: true})
	case "r":
		pos, _ := m.cursorCell()
		w.ClickInputToken(pos)
	case "c":
		m.menuIdx = 0
		w.ToggleColorMenu()
	case "t":
		m.edit = st.Title
		w.BeginTitleEdit()
	case "d":
		dark := !w.DarkMode()
		w.SetDarkMode(&dark)
	case "+", "=":
		cell := st.CellWidth + pxPerCol
		w.SetColumnState(widget.ColumnState{CellWidth: &cell}, false)
	case "-":
		cell := st.CellWidth - pxPerCol
		w.SetColumnState(widget.ColumnState{CellWidth: &cell}, false)
	case ">":
		input := st.InputTokenWidth + pxPerCol
		w.SetColumnState(widget.ColumnState{InputTokenWidth: &input}, false)
	case "<":
		input := st.InputTokenWidth - pxPerCol
		w.SetColumnState(widget.ColumnState{InputTokenWidth: &input}, false)
	case "]":
		m.keyDrag(widget.DragRows, 0, 0, pxPerRow)
	case "[":
		m.keyDrag(widget.DragRows, 0, 0, -pxPerRow)
	case "}":
		m.keyDrag(widget.DragChartHeight, 0, 0, pxPerRow)
	case "{":
		m.keyDrag(widget.DragChartHeight, 0, 0, -pxPerRow)
	case "z":
		_, li := m.cursorCell()
		m.keyDrag(widget.DragLayerZoom, li, -2*pxPerCol, 0)
	case "Z":
		_, li := m.cursorCell()
		m.keyDrag(widget.DragLayerZoom, li, 2*pxPerCol, 0)
	}
}

// keyDrag performs a whole drag from the keyboard.
func (m *Model) keyDrag(kind widget.DragKind, index int, dx, dy float64) {
	w := m.widget
	if !w.BeginDrag(kind, 0, 0, index) {
		return
	}
	w.MoveDrag(dx, dy)
	w.EndDrag()
}

// nextColor cycles a menu entry's color through the palette.
func (m *Model) nextColor(current string) string {
	colors := widget.DefaultConfig().Palette
	for i, c := range colors {
		if strings.EqualFold(c, current) {
			return colors[(i+1)%len(colors)]
		}
	}
	return colors[0]
}

func modifiers(mod tea.KeyMod) widget.Modifiers {
	return widget.Modifiers{
		Shift: mod&tea.ModShift != 0,
		Ctrl:  mod&tea.ModCtrl != 0,
		Meta:  mod&(tea.ModAlt|tea.ModMeta) != 0,
	}
}

func (m *Model) mouseDown(mouse tea.Mouse) {
	if mouse.Button != tea.MouseLeft {
		return
	}
	t, inert := m.targetAt(mouse.X, mouse.Y)
	if inert {
		return
	}
	m.pressed = true
	m.widget.Handle(widget.Event{
		Kind:   widget.PointerDown,
		Target: t,
		X:      float64(mouse.X * pxPerCol),
		Y:      float64(mouse.Y * pxPerRow),
		Mods:   modifiers(mouse.Mod),
	})
}

func (m *Model) mouseMove(mouse tea.Mouse) {
	if _, dragging := m.widget.Dragging(); dragging {
		m.widget.Handle(widget.Event{
			Kind: widget.PointerMove,
			X:    float64(mouse.X * pxPerCol),
			Y:    float64(mouse.Y * pxPerRow),
		})
		return
	}
	t, inert := m.targetAt(mouse.X, mouse.Y)
	if inert {
		return
	}
	m.widget.Handle(widget.Event{Kind: widget.Hover, Target: t})
}

func (m *Model) mouseUp(mouse tea.Mouse) {
	w := m.widget
	if _, dragging := w.Dragging(); dragging {
		w.Handle(widget.Event{Kind: widget.PointerUp})
		m.pressed = false
		return
	}
	if !m.pressed {
		return
	}
	m.pressed = false

	t, inert := m.targetAt(mouse.X, mouse.Y)
	if inert {
		return
	}
	ev := widget.Event{Kind: widget.Click, Target: t, Mods: modifiers(mouse.Mod)}
	switch t.Kind {
	case widget.TargetMenuSwatch:
		if items := w.MenuItems(); t.Index >= 0 && t.Index < len(items) {
			ev.Color = m.nextColor(items[t.Index].Color)
		}
	case widget.TargetPredCell:
		m.popupIdx = 0
	case widget.TargetColorButton:
		m.menuIdx = 0
	}
	wasEditing := w.Peek().TitleEditing
	w.Handle(ev)
	if !wasEditing && w.Peek().TitleEditing {
		m.edit = w.Peek().Title
	}
}
