package widget

import (
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

// LineStyle is the dash pattern used for one pinned row's trajectories.
type LineStyle int

const (
	Solid LineStyle = iota
	Dashed
	Dotted
	DashDot
)

// lineStyles lists the styles in the order rows are assigned them.
var lineStyles = []LineStyle{Solid, Dashed, Dotted, DashDot}

var lineStyleNames = map[LineStyle]string{
	Solid:   "solid",
	Dashed:  "dashed",
	Dotted:  "dotted",
	DashDot: "dash-dot",
}

var lineStyleDashes = map[LineStyle]string{
	Solid:   "",
	Dashed:  "8,4",
	Dotted:  "2,3",
	DashDot: "8,4,2,4",
}

// Name is the snapshot name: "solid", "dashed", "dotted" or "dash-dot".
func (s LineStyle) Name() string {
	return lineStyleNames[s]
}

func (s LineStyle) String() string {
	return s.Name()
}

// Dash returns the SVG dash pattern at the given scale, or "" for solid.
func (s LineStyle) Dash(scale float64) string {
	pattern := lineStyleDashes[s]
	if pattern == "" {
		return ""
	}
	parts := strings.Split(pattern, ",")
	for i, p := range parts {
		v, _ := strconv.ParseFloat(p, 64)
		parts[i] = fmtNum(v * scale)
	}
	return strings.Join(parts, ",")
}

// ParseLineStyle maps a snapshot name back to a style. Hand-edited
// spellings like "DashDot" or "dash_dot" are accepted too. Unknown names
// fall back to Solid.
func ParseLineStyle(name string) LineStyle {
	name = strcase.ToKebab(strings.TrimSpace(name))
	for _, s := range lineStyles {
		if s.Name() == name {
			return s
		}
	}
	return Solid
}

// Group is a set of tokens tracked together as one summed trajectory.
// Tokens keeps insertion order and is never empty while the group exists.
type Group struct {
	Tokens []string `json:"tokens"`
	Color  string   `json:"color"`
}

// Has reports whether the group contains token.
func (g *Group) Has(token string) bool {
	for _, t := range g.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

func (g *Group) remove(token string) {
	kept := g.Tokens[:0]
	for _, t := range g.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	g.Tokens = kept
}

// Label joins the group's tokens with "+", making edge spaces visible.
func (g *Group) Label() string {
	labels := make([]string, len(g.Tokens))
	for i, t := range g.Tokens {
		labels[i] = VisualizeSpaces(t, false)
	}
	return strings.Join(labels, "+")
}

// PinnedRow is a position whose trajectories stay on the chart.
type PinnedRow struct {
	Pos   int
	Style LineStyle
}

// CellRef points at one prediction cell.
type CellRef struct {
	Pos   int
	Layer int
}

// PickerKind says what a color picker edits.
type PickerKind int

const (
	PickHeatmapBase PickerKind = iota
	PickHeatmapNext
	PickGroup
)

// PickerTarget is what an open color picker will recolor.
type PickerTarget struct {
	Kind  PickerKind
	Group int
}

// FontSize holds CSS font sizes, e.g. "16px". Empty means default.
type FontSize struct {
	Title   string `toml:"title" json:"title"`
	Content string `toml:"content" json:"content"`
}

// DefaultFontSize is what a widget reports when nothing was set.
func DefaultFontSize() FontSize {
	return FontSize{Title: "16px", Content: "10px"}
}

// ContentPx parses the content size as pixels, falling back to 10.
func (f FontSize) ContentPx() float64 {
	s := strings.TrimSpace(f.Content)
	if !strings.HasSuffix(s, "px") {
		return 10
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	if err != nil || v <= 0 {
		return 10
	}
	return v
}

// Affordance is how the "colored by" button presents itself.
type Affordance int

const (
	// AffordanceVisible is a normal labelled button.
	AffordanceVisible Affordance = iota
	// AffordancePlaceholder is an invisible button that still reacts to
	// clicks, used when no color mode is active.
	AffordancePlaceholder
)

func (a Affordance) String() string {
	if a == AffordancePlaceholder {
		return "placeholder"
	}
	return "visible"
}

// State is all mutable state of one widget. It is owned by exactly one
// Widget and never shared.
type State struct {
	// Layout knobs. A nil pointer means "automatic".
	ChartHeight     *float64
	InputTokenWidth float64
	CellWidth       float64
	MaxRows         *int
	MaxTableWidth   *float64
	PlotMinLayer    float64

	// Cached by relayout; the renderer reads these, never computes them.
	VisibleLayers []int
	Stride        int

	// Interaction.
	OpenPopup         *CellRef
	Selected          *CellRef
	HoverPos          int
	Hover             *HoverTrace
	MenuOpen          bool
	ColorPickerTarget *PickerTarget
	TitleEditing      bool

	Groups     []Group
	Rows       []PinnedRow
	LastGroup  int
	ColorIndex int

	ColorModes       []string
	HeatmapBaseColor *string
	HeatmapNextColor *string

	Title            string
	DarkModeOverride *bool
	FontSize         FontSize
}

// HoverTrace is the transient grey trajectory drawn while hovering a cell,
// a popup entry or an input token.
type HoverTrace struct {
	Token      string
	Pos        int
	Trajectory []float64
}

func (s *State) groupFor(token string) int {
	for i := range s.Groups {
		if s.Groups[i].Has(token) {
			return i
		}
	}
	return -1
}

func (s *State) rowFor(pos int) int {
	for i, r := range s.Rows {
		if r.Pos == pos {
			return i
		}
	}
	return -1
}

// rowStyle returns the style for pos, or Solid if pos isn't pinned.
func (s *State) rowStyle(pos int) LineStyle {
	if i := s.rowFor(pos); i >= 0 {
		return s.Rows[i].Style
	}
	return Solid
}
