package widget

import (
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/vito/logitlens/pkg/lens"
)

// ErrNoContainer is returned by Host.Create when the container reference
// doesn't resolve.
var ErrNoContainer = errors.New("container not found")

// Container is a place a widget can be mounted, along with its measured
// geometry. It implements Environment for the widget mounted in it.
type Container struct {
	ID        string
	Width     float64
	RowHeight float64
	Dark      bool

	widget *Widget
}

var _ Environment = containerEnv{}

// containerEnv adapts a Container to Environment. It reads the container
// live, so resizing a container is seen on the next relayout.
type containerEnv struct {
	c *Container
}

func (e containerEnv) ContainerWidth() float64 { return e.c.Width }
func (e containerEnv) RowHeight() float64      { return e.c.RowHeight }
func (e containerEnv) DarkScheme() bool        { return e.c.Dark }

// Widget returns the widget currently mounted in the container.
func (c *Container) Widget() *Widget {
	return c.widget
}

// Host owns the containers of one page and the widgets mounted in them,
// and dispatches events to widgets by instance id.
type Host struct {
	cfg    *Config
	logger *slog.Logger

	containers []*Container
	widgets    map[string]*Widget
}

// NewHost creates an empty host. cfg may be nil for defaults.
func NewHost(cfg *Config, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		cfg:     cfg,
		logger:  logger,
		widgets: map[string]*Widget{},
	}
}

// AddContainer registers a container with the given id and width.
func (h *Host) AddContainer(id string, width float64) *Container {
	if c, ok := h.Resolve(id); ok {
		c.Width = width
		return c
	}
	c := &Container{ID: id, Width: width}
	h.containers = append(h.containers, c)
	return c
}

// Resolve finds a container by id, accepting a "#id" selector too.
func (h *Host) Resolve(ref string) (*Container, bool) {
	id := strings.TrimPrefix(strings.TrimSpace(ref), "#")
	for _, c := range h.containers {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Create normalizes raw, builds a widget from it and mounts it in the
// container, replacing (and destroying) any widget already there. Nothing
// is registered on failure.
func (h *Host) Create(container string, raw *lens.Raw, snap *Snapshot) (*Widget, error) {
	c, ok := h.Resolve(container)
	if !ok {
		h.logger.Error("cannot create widget", "container", container, "error", ErrNoContainer)
		return nil, ErrNoContainer
	}

	data, err := lens.Normalize(raw)
	if err != nil {
		h.logger.Error("cannot create widget", "container", container, "error", err)
		return nil, err
	}

	w, err := New(data, snap, Options{
		Config: h.cfg,
		Env:    containerEnv{c},
		Logger: h.logger,
	})
	if err != nil {
		h.logger.Error("cannot create widget", "container", container, "error", err)
		return nil, err
	}

	if prev := c.widget; prev != nil {
		h.Destroy(prev.ID())
	}
	c.widget = w
	h.widgets[w.ID()] = w
	h.logger.Debug("created widget", "container", c.ID, "id", w.ID())
	return w, nil
}

// Widget looks up a live widget by instance id.
func (h *Host) Widget(id string) (*Widget, bool) {
	w, ok := h.widgets[id]
	return w, ok
}

// Widgets returns the live widgets in container order.
func (h *Host) Widgets() []*Widget {
	var ws []*Widget
	for _, c := range h.containers {
		if c.widget != nil {
			ws = append(ws, c.widget)
		}
	}
	return ws
}

// Dispatch delivers ev to the widget with the given id. Pointer moves and
// pointer-ups are document-level and should go through Broadcast instead.
func (h *Host) Dispatch(id string, ev Event) bool {
	w, ok := h.widgets[id]
	if !ok {
		return false
	}
	return w.Handle(ev)
}

// Broadcast delivers a document-level event to every widget, so a drag
// keeps tracking (and ends) wherever the pointer goes.
func (h *Host) Broadcast(ev Event) bool {
	consumed := false
	for _, w := range h.Widgets() {
		if w.Handle(ev) {
			consumed = true
		}
	}
	return consumed
}

// Resize updates a container's width and relayouts its widget.
func (h *Host) Resize(container string, width float64) {
	c, ok := h.Resolve(container)
	if !ok {
		return
	}
	c.Width = width
	if c.widget != nil {
		c.widget.relayout()
	}
}

// Destroy tears down the widget with the given id and unmounts it.
func (h *Host) Destroy(id string) {
	w, ok := h.widgets[id]
	if !ok {
		return
	}
	w.Destroy()
	delete(h.widgets, id)
	for _, c := range h.containers {
		if c.widget == w {
			c.widget = nil
		}
	}
}
