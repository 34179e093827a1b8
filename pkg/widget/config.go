package widget

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the name searched for by FindConfig.
const ConfigFile = "logitlens.toml"

// DefaultTitle is used when neither a snapshot nor the config sets one.
const DefaultTitle = "Logit Lens: Top Predictions by Layer"

// Config holds the tunable constants of a widget. Every field has a
// default (see DefaultConfig); a logitlens.toml only needs to name the
// values it changes.
type Config struct {
	// Title replaces DefaultTitle for widgets created without a snapshot
	// title.
	Title string `toml:"title,omitempty"`

	// Palette is cycled through when groups are created automatically.
	Palette []string `toml:"palette,omitempty"`

	// HeatmapBase and HeatmapNext are the default colors for the "top"
	// color mode and for a specific token color mode.
	HeatmapBase string `toml:"heatmap_base,omitempty"`
	HeatmapNext string `toml:"heatmap_next,omitempty"`

	// ContainerWidth is assumed when the host cannot measure the container.
	ContainerWidth float64 `toml:"container_width,omitempty"`

	Limits   Limits     `toml:"limits"`
	AutoPin  Thresholds `toml:"autopin"`
	FontSize FontSize   `toml:"font_size"`
}

// Limits bounds every resizable dimension, in pixels.
type Limits struct {
	MinCellWidth   float64 `toml:"min_cell_width"`
	MaxCellWidth   float64 `toml:"max_cell_width"`
	MinInputWidth  float64 `toml:"min_input_width"`
	MaxInputWidth  float64 `toml:"max_input_width"`
	MinChartHeight float64 `toml:"min_chart_height"`
	MaxChartHeight float64 `toml:"max_chart_height"`
}

// Thresholds control the auto-pin heuristic applied when a row is pinned.
type Thresholds struct {
	// GroupFloor: auto-pin only runs when every pinned group peaks below
	// this probability at the row's position.
	GroupFloor float64 `toml:"group_floor"`
	// MinLayer is the first layer searched for a candidate token.
	MinLayer int `toml:"min_layer"`
	// MinProb is the lowest probability a candidate may have.
	MinProb float64 `toml:"min_prob"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Title: DefaultTitle,
		Palette: []string{
			"#2196F3", "#e91e63", "#4CAF50", "#FF9800",
			"#9C27B0", "#00BCD4", "#F44336", "#8BC34A",
		},
		HeatmapBase:    "#8844ff",
		HeatmapNext:    "#cc6622",
		ContainerWidth: 900,
		Limits: Limits{
			MinCellWidth:   10,
			MaxCellWidth:   200,
			MinInputWidth:  40,
			MaxInputWidth:  200,
			MinChartHeight: 60,
			MaxChartHeight: 400,
		},
		AutoPin: Thresholds{
			GroupFloor: 0.01,
			MinLayer:   2,
			MinProb:    0.05,
		},
		FontSize: DefaultFontSize(),
	}
}

// LoadConfig decodes a logitlens.toml on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &config, nil
}

// FindConfig searches for a logitlens.toml starting from dir and walking up
// to parent directories, stopping at a .git boundary. Returns ("", nil, nil)
// if none is found.
func FindConfig(dir string) (string, *Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, ConfigFile)
		if _, err := os.Stat(path); err == nil {
			config, err := LoadConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// Validate reports configurations that would make clamping meaningless.
func (c Config) Validate() error {
	l := c.Limits
	switch {
	case len(c.Palette) == 0:
		return fmt.Errorf("palette must not be empty")
	case l.MinCellWidth <= 0 || l.MinCellWidth > l.MaxCellWidth:
		return fmt.Errorf("invalid cell width bounds [%g, %g]", l.MinCellWidth, l.MaxCellWidth)
	case l.MinInputWidth <= 0 || l.MinInputWidth > l.MaxInputWidth:
		return fmt.Errorf("invalid input width bounds [%g, %g]", l.MinInputWidth, l.MaxInputWidth)
	case l.MinChartHeight <= 0 || l.MinChartHeight > l.MaxChartHeight:
		return fmt.Errorf("invalid chart height bounds [%g, %g]", l.MinChartHeight, l.MaxChartHeight)
	case c.AutoPin.MinLayer < 0:
		return fmt.Errorf("autopin.min_layer must be >= 0")
	}
	return nil
}
