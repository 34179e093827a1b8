// Package lens holds the canonical logit lens data model and the
// normalizer that produces it from either of the two input schemas.
package lens

// Data is the canonical, read-only model every widget renders. It is never
// mutated after Normalize returns it.
type Data struct {
	// Layers are the layer labels, one per column, in model order.
	Layers []int `json:"layers"`
	// Tokens are the input tokens, one per position.
	Tokens []string `json:"tokens"`
	// Cells is indexed [position][layer].
	Cells [][]Cell `json:"cells"`
	// Meta is passed through untouched from the input.
	Meta map[string]any `json:"meta,omitempty"`
}

// Cell is the lens output at one (position, layer).
type Cell struct {
	Token      string       `json:"token" yaml:"token"`
	Prob       float64      `json:"prob" yaml:"prob"`
	Trajectory []float64    `json:"trajectory" yaml:"trajectory"`
	TopK       []Prediction `json:"topk" yaml:"topk"`
}

// Prediction is one entry of a cell's top-k list.
type Prediction struct {
	Token      string    `json:"token" yaml:"token"`
	Prob       float64   `json:"prob" yaml:"prob"`
	Trajectory []float64 `json:"trajectory" yaml:"trajectory"`
}

// NumLayers returns the number of layers.
func (d *Data) NumLayers() int {
	return len(d.Layers)
}

// NumPositions returns the number of input positions.
func (d *Data) NumPositions() int {
	return len(d.Tokens)
}

// Cell returns the cell at (pos, layer), or false if either index is out
// of range. Callers holding a reference that may have gone stale use this
// instead of indexing directly.
func (d *Data) Cell(pos, layer int) (*Cell, bool) {
	if pos < 0 || pos >= len(d.Cells) {
		return nil, false
	}
	row := d.Cells[pos]
	if layer < 0 || layer >= len(row) {
		return nil, false
	}
	return &row[layer], true
}

// LastLayer returns the index of the final layer.
func (d *Data) LastLayer() int {
	return len(d.Layers) - 1
}

// LastPosition returns the index of the final position.
func (d *Data) LastPosition() int {
	return len(d.Tokens) - 1
}

// FinalPrediction is the model's actual output: the top-1 token at the
// last layer of the last position.
func (d *Data) FinalPrediction() string {
	c, ok := d.Cell(d.LastPosition(), d.LastLayer())
	if !ok {
		return ""
	}
	return c.Token
}

// TrajectoryFor returns the probability of token at each layer for the
// given position, taken from the first layer where the token shows up as
// top-1 or in the top-k list. A token that never appears yields zeros.
func (d *Data) TrajectoryFor(token string, pos int) []float64 {
	n := d.NumLayers()
	if pos < 0 || pos >= len(d.Cells) {
		return make([]float64, n)
	}
	for li := range d.Cells[pos] {
		c := &d.Cells[pos][li]
		if c.Token == token {
			return padTrajectory(c.Trajectory, n)
		}
		for _, p := range c.TopK {
			if p.Token == token {
				return padTrajectory(p.Trajectory, n)
			}
		}
	}
	return make([]float64, n)
}

func padTrajectory(traj []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, traj)
	return out
}
