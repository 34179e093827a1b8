package lens

import (
	"github.com/pkg/errors"
)

var (
	// ErrMissingLayers is returned when the input has no layers field.
	ErrMissingLayers = errors.New("lens data is missing layers")
	// ErrMissingTokens is returned when the input has neither tokens nor input.
	ErrMissingTokens = errors.New("lens data is missing tokens (or input)")
)

// Raw is the union of the two accepted input schemas. The canonical schema
// carries Cells directly; the compact schema carries TopK and Tracked and
// leaves Cells empty.
type Raw struct {
	Layers []int    `json:"layers" yaml:"layers"`
	Tokens []string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Input  []string `json:"input,omitempty" yaml:"input,omitempty"`

	// Canonical schema.
	Cells [][]Cell `json:"cells,omitempty" yaml:"cells,omitempty"`

	// Compact schema: TopK is indexed [layer][position] and lists tokens in
	// descending probability; Tracked is indexed [position] and maps a
	// token to its per-layer trajectory.
	TopK    [][][]string           `json:"topk,omitempty" yaml:"topk,omitempty"`
	Tracked []map[string][]float64 `json:"tracked,omitempty" yaml:"tracked,omitempty"`

	Meta map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Normalize converts raw input into the canonical model. It never returns a
// partially built model: on error the result is nil.
func Normalize(raw *Raw) (*Data, error) {
	if raw == nil || raw.Layers == nil {
		return nil, ErrMissingLayers
	}
	tokens := raw.Tokens
	if tokens == nil {
		tokens = raw.Input
	}
	if tokens == nil {
		return nil, ErrMissingTokens
	}
	if len(raw.Layers) == 0 {
		return nil, errors.Wrap(ErrMissingLayers, "layers is empty")
	}
	if len(tokens) == 0 {
		return nil, errors.Wrap(ErrMissingTokens, "tokens is empty")
	}

	if raw.Cells != nil {
		if err := checkShape(raw.Cells, len(tokens), len(raw.Layers)); err != nil {
			return nil, err
		}
		return &Data{
			Layers: raw.Layers,
			Tokens: tokens,
			Cells:  raw.Cells,
			Meta:   raw.Meta,
		}, nil
	}

	nLayers := len(raw.Layers)
	cells := make([][]Cell, len(tokens))
	for pos := range tokens {
		var tracked map[string][]float64
		if pos < len(raw.Tracked) {
			tracked = raw.Tracked[pos]
		}

		row := make([]Cell, nLayers)
		for li := 0; li < nLayers; li++ {
			var toks []string
			if li < len(raw.TopK) && pos < len(raw.TopK[li]) {
				toks = raw.TopK[li][pos]
			}

			topk := make([]Prediction, 0, len(toks))
			for _, tok := range toks {
				traj, ok := tracked[tok]
				if !ok {
					traj = make([]float64, nLayers)
				}
				var prob float64
				if li < len(traj) {
					prob = traj[li]
				}
				topk = append(topk, Prediction{
					Token:      tok,
					Prob:       prob,
					Trajectory: traj,
				})
			}

			cell := Cell{Trajectory: []float64{}, TopK: topk}
			if len(topk) > 0 {
				cell.Token = topk[0].Token
				cell.Prob = topk[0].Prob
				cell.Trajectory = topk[0].Trajectory
			}
			row[li] = cell
		}
		cells[pos] = row
	}

	meta := raw.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	return &Data{
		Layers: raw.Layers,
		Tokens: tokens,
		Cells:  cells,
		Meta:   meta,
	}, nil
}

func checkShape(cells [][]Cell, nPositions, nLayers int) error {
	if len(cells) != nPositions {
		return errors.Errorf("cells has %d rows, expected one per token (%d)", len(cells), nPositions)
	}
	for pos, row := range cells {
		if len(row) != nLayers {
			return errors.Errorf("cells[%d] has %d layers, expected %d", pos, len(row), nLayers)
		}
	}
	return nil
}
