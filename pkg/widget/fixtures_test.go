package widget

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vito/logitlens/pkg/lens"
)

type fakeEnv struct {
	width float64
	row   float64
	dark  bool
}

func (e fakeEnv) ContainerWidth() float64 { return e.width }
func (e fakeEnv) RowHeight() float64      { return e.row }
func (e fakeEnv) DarkScheme() bool        { return e.dark }

func pred(token string, prob float64, traj ...float64) lens.Prediction {
	return lens.Prediction{Token: token, Prob: prob, Trajectory: traj}
}

func cellOf(topk ...lens.Prediction) lens.Cell {
	return lens.Cell{
		Token:      topk[0].Token,
		Prob:       topk[0].Prob,
		Trajectory: topk[0].Trajectory,
		TopK:       topk,
	}
}

// twoByTwo is two positions by two layers.
func twoByTwo() *lens.Data {
	return &lens.Data{
		Layers: []int{0, 1},
		Tokens: []string{"The", " cat"},
		Cells: [][]lens.Cell{
			{
				cellOf(pred(" the", 0.3, 0.3, 0.1), pred(" a", 0.2, 0.2, 0.1)),
				cellOf(pred(" dog", 0.5, 0.1, 0.5), pred(" cat", 0.2, 0.05, 0.2)),
			},
			{
				cellOf(pred(" sat", 0.4, 0.4, 0.6), pred(" is", 0.1, 0.1, 0.05)),
				cellOf(pred(" sat", 0.6, 0.4, 0.6), pred(" ran", 0.1, 0.02, 0.1)),
			},
		},
	}
}

// autoPinData has "cat" as the strongest token at position 0 from layer 2
// on, at 7%.
func autoPinData() *lens.Data {
	catTraj := []float64{0.01, 0.02, 0.06, 0.07}
	dogTraj := []float64{0.0, 0.01, 0.03, 0.05}
	xTraj := []float64{0.5, 0.4, 0.02, 0.01}
	sTraj := []float64{0.2, 0.3, 0.4, 0.5}
	return &lens.Data{
		Layers: []int{0, 1, 2, 3},
		Tokens: []string{"A", "B"},
		Cells: [][]lens.Cell{
			{
				cellOf(pred("x", 0.5, xTraj...), pred("cat", 0.01, catTraj...)),
				cellOf(pred("x", 0.4, xTraj...), pred("cat", 0.02, catTraj...)),
				cellOf(pred("cat", 0.06, catTraj...), pred("dog", 0.03, dogTraj...), pred("x", 0.02, xTraj...)),
				cellOf(pred("cat", 0.07, catTraj...), pred("dog", 0.05, dogTraj...), pred("x", 0.01, xTraj...)),
			},
			{
				cellOf(pred("s", 0.2, sTraj...)),
				cellOf(pred("s", 0.3, sTraj...)),
				cellOf(pred("s", 0.4, sTraj...)),
				cellOf(pred("s", 0.5, sTraj...)),
			},
		},
	}
}

// wideData has nLayers layers and nPositions positions. The top token at
// (pos, layer) is "p<pos>", rising with the layer; "alt" trails it.
func wideData(nLayers, nPositions int) *lens.Data {
	d := &lens.Data{}
	for l := range nLayers {
		d.Layers = append(d.Layers, l)
	}
	for p := range nPositions {
		d.Tokens = append(d.Tokens, fmt.Sprintf(" t%d", p))
		top := make([]float64, nLayers)
		alt := make([]float64, nLayers)
		for l := range nLayers {
			top[l] = 0.1 + 0.8*float64(l)/float64(max(1, nLayers-1))
			alt[l] = top[l] / 4
		}
		row := make([]lens.Cell, nLayers)
		for l := range nLayers {
			row[l] = cellOf(
				pred(fmt.Sprintf("p%d", p), top[l], top...),
				pred("alt", alt[l], alt...),
			)
		}
		d.Cells = append(d.Cells, row)
	}
	return d
}

// promptData ends with the prompt "The cat sat" predicting " on".
func promptData() *lens.Data {
	toks := []string{"<s>", "The", " cat", " sat"}
	d := &lens.Data{Layers: []int{0, 1}, Tokens: toks}
	for range toks {
		d.Cells = append(d.Cells, []lens.Cell{
			cellOf(pred(" the", 0.2, 0.2, 0.3), pred(" on", 0.1, 0.1, 0.6)),
			cellOf(pred(" on", 0.6, 0.1, 0.6), pred(" the", 0.3, 0.2, 0.3)),
		})
	}
	return d
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newWidget(t *testing.T, data *lens.Data, snap *Snapshot) *Widget {
	t.Helper()
	w, err := New(data, snap, Options{Logger: testLogger()})
	require.NoError(t, err)
	return w
}

func newWidgetIn(t *testing.T, data *lens.Data, env Environment) *Widget {
	t.Helper()
	w, err := New(data, nil, Options{Env: env, Logger: testLogger()})
	require.NoError(t, err)
	return w
}

func ptr[T any](v T) *T {
	return &v
}

// requireGroupInvariants checks that no token is in two groups, no group
// is empty and the last group index is in range.
func requireGroupInvariants(t *testing.T, w *Widget) {
	t.Helper()
	seen := map[string]int{}
	for i, g := range w.st.Groups {
		require.NotEmpty(t, g.Tokens, "group %d is empty", i)
		for _, tok := range g.Tokens {
			prev, dup := seen[tok]
			require.False(t, dup, "token %q in groups %d and %d", tok, prev, i)
			seen[tok] = i
		}
	}
	if len(w.st.Groups) == 0 {
		require.Equal(t, -1, w.st.LastGroup)
	} else {
		require.GreaterOrEqual(t, w.st.LastGroup, 0)
		require.Less(t, w.st.LastGroup, len(w.st.Groups))
	}
}
