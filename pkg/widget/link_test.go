package widget

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkedPair(t *testing.T) (*Widget, *Widget) {
	t.Helper()
	a := newWidget(t, wideData(32, 3), nil)
	b := newWidget(t, wideData(12, 2), nil)
	a.LinkColumnsTo(b)
	require.True(t, a.LinkedTo(b))
	require.True(t, b.LinkedTo(a))
	return a, b
}

func TestLinkCopiesWidths(t *testing.T) {
	a := newWidget(t, wideData(32, 3), nil)
	b := newWidget(t, wideData(12, 2), nil)
	b.SetColumnState(ColumnState{CellWidth: ptr(60.0), InputTokenWidth: ptr(150.0)}, false)

	a.LinkColumnsTo(b)
	assert.Equal(t, 44.0, b.st.CellWidth)
	assert.Equal(t, 100.0, b.st.InputTokenWidth)
	assert.Equal(t, 44.0, a.st.CellWidth, "the initiator keeps its widths")
}

func TestLinkPropagatesBothWays(t *testing.T) {
	a, b := linkedPair(t)

	a.SetColumnState(ColumnState{CellWidth: ptr(80.0)}, false)
	assert.Equal(t, 80.0, b.st.CellWidth)

	b.SetColumnState(ColumnState{InputTokenWidth: ptr(60.0)}, false)
	assert.Equal(t, 60.0, a.st.InputTokenWidth)
	assert.Equal(t, 80.0, a.st.CellWidth)
}

func TestLinkRelayoutsPeer(t *testing.T) {
	a, b := linkedPair(t)
	require.Len(t, b.st.VisibleLayers, 12)

	a.SetColumnState(ColumnState{CellWidth: ptr(100.0)}, false)
	// floor(799/100) = 7 of 12 layers
	assert.Len(t, b.st.VisibleLayers, 7)
	assert.Equal(t, 11, b.st.VisibleLayers[6])
}

func TestLinkDragPropagates(t *testing.T) {
	a, b := linkedPair(t)

	require.True(t, a.BeginDrag(DragInputColumn, 0, 0, 0))
	a.MoveDrag(30, 0)
	a.EndDrag()
	assert.Equal(t, 130.0, b.st.InputTokenWidth)

	require.True(t, b.BeginDrag(DragColumn, 0, 0, 0))
	b.MoveDrag(-14, 0)
	b.EndDrag()
	assert.Equal(t, 30.0, a.st.CellWidth)
}

func TestLinkClamps(t *testing.T) {
	a, b := linkedPair(t)
	a.SetColumnState(ColumnState{CellWidth: ptr(1000.0), InputTokenWidth: ptr(1.0)}, false)
	assert.Equal(t, 200.0, a.st.CellWidth)
	assert.Equal(t, 200.0, b.st.CellWidth)
	assert.Equal(t, 40.0, b.st.InputTokenWidth)
}

func TestLinkIgnoresNaN(t *testing.T) {
	a, b := linkedPair(t)
	a.SetColumnState(ColumnState{CellWidth: ptr(math.NaN()), InputTokenWidth: ptr(math.NaN())}, false)
	assert.Equal(t, 10.0, a.st.CellWidth)
	assert.Equal(t, 40.0, a.st.InputTokenWidth)
	assert.Equal(t, 10.0, b.st.CellWidth)
	assert.Equal(t, 40.0, b.st.InputTokenWidth)
}

// failingPeer panics whenever it is handed column state.
type failingPeer struct {
	*Widget
}

func (failingPeer) SetColumnState(ColumnState, bool) {
	panic("peer is gone")
}

func TestPanickingPeerResetsSyncing(t *testing.T) {
	a := newWidget(t, wideData(32, 3), nil)
	bad := failingPeer{newWidget(t, twoByTwo(), nil)}
	a.peers = append(a.peers, bad)

	assert.Panics(t, func() {
		a.SetColumnState(ColumnState{CellWidth: ptr(80.0)}, false)
	})
	assert.False(t, a.syncing)
	assert.Equal(t, 80.0, a.st.CellWidth)

	a.UnlinkColumns(bad)
	b := newWidget(t, wideData(12, 2), nil)
	a.LinkColumnsTo(b)
	a.SetColumnState(ColumnState{CellWidth: ptr(60.0)}, false)
	assert.Equal(t, 60.0, b.st.CellWidth)
}

func TestLinkMaxTableWidth(t *testing.T) {
	a, b := linkedPair(t)

	a.SetColumnState(ColumnState{MaxTableWidth: ptr(500.0), HasMaxTableWidth: true}, false)
	assert.Equal(t, ptr(500.0), b.st.MaxTableWidth)

	// leaving HasMaxTableWidth unset leaves the constraint alone
	a.SetColumnState(ColumnState{CellWidth: ptr(50.0)}, false)
	assert.Equal(t, ptr(500.0), b.st.MaxTableWidth)

	a.SetColumnState(ColumnState{HasMaxTableWidth: true}, false)
	assert.Nil(t, b.st.MaxTableWidth)
}

func TestFromSyncDoesNotPropagate(t *testing.T) {
	a, b := linkedPair(t)
	c := newWidget(t, wideData(8, 2), nil)
	b.LinkColumnsTo(c)

	// a pushes to b, which doesn't forward to c
	a.SetColumnState(ColumnState{CellWidth: ptr(70.0)}, false)
	assert.Equal(t, 70.0, b.st.CellWidth)
	assert.Equal(t, 44.0, c.st.CellWidth)

	b.SetColumnState(ColumnState{CellWidth: ptr(90.0)}, true)
	assert.Equal(t, 70.0, a.st.CellWidth)
	assert.Equal(t, 44.0, c.st.CellWidth)
}

func TestMutualLinkIsIdempotent(t *testing.T) {
	a, b := linkedPair(t)
	b.LinkColumnsTo(a)
	a.LinkColumnsTo(b)
	assert.Len(t, a.peers, 1)
	assert.Len(t, b.peers, 1)

	a.SetColumnState(ColumnState{CellWidth: ptr(33.0)}, false)
	assert.Equal(t, 33.0, b.st.CellWidth)
	assert.False(t, a.syncing)
	assert.False(t, b.syncing)
}

func TestUnlinkIsOneDirectional(t *testing.T) {
	a, b := linkedPair(t)

	a.UnlinkColumns(b)
	assert.False(t, a.LinkedTo(b))
	assert.True(t, b.LinkedTo(a))

	a.SetColumnState(ColumnState{CellWidth: ptr(80.0)}, false)
	assert.Equal(t, 44.0, b.st.CellWidth)

	b.SetColumnState(ColumnState{CellWidth: ptr(25.0)}, false)
	assert.Equal(t, 25.0, a.st.CellWidth)
}

func TestLinkSelfIsIgnored(t *testing.T) {
	a := newWidget(t, twoByTwo(), nil)
	a.LinkColumnsTo(a)
	assert.Empty(t, a.peers)
}

func TestDestroyUnlinks(t *testing.T) {
	a, b := linkedPair(t)
	b.Destroy()

	assert.False(t, a.LinkedTo(b))
	assert.False(t, b.LinkedTo(a))

	a.SetColumnState(ColumnState{CellWidth: ptr(80.0)}, false)
	assert.Equal(t, 44.0, b.st.CellWidth)

	b.SetColumnState(ColumnState{CellWidth: ptr(20.0)}, false)
	assert.Equal(t, 44.0, b.st.CellWidth)
}
