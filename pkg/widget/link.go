package widget

import "slices"

// ColumnState is the slice of layout that linked widgets share. Nil fields
// are left alone by SetColumnState. MaxTableWidth is applied only when
// HasMaxTableWidth is set, so that "no constraint" can be propagated too.
type ColumnState struct {
	CellWidth        *float64
	InputTokenWidth  *float64
	MaxTableWidth    *float64
	HasMaxTableWidth bool
}

// ColumnPeer is anything that can take part in column linking.
type ColumnPeer interface {
	ColumnState() ColumnState
	SetColumnState(cs ColumnState, fromSync bool)
	LinkColumnsTo(peer ColumnPeer)
	UnlinkColumns(peer ColumnPeer)
	LinkedTo(peer ColumnPeer) bool
}

var _ ColumnPeer = (*Widget)(nil)

// ColumnState returns the widget's current column widths.
func (w *Widget) ColumnState() ColumnState {
	cell := w.st.CellWidth
	input := w.st.InputTokenWidth
	return ColumnState{
		CellWidth:        &cell,
		InputTokenWidth:  &input,
		MaxTableWidth:    clonePtr(w.st.MaxTableWidth),
		HasMaxTableWidth: true,
	}
}

// SetColumnState applies the defined fields of cs. Values are clamped to
// the configured limits. If anything changed the layout is recomputed, and
// unless fromSync is set the change is pushed on to linked peers.
func (w *Widget) SetColumnState(cs ColumnState, fromSync bool) {
	if w.destroyed || w.syncing {
		return
	}
	lim := w.limits()
	changed := false

	if cs.CellWidth != nil {
		v := clamp(*cs.CellWidth, lim.MinCellWidth, lim.MaxCellWidth)
		if v != w.st.CellWidth {
			w.st.CellWidth = v
			changed = true
		}
	}
	if cs.InputTokenWidth != nil {
		v := clamp(*cs.InputTokenWidth, lim.MinInputWidth, lim.MaxInputWidth)
		if v != w.st.InputTokenWidth {
			w.st.InputTokenWidth = v
			changed = true
		}
	}
	if cs.HasMaxTableWidth && !equalPtr(cs.MaxTableWidth, w.st.MaxTableWidth) {
		w.st.MaxTableWidth = clonePtr(cs.MaxTableWidth)
		changed = true
	}

	if !changed {
		return
	}
	w.relayout()
	if !fromSync {
		w.notifyPeers()
	}
}

// LinkColumnsTo links the widget's columns to peer in both directions and
// immediately gives peer this widget's widths.
func (w *Widget) LinkColumnsTo(peer ColumnPeer) {
	if w.destroyed || peer == nil || peer == ColumnPeer(w) {
		return
	}
	if !w.LinkedTo(peer) {
		w.peers = append(w.peers, peer)
	}
	if !peer.LinkedTo(w) {
		// the peer pushes its own widths back while linking; ours win
		w.withSyncing(func() {
			peer.LinkColumnsTo(w)
		})
	}
	peer.SetColumnState(w.ColumnState(), true)
	w.logger.Debug("linked columns", "peers", len(w.peers))
}

// UnlinkColumns stops pushing changes to peer. The peer still pushes to
// this widget until it unlinks too.
func (w *Widget) UnlinkColumns(peer ColumnPeer) {
	w.peers = slices.DeleteFunc(w.peers, func(p ColumnPeer) bool {
		return p == peer
	})
}

// LinkedTo reports whether changes are pushed to peer.
func (w *Widget) LinkedTo(peer ColumnPeer) bool {
	return slices.Contains(w.peers, peer)
}

// notifyPeers pushes the column state to every linked peer. Changes echoed
// back while doing so are ignored.
func (w *Widget) notifyPeers() {
	if w.syncing || len(w.peers) == 0 {
		return
	}
	cs := w.ColumnState()
	w.withSyncing(func() {
		for _, p := range slices.Clone(w.peers) {
			p.SetColumnState(cs, true)
		}
	})
}

func (w *Widget) withSyncing(fn func()) {
	prev := w.syncing
	w.syncing = true
	defer func() { w.syncing = prev }()
	fn()
}
