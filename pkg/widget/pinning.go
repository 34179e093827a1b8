package widget

// TogglePinnedTrajectory adds token to, or removes it from, the pinned
// groups. With extend set and a last-active group present, the token is
// moved into (or out of) that group; otherwise it is toggled as a group of
// its own. Reports whether the token ends up pinned.
func (w *Widget) TogglePinnedTrajectory(token string, extend bool) bool {
	if w.destroyed {
		return false
	}
	pinned := w.togglePinnedTrajectory(token, extend)
	w.logger.Debug("toggled token", "token", token, "extend", extend, "pinned", pinned, "groups", len(w.st.Groups))
	return pinned
}

func (w *Widget) togglePinnedTrajectory(token string, extend bool) bool {
	st := &w.st
	existing := st.groupFor(token)

	if extend && st.LastGroup >= 0 && st.LastGroup < len(st.Groups) {
		switch {
		case existing == st.LastGroup:
			w.removeFromGroup(existing, token)
			return false
		case existing >= 0:
			w.removeFromGroup(existing, token)
			// the last group may have shifted down
			st.Groups[st.LastGroup].Tokens = append(st.Groups[st.LastGroup].Tokens, token)
			return true
		default:
			st.Groups[st.LastGroup].Tokens = append(st.Groups[st.LastGroup].Tokens, token)
			return true
		}
	}

	if existing >= 0 {
		w.removeFromGroup(existing, token)
		return false
	}

	st.Groups = append(st.Groups, Group{Tokens: []string{token}, Color: w.nextColor()})
	st.LastGroup = len(st.Groups) - 1
	return true
}

// removeFromGroup drops token from group idx, deleting the group if it
// becomes empty.
func (w *Widget) removeFromGroup(idx int, token string) {
	g := &w.st.Groups[idx]
	g.remove(token)
	if len(g.Tokens) == 0 {
		w.removeGroup(idx)
	}
}

// removeGroup deletes group idx and re-points LastGroup: it follows its
// group down when an earlier one is removed, and falls back to the most
// recent remaining group when its own group goes away. The plain-toggle
// and extend paths both go through here, so they agree on LastGroup.
func (w *Widget) removeGroup(idx int) {
	st := &w.st
	if idx < 0 || idx >= len(st.Groups) {
		return
	}
	st.Groups = append(st.Groups[:idx], st.Groups[idx+1:]...)
	switch {
	case st.LastGroup == idx:
		st.LastGroup = len(st.Groups) - 1
	case st.LastGroup > idx:
		st.LastGroup--
	}
	if st.ColorPickerTarget != nil && st.ColorPickerTarget.Kind == PickGroup {
		st.ColorPickerTarget = nil
	}
}

// RemoveGroup deletes a whole group, as the legend's close button does.
func (w *Widget) RemoveGroup(idx int) {
	if w.destroyed {
		return
	}
	w.removeGroup(idx)
}

// nextColor takes the next palette color. The cursor only ever advances.
func (w *Widget) nextColor() string {
	c := w.cfg.Palette[w.st.ColorIndex%len(w.cfg.Palette)]
	w.st.ColorIndex++
	return c
}

// TogglePinnedRow pins or unpins the row at pos. Pinning a row whose
// position none of the current groups cover also pins that position's
// strongest late-layer token, so the new row has something to draw.
// Reports whether the row ends up pinned.
func (w *Widget) TogglePinnedRow(pos int) bool {
	if w.destroyed || pos < 0 || pos >= w.nPositions() {
		return false
	}
	st := &w.st
	if idx := st.rowFor(pos); idx >= 0 {
		st.Rows = append(st.Rows[:idx], st.Rows[idx+1:]...)
		w.logger.Debug("unpinned row", "pos", pos)
		return false
	}

	ap := w.cfg.AutoPin
	if w.groupsBelow(pos, ap.GroupFloor) {
		if tok, ok := w.AutoPinCandidate(pos); ok && st.groupFor(tok) < 0 {
			st.Groups = append(st.Groups, Group{Tokens: []string{tok}, Color: w.nextColor()})
			st.LastGroup = len(st.Groups) - 1
			w.logger.Debug("auto-pinned token", "pos", pos, "token", tok)
		}
	}

	style := lineStyles[len(st.Rows)%len(lineStyles)]
	st.Rows = append(st.Rows, PinnedRow{Pos: pos, Style: style})
	w.logger.Debug("pinned row", "pos", pos, "style", style)
	return true
}

// UnpinRow removes the pinned row at index idx of the row list.
func (w *Widget) UnpinRow(idx int) {
	if w.destroyed || idx < 0 || idx >= len(w.st.Rows) {
		return
	}
	w.st.Rows = append(w.st.Rows[:idx], w.st.Rows[idx+1:]...)
}

// groupsBelow reports whether every group peaks below floor at pos. It is
// trivially true with no groups.
func (w *Widget) groupsBelow(pos int, floor float64) bool {
	for i := range w.st.Groups {
		for _, p := range w.GroupTrajectory(&w.st.Groups[i], pos) {
			if p >= floor {
				return false
			}
		}
	}
	return true
}

// AutoPinCandidate finds the token with the highest probability at pos
// from the configured first layer on, considering top-1 and top-k entries.
// It only returns a token reaching the configured minimum probability.
func (w *Widget) AutoPinCandidate(pos int) (string, bool) {
	if pos < 0 || pos >= len(w.data.Cells) {
		return "", false
	}
	ap := w.cfg.AutoPin
	var best string
	var bestProb float64
	found := false
	row := w.data.Cells[pos]
	for li := max(0, ap.MinLayer); li < len(row); li++ {
		c := &row[li]
		if c.Prob > bestProb {
			best, bestProb, found = c.Token, c.Prob, true
		}
		for _, p := range c.TopK {
			if p.Prob > bestProb {
				best, bestProb, found = p.Token, p.Prob, true
			}
		}
	}
	if !found || bestProb < ap.MinProb {
		return "", false
	}
	return best, true
}

// GroupTrajectory sums the trajectories of a group's tokens at pos.
func (w *Widget) GroupTrajectory(g *Group, pos int) []float64 {
	sum := make([]float64, w.nLayers())
	for _, tok := range g.Tokens {
		for i, p := range w.data.TrajectoryFor(tok, pos) {
			sum[i] += p
		}
	}
	return sum
}

func (w *Widget) groupProbAt(g *Group, pos, layer int) float64 {
	traj := w.GroupTrajectory(g, pos)
	if layer < 0 || layer >= len(traj) {
		return 0
	}
	return traj[layer]
}

// winningGroupAt returns the group whose summed probability at the cell
// strictly beats the cell's top-1 probability and every earlier group.
func (w *Widget) winningGroupAt(pos, layer int) *Group {
	c, ok := w.data.Cell(pos, layer)
	if !ok {
		return nil
	}
	var winner *Group
	best := c.Prob
	for i := range w.st.Groups {
		g := &w.st.Groups[i]
		if p := w.groupProbAt(g, pos, layer); p > best {
			best = p
			winner = g
		}
	}
	return winner
}

// ColorForToken returns the color of the group holding token.
func (w *Widget) ColorForToken(token string) (string, bool) {
	if i := w.st.groupFor(token); i >= 0 {
		return w.st.Groups[i].Color, true
	}
	return "", false
}
