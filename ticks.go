package forge

// componentTicks is the pair of monotonic counters recorded against one
// component slot: the world tick it was added on, and the world tick it
// was last written. Queries compare these against their own
// last_run_tick/this_run_tick to implement Added<T>/Changed<T> (§5).
type componentTicks struct {
	added   uint32
	changed uint32
}

// isAdded reports whether the slot was added after lastRun.
func (t componentTicks) isAdded(lastRun, thisRun uint32) bool {
	return tickNewerThan(t.added, lastRun, thisRun)
}

// isChanged reports whether the slot was written after lastRun.
func (t componentTicks) isChanged(lastRun, thisRun uint32) bool {
	return tickNewerThan(t.changed, lastRun, thisRun)
}

// tickNewerThan implements wraparound-safe "is tick newer than lastRun,
// as observed during the window ending at thisRun" comparison. Because
// ticks reset to zero together on overflow (§6's wrap policy), a simple
// difference against thisRun is sufficient without modular arithmetic
// tricks: no stored tick can ever be "from the future" relative to
// thisRun within one unbroken counting epoch.
func tickNewerThan(tick, lastRun, thisRun uint32) bool {
	if tick == 0 {
		return false
	}
	return tick > lastRun && tick <= thisRun
}

// tickTable holds one componentTicks slice per table-class component
// kind present in an archetype, row-aligned with the archetype's dense
// entity slice.
type tickTable struct {
	byKind map[uint32][]componentTicks
}

func newTickTable(kinds []*ComponentKind) *tickTable {
	t := &tickTable{byKind: make(map[uint32][]componentTicks, len(kinds))}
	for _, k := range kinds {
		t.byKind[k.ID] = nil
	}
	return t
}

func (t *tickTable) push(now uint32) {
	for id, col := range t.byKind {
		t.byKind[id] = append(col, componentTicks{added: now, changed: now})
	}
}

// swapRemove mirrors Archetype.swapRemove on the tick columns.
func (t *tickTable) swapRemove(row int) {
	for id, col := range t.byKind {
		last := len(col) - 1
		if row != last {
			col[row] = col[last]
		}
		t.byKind[id] = col[:last]
	}
}

// markChanged stamps the changed tick for kind at row.
func (t *tickTable) markChanged(kindID uint32, row int, now uint32) {
	col := t.byKind[kindID]
	if row < 0 || row >= len(col) {
		return
	}
	col[row].changed = now
}

func (t *tickTable) get(kindID uint32, row int) componentTicks {
	col := t.byKind[kindID]
	if row < 0 || row >= len(col) {
		return componentTicks{}
	}
	return col[row]
}

// resetAll zeroes every stored tick, used on the counter-wrap boundary.
func (t *tickTable) resetAll() {
	for id, col := range t.byKind {
		for i := range col {
			col[i] = componentTicks{}
		}
		t.byKind[id] = col
	}
}

// addKind extends the tick table for a kind gained through a structural
// add, seeding the new column with now for every existing row.
func (t *tickTable) addKind(kindID uint32, rows int, now uint32) {
	col := make([]componentTicks, rows)
	for i := range col {
		col[i] = componentTicks{added: now, changed: now}
	}
	t.byKind[kindID] = col
}

// removeKind drops a kind's tick column entirely, used on structural
// remove.
func (t *tickTable) removeKind(kindID uint32) {
	delete(t.byKind, kindID)
}

// appendRowFrom copies one row's ticks from src (for the kinds the two
// archetypes share) into a freshly appended row of dest.
func (t *tickTable) appendRowFrom(src *tickTable, srcRow int, now uint32) {
	for id, col := range t.byKind {
		if srcCol, ok := src.byKind[id]; ok && srcRow < len(srcCol) {
			t.byKind[id] = append(col, srcCol[srcRow])
		} else {
			t.byKind[id] = append(col, componentTicks{added: now, changed: now})
		}
	}
}
