package forge

// cursor walks every archetype matching a queryFilter, row by row,
// locking the world for the duration so structural mutations observed
// mid-iteration are deferred (§4.5). Generalized from the teacher's
// lock/advance/reset Cursor, swapped from table.Table-only iteration to
// Archetype-level iteration so it covers SparseSet-class rows too.
type cursor struct {
	world   *World
	filter  *queryFilter
	lastRun uint32
	thisRun uint32

	matched []*Archetype
	archIdx int
	row     int

	initialized bool
}

func newCursor(w *World, f *queryFilter, lastRun, thisRun uint32) *cursor {
	return &cursor{world: w, filter: f, lastRun: lastRun, thisRun: thisRun}
}

func (c *cursor) init() {
	if c.initialized {
		return
	}
	c.world.Lock()
	for _, a := range c.world.archetypes() {
		if c.filter.matchesArchetype(a) {
			c.matched = append(c.matched, a)
		}
	}
	c.row = -1
	c.initialized = true
}

// next advances to the next row satisfying the filter's row-level
// predicates, returning false once every matched archetype is
// exhausted.
func (c *cursor) next() bool {
	c.init()
	for {
		if c.archIdx >= len(c.matched) {
			return false
		}
		a := c.matched[c.archIdx]
		c.row++
		if c.row >= a.Len() {
			c.archIdx++
			c.row = -1
			continue
		}
		e := a.entities[c.row]
		if c.filter.matchesRow(c.world, a, c.row, e, c.lastRun, c.thisRun) {
			return true
		}
	}
}

func (c *cursor) current() (*Archetype, int, Entity) {
	a := c.matched[c.archIdx]
	return a, c.row, a.entities[c.row]
}

// close releases the world lock taken by init. Always call once
// iteration ends, including early-return paths.
func (c *cursor) close() {
	if c.initialized {
		c.world.Unlock()
	}
}

// count reports how many rows match, consuming the cursor.
func (c *cursor) count() int {
	n := 0
	for c.next() {
		n++
	}
	c.close()
	return n
}
