package forge

import "github.com/TheBitDrifter/mask"

// queryBase holds the state shared by every QueryN arity: the world, the
// filter resolved at construction, and the last/this run ticks used for
// Added/Changed comparisons (§5).
type queryBase struct {
	world   *World
	filter  *queryFilter
	lastRun uint32
}

func (q *queryBase) thisRun() uint32 { return q.world.Tick() }

// setLastRun is called by the executor/schedule after each run so the
// next run's Added/Changed windows start where this one ended.
func (q *queryBase) setLastRun(t uint32) { q.lastRun = t }

// archetypeSignature returns the query's required and excluded
// archetype masks. System access (params.go) is computed from the
// fetched kinds in describe, not from these masks.
func (q *queryBase) archetypeSignature() (required, excluded mask.Mask) {
	return q.filter.required, q.filter.excluded
}

// Query1 fetches one component type per matching entity.
type Query1[A any] struct {
	queryBase
	compA *Component[A]
	kindA *ComponentKind
}

// NewQuery1 builds a query over every entity carrying A plus whatever
// extra FilterTerms are supplied.
func NewQuery1[A any](w *World, extra ...FilterTerm) (*Query1[A], error) {
	compA, err := componentHandleOf[A]()
	if err != nil {
		return nil, err
	}
	kindA := compA.Kind()
	return &Query1[A]{
		queryBase: queryBase{world: w, filter: newQueryFilter([]*ComponentKind{kindA}, extra)},
		compA:     compA,
		kindA:     kindA,
	}, nil
}

// Each calls fn once per matching row with a pointer into A's live
// storage. Writing through the pointer is treated as a change — the
// changed tick is stamped unconditionally after fn returns, mirroring
// the teacher's "cursor yields the live column slot" pattern rather
// than a copy-in/copy-out value.
func (q *Query1[A]) Each(fn func(e Entity, a *A)) {
	c := newCursor(q.world, q.filter, q.lastRun, q.thisRun())
	defer c.close()
	now := q.thisRun()
	for c.next() {
		a, row, e := c.current()
		ptr := fetchPtr[A](q.world, a, row, e, q.kindA, q.compA)
		fn(e, ptr)
		stampChanged(q.world, a, row, e, q.kindA, now)
	}
}

// Count reports how many entities currently match, without fetching.
func (q *Query1[A]) Count() int {
	return newCursor(q.world, q.filter, q.lastRun, q.thisRun()).count()
}

// Query2 fetches two component types per matching entity.
type Query2[A, B any] struct {
	queryBase
	compA *Component[A]
	compB *Component[B]
	kindA *ComponentKind
	kindB *ComponentKind
}

func NewQuery2[A, B any](w *World, extra ...FilterTerm) (*Query2[A, B], error) {
	compA, err := componentHandleOf[A]()
	if err != nil {
		return nil, err
	}
	compB, err := componentHandleOf[B]()
	if err != nil {
		return nil, err
	}
	kindA, kindB := compA.Kind(), compB.Kind()
	return &Query2[A, B]{
		queryBase: queryBase{world: w, filter: newQueryFilter([]*ComponentKind{kindA, kindB}, extra)},
		compA:     compA, compB: compB,
		kindA: kindA, kindB: kindB,
	}, nil
}

func (q *Query2[A, B]) Each(fn func(e Entity, a *A, b *B)) {
	c := newCursor(q.world, q.filter, q.lastRun, q.thisRun())
	defer c.close()
	now := q.thisRun()
	for c.next() {
		a, row, e := c.current()
		pa := fetchPtr[A](q.world, a, row, e, q.kindA, q.compA)
		pb := fetchPtr[B](q.world, a, row, e, q.kindB, q.compB)
		fn(e, pa, pb)
		stampChanged(q.world, a, row, e, q.kindA, now)
		stampChanged(q.world, a, row, e, q.kindB, now)
	}
}

func (q *Query2[A, B]) Count() int {
	return newCursor(q.world, q.filter, q.lastRun, q.thisRun()).count()
}

// Query3 fetches three component types per matching entity.
type Query3[A, B, C any] struct {
	queryBase
	compA *Component[A]
	compB *Component[B]
	compC *Component[C]
	kindA *ComponentKind
	kindB *ComponentKind
	kindC *ComponentKind
}

func NewQuery3[A, B, C any](w *World, extra ...FilterTerm) (*Query3[A, B, C], error) {
	compA, err := componentHandleOf[A]()
	if err != nil {
		return nil, err
	}
	compB, err := componentHandleOf[B]()
	if err != nil {
		return nil, err
	}
	compC, err := componentHandleOf[C]()
	if err != nil {
		return nil, err
	}
	kindA, kindB, kindC := compA.Kind(), compB.Kind(), compC.Kind()
	return &Query3[A, B, C]{
		queryBase: queryBase{world: w, filter: newQueryFilter([]*ComponentKind{kindA, kindB, kindC}, extra)},
		compA:     compA, compB: compB, compC: compC,
		kindA: kindA, kindB: kindB, kindC: kindC,
	}, nil
}

func (q *Query3[A, B, C]) Each(fn func(e Entity, a *A, b *B, c *C)) {
	c2 := newCursor(q.world, q.filter, q.lastRun, q.thisRun())
	defer c2.close()
	now := q.thisRun()
	for c2.next() {
		a, row, e := c2.current()
		pa := fetchPtr[A](q.world, a, row, e, q.kindA, q.compA)
		pb := fetchPtr[B](q.world, a, row, e, q.kindB, q.compB)
		pc := fetchPtr[C](q.world, a, row, e, q.kindC, q.compC)
		fn(e, pa, pb, pc)
		stampChanged(q.world, a, row, e, q.kindA, now)
		stampChanged(q.world, a, row, e, q.kindB, now)
		stampChanged(q.world, a, row, e, q.kindC, now)
	}
}

func (q *Query3[A, B, C]) Count() int {
	return newCursor(q.world, q.filter, q.lastRun, q.thisRun()).count()
}

// Query4 fetches four component types per matching entity.
type Query4[A, B, C, D any] struct {
	queryBase
	compA *Component[A]
	compB *Component[B]
	compC *Component[C]
	compD *Component[D]
	kindA *ComponentKind
	kindB *ComponentKind
	kindC *ComponentKind
	kindD *ComponentKind
}

func NewQuery4[A, B, C, D any](w *World, extra ...FilterTerm) (*Query4[A, B, C, D], error) {
	compA, err := componentHandleOf[A]()
	if err != nil {
		return nil, err
	}
	compB, err := componentHandleOf[B]()
	if err != nil {
		return nil, err
	}
	compC, err := componentHandleOf[C]()
	if err != nil {
		return nil, err
	}
	compD, err := componentHandleOf[D]()
	if err != nil {
		return nil, err
	}
	kindA, kindB, kindC, kindD := compA.Kind(), compB.Kind(), compC.Kind(), compD.Kind()
	return &Query4[A, B, C, D]{
		queryBase: queryBase{world: w, filter: newQueryFilter([]*ComponentKind{kindA, kindB, kindC, kindD}, extra)},
		compA:     compA, compB: compB, compC: compC, compD: compD,
		kindA: kindA, kindB: kindB, kindC: kindC, kindD: kindD,
	}, nil
}

func (q *Query4[A, B, C, D]) Each(fn func(e Entity, a *A, b *B, c *C, d *D)) {
	cur := newCursor(q.world, q.filter, q.lastRun, q.thisRun())
	defer cur.close()
	now := q.thisRun()
	for cur.next() {
		a, row, e := cur.current()
		pa := fetchPtr[A](q.world, a, row, e, q.kindA, q.compA)
		pb := fetchPtr[B](q.world, a, row, e, q.kindB, q.compB)
		pc := fetchPtr[C](q.world, a, row, e, q.kindC, q.compC)
		pd := fetchPtr[D](q.world, a, row, e, q.kindD, q.compD)
		fn(e, pa, pb, pc, pd)
		stampChanged(q.world, a, row, e, q.kindA, now)
		stampChanged(q.world, a, row, e, q.kindB, now)
		stampChanged(q.world, a, row, e, q.kindC, now)
		stampChanged(q.world, a, row, e, q.kindD, now)
	}
}

func (q *Query4[A, B, C, D]) Count() int {
	return newCursor(q.world, q.filter, q.lastRun, q.thisRun()).count()
}
