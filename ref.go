package forge

// Ref1..Ref4 are the read-only counterparts of Query1..Query4: same
// matching semantics, but they never stamp a changed tick and declare
// their fetched kinds as reads instead of writes, so two systems that
// only read the same component(s) are not treated as conflicting by
// the scheduler (§5's "if they overlap only in reads they may run in
// parallel" guarantee).

// Ref1 fetches one component type read-only per matching entity.
type Ref1[A any] struct {
	queryBase
	compA *Component[A]
	kindA *ComponentKind
}

// NewRef1 builds a read-only query over every entity carrying A plus
// whatever extra FilterTerms are supplied.
func NewRef1[A any](w *World, extra ...FilterTerm) (*Ref1[A], error) {
	compA, err := componentHandleOf[A]()
	if err != nil {
		return nil, err
	}
	kindA := compA.Kind()
	return &Ref1[A]{
		queryBase: queryBase{world: w, filter: newQueryFilter([]*ComponentKind{kindA}, extra)},
		compA:     compA,
		kindA:     kindA,
	}, nil
}

// Each calls fn once per matching row with a read-only pointer into A's
// live storage. No changed tick is stamped.
func (q *Ref1[A]) Each(fn func(e Entity, a *A)) {
	c := newCursor(q.world, q.filter, q.lastRun, q.thisRun())
	defer c.close()
	for c.next() {
		a, row, e := c.current()
		ptr := fetchPtr[A](q.world, a, row, e, q.kindA, q.compA)
		fn(e, ptr)
	}
}

// Count reports how many entities currently match, without fetching.
func (q *Ref1[A]) Count() int {
	return newCursor(q.world, q.filter, q.lastRun, q.thisRun()).count()
}

// Ref2 fetches two component types read-only per matching entity.
type Ref2[A, B any] struct {
	queryBase
	compA *Component[A]
	compB *Component[B]
	kindA *ComponentKind
	kindB *ComponentKind
}

func NewRef2[A, B any](w *World, extra ...FilterTerm) (*Ref2[A, B], error) {
	compA, err := componentHandleOf[A]()
	if err != nil {
		return nil, err
	}
	compB, err := componentHandleOf[B]()
	if err != nil {
		return nil, err
	}
	kindA, kindB := compA.Kind(), compB.Kind()
	return &Ref2[A, B]{
		queryBase: queryBase{world: w, filter: newQueryFilter([]*ComponentKind{kindA, kindB}, extra)},
		compA:     compA, compB: compB,
		kindA: kindA, kindB: kindB,
	}, nil
}

func (q *Ref2[A, B]) Each(fn func(e Entity, a *A, b *B)) {
	c := newCursor(q.world, q.filter, q.lastRun, q.thisRun())
	defer c.close()
	for c.next() {
		a, row, e := c.current()
		pa := fetchPtr[A](q.world, a, row, e, q.kindA, q.compA)
		pb := fetchPtr[B](q.world, a, row, e, q.kindB, q.compB)
		fn(e, pa, pb)
	}
}

func (q *Ref2[A, B]) Count() int {
	return newCursor(q.world, q.filter, q.lastRun, q.thisRun()).count()
}

// Ref3 fetches three component types read-only per matching entity.
type Ref3[A, B, C any] struct {
	queryBase
	compA *Component[A]
	compB *Component[B]
	compC *Component[C]
	kindA *ComponentKind
	kindB *ComponentKind
	kindC *ComponentKind
}

func NewRef3[A, B, C any](w *World, extra ...FilterTerm) (*Ref3[A, B, C], error) {
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
	return &Ref3[A, B, C]{
		queryBase: queryBase{world: w, filter: newQueryFilter([]*ComponentKind{kindA, kindB, kindC}, extra)},
		compA:     compA, compB: compB, compC: compC,
		kindA: kindA, kindB: kindB, kindC: kindC,
	}, nil
}

func (q *Ref3[A, B, C]) Each(fn func(e Entity, a *A, b *B, c *C)) {
	cur := newCursor(q.world, q.filter, q.lastRun, q.thisRun())
	defer cur.close()
	for cur.next() {
		a, row, e := cur.current()
		pa := fetchPtr[A](q.world, a, row, e, q.kindA, q.compA)
		pb := fetchPtr[B](q.world, a, row, e, q.kindB, q.compB)
		pc := fetchPtr[C](q.world, a, row, e, q.kindC, q.compC)
		fn(e, pa, pb, pc)
	}
}

func (q *Ref3[A, B, C]) Count() int {
	return newCursor(q.world, q.filter, q.lastRun, q.thisRun()).count()
}

// Ref4 fetches four component types read-only per matching entity.
type Ref4[A, B, C, D any] struct {
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

func NewRef4[A, B, C, D any](w *World, extra ...FilterTerm) (*Ref4[A, B, C, D], error) {
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
	return &Ref4[A, B, C, D]{
		queryBase: queryBase{world: w, filter: newQueryFilter([]*ComponentKind{kindA, kindB, kindC, kindD}, extra)},
		compA:     compA, compB: compB, compC: compC, compD: compD,
		kindA: kindA, kindB: kindB, kindC: kindC, kindD: kindD,
	}, nil
}

func (q *Ref4[A, B, C, D]) Each(fn func(e Entity, a *A, b *B, c *C, d *D)) {
	cur := newCursor(q.world, q.filter, q.lastRun, q.thisRun())
	defer cur.close()
	for cur.next() {
		a, row, e := cur.current()
		pa := fetchPtr[A](q.world, a, row, e, q.kindA, q.compA)
		pb := fetchPtr[B](q.world, a, row, e, q.kindB, q.compB)
		pc := fetchPtr[C](q.world, a, row, e, q.kindC, q.compC)
		pd := fetchPtr[D](q.world, a, row, e, q.kindD, q.compD)
		fn(e, pa, pb, pc, pd)
	}
}

func (q *Ref4[A, B, C, D]) Count() int {
	return newCursor(q.world, q.filter, q.lastRun, q.thisRun()).count()
}
