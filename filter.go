package forge

import "github.com/TheBitDrifter/mask"

type filterKind int

const (
	filterWith filterKind = iota
	filterWithout
	filterAdded
	filterChanged
	filterOr
)

// FilterTerm is one clause of a query's archetype/row filter, built by
// With/Without/Added/Changed/Or and passed as extra arguments to
// NewQueryN/NewRefN.
type FilterTerm struct {
	kind   filterKind
	target *ComponentKind
	orA    orClause
	orB    orClause
}

// orClause is the archetype mask contribution of one side of an Or
// combinator: a single With's required bit, or a single Without's
// excluded bit.
type orClause struct {
	required mask.Mask
	excluded mask.Mask
}

func clauseOf(t FilterTerm) orClause {
	switch t.kind {
	case filterWith:
		var c orClause
		c.required.Mark(t.target.ID)
		return c
	case filterWithout:
		var c orClause
		c.excluded.Mark(t.target.ID)
		return c
	default:
		panic("forge: Or only accepts With/Without sub-terms")
	}
}

// Or matches an archetype that satisfies either a or b on its own,
// instead of requiring both — the disjunctive counterpart to passing
// a and b as two independent (implicitly AND'd) FilterTerms (§4.5).
func Or(a, b FilterTerm) FilterTerm {
	return FilterTerm{kind: filterOr, orA: clauseOf(a), orB: clauseOf(b)}
}

func mustKind[T any]() *ComponentKind {
	k, err := ComponentKindOf[T]()
	if err != nil {
		panic(err)
	}
	return k
}

// With requires the archetype to carry T, without fetching its value —
// for "tag" components a system only needs to filter on.
func With[T any]() FilterTerm { return FilterTerm{kind: filterWith, target: mustKind[T]()} }

// Without excludes any archetype carrying T.
func Without[T any]() FilterTerm { return FilterTerm{kind: filterWithout, target: mustKind[T]()} }

// Added matches rows where T's slot was added after the query's last
// run tick (§5).
func Added[T any]() FilterTerm { return FilterTerm{kind: filterAdded, target: mustKind[T]()} }

// Changed matches rows where T's slot was written after the query's
// last run tick (§5). An Added row is also Changed.
func Changed[T any]() FilterTerm { return FilterTerm{kind: filterChanged, target: mustKind[T]()} }

// queryFilter is the resolved archetype/row predicate built from a
// query's fetched types plus its extra FilterTerms.
type queryFilter struct {
	required mask.Mask
	excluded mask.Mask
	added    []*ComponentKind
	changed  []*ComponentKind
	ors      []orPair
}

// orPair is one Or(a, b) clause resolved at filter-build time.
type orPair struct {
	a, b orClause
}

func newQueryFilter(fetched []*ComponentKind, extra []FilterTerm) *queryFilter {
	f := &queryFilter{}
	for _, k := range fetched {
		f.required.Mark(k.ID)
	}
	for _, t := range extra {
		switch t.kind {
		case filterWith:
			f.required.Mark(t.target.ID)
		case filterWithout:
			f.excluded.Mark(t.target.ID)
		case filterAdded:
			f.required.Mark(t.target.ID)
			f.added = append(f.added, t.target)
		case filterChanged:
			f.required.Mark(t.target.ID)
			f.changed = append(f.changed, t.target)
		case filterOr:
			f.ors = append(f.ors, orPair{a: t.orA, b: t.orB})
		}
	}
	return f
}

func (f *queryFilter) matchesArchetype(a *Archetype) bool {
	if !a.sig.ContainsAll(f.required) || !a.sig.ContainsNone(f.excluded) {
		return false
	}
	for _, pair := range f.ors {
		sideA := a.sig.ContainsAll(pair.a.required) && a.sig.ContainsNone(pair.a.excluded)
		sideB := a.sig.ContainsAll(pair.b.required) && a.sig.ContainsNone(pair.b.excluded)
		if !sideA && !sideB {
			return false
		}
	}
	return true
}

// matchesRow applies the Added/Changed row-level predicates, which
// depend on per-slot ticks rather than archetype membership alone.
func (f *queryFilter) matchesRow(w *World, a *Archetype, row int, e Entity, lastRun, thisRun uint32) bool {
	for _, k := range f.added {
		if !rowTicks(w, a, row, e, k).isAdded(lastRun, thisRun) {
			return false
		}
	}
	for _, k := range f.changed {
		if !rowTicks(w, a, row, e, k).isChanged(lastRun, thisRun) {
			return false
		}
	}
	return true
}

func rowTicks(w *World, a *Archetype, row int, e Entity, k *ComponentKind) componentTicks {
	if k.Class == StorageTable {
		return a.ticks.get(k.ID, row)
	}
	if ss, ok := w.sparseSets[k.ID]; ok {
		t, _ := ss.ticksFor(e.Index())
		return t
	}
	return componentTicks{}
}
