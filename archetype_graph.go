package forge

import (
	"sort"

	"github.com/TheBitDrifter/mask"
)

// BundleId identifies a cached add/remove transition: the sorted,
// deduplicated list of component kind ids the edge adds together with
// the list it removes. Two calls that add/remove the same sets collapse
// onto the same edge, matching §4.4's "cached pair: set-added,
// set-removed".
type BundleId struct {
	key string
}

func bundleIDFor(add, remove []*ComponentKind) BundleId {
	ids := make([]int, 0, len(add)+len(remove)+1)
	for _, k := range add {
		ids = append(ids, int(k.ID)+1) // +1 so "add" and "remove" of id 0 don't collide with the separator
	}
	ids = append(ids, -1)
	for _, k := range remove {
		ids = append(ids, int(k.ID)+1)
	}
	sort.Ints(ids[:len(add)])
	sort.Ints(ids[len(add)+1:])
	return BundleId{key: keyOf(ids)}
}

func keyOf(ids []int) string {
	b := make([]byte, 0, len(ids)*5)
	for _, id := range ids {
		b = appendInt(b, id)
		b = append(b, ',')
	}
	return string(b)
}

func appendInt(b []byte, v int) []byte {
	if v < 0 {
		b = append(b, '-')
		v = -v
	}
	if v == 0 {
		return append(b, '0')
	}
	start := len(b)
	for v > 0 {
		b = append(b, byte('0'+v%10))
		v /= 10
	}
	// reverse the digits just appended
	end := len(b) - 1
	for i, j := start, end; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// archetypeEdges caches the destinations reached from one archetype by
// a given BundleId. Entries are never invalidated — the cache is
// monotonic, per §4.4.
type archetypeEdges struct {
	afterAdd    map[BundleId]archetypeID
	afterRemove map[BundleId]archetypeID
	afterTake   map[BundleId]archetypeID
}

func newArchetypeEdges() archetypeEdges {
	return archetypeEdges{
		afterAdd:    make(map[BundleId]archetypeID),
		afterRemove: make(map[BundleId]archetypeID),
		afterTake:   make(map[BundleId]archetypeID),
	}
}

// archetypeGraph is the arena of archetype nodes. Edges are indices
// into byID, never owning pointers, so cycles (e.g. A adds X to
// reach B, B removes X to reach A) are trivially representable (§9).
type archetypeGraph struct {
	world     *World
	byID      []*Archetype
	bySig     map[mask.Mask]archetypeID
	nextID    archetypeID
	observers observerFlags
}

func newArchetypeGraph(w *World) *archetypeGraph {
	g := &archetypeGraph{
		world:  w,
		bySig:  make(map[mask.Mask]archetypeID),
		nextID: 1,
	}
	empty, err := newArchetype(w, g.nextID, nil)
	if err != nil {
		panic(err)
	}
	g.byID = append(g.byID, empty)
	g.bySig[mask.Mask{}] = g.nextID
	g.nextID++
	return g
}

// empty returns the archetype with no components, always archetype 1.
func (g *archetypeGraph) empty() *Archetype { return g.byID[0] }

func (g *archetypeGraph) get(id archetypeID) *Archetype { return g.byID[id-1] }

// archetypeFor returns the archetype with exactly kinds as its
// signature, creating it (and the underlying table) on first use.
func (g *archetypeGraph) archetypeFor(kinds []*ComponentKind) (*Archetype, error) {
	var sig mask.Mask
	for _, k := range kinds {
		sig.Mark(k.ID)
	}
	if id, ok := g.bySig[sig]; ok {
		return g.byID[id-1], nil
	}
	a, err := newArchetype(g.world, g.nextID, kinds)
	if err != nil {
		return nil, err
	}
	g.byID = append(g.byID, a)
	g.bySig[sig] = g.nextID
	g.nextID++
	return a, nil
}

// withAdded resolves (caching the edge) the archetype reached from from
// by adding the given kinds. Re-adding a kind already present is a
// value update, not a structural change, so it's excluded from the
// added set before the edge is computed (§4.4 tie-break).
func (g *archetypeGraph) withAdded(from *Archetype, add []*ComponentKind) (*Archetype, error) {
	var novel []*ComponentKind
	for _, k := range add {
		if !from.Has(k) {
			novel = append(novel, k)
		}
	}
	if len(novel) == 0 {
		return from, nil
	}
	bid := bundleIDFor(novel, nil)
	if id, ok := from.edges.afterAdd[bid]; ok {
		return g.byID[id-1], nil
	}
	merged := mergeKinds(from.kinds, novel)
	dest, err := g.archetypeFor(merged)
	if err != nil {
		return nil, err
	}
	from.edges.afterAdd[bid] = dest.id
	return dest, nil
}

// withRemoved resolves (caching the edge) the archetype reached from
// from by removing the given kinds. take selects §4.4's "take"
// semantics: removing an absent kind is NoSuchComponent instead of a
// no-op.
func (g *archetypeGraph) withRemoved(from *Archetype, remove []*ComponentKind, take bool) (*Archetype, error) {
	var present []*ComponentKind
	for _, k := range remove {
		if from.Has(k) {
			present = append(present, k)
		} else if take {
			return nil, NoSuchComponentError{Kind: k}
		}
	}
	if len(present) == 0 {
		return from, nil
	}
	bid := bundleIDFor(nil, present)
	edges := from.edges.afterRemove
	if take {
		edges = from.edges.afterTake
	}
	if id, ok := edges[bid]; ok {
		return g.byID[id-1], nil
	}
	remaining := subtractKinds(from.kinds, present)
	dest, err := g.archetypeFor(remaining)
	if err != nil {
		return nil, err
	}
	edges[bid] = dest.id
	return dest, nil
}

func mergeKinds(base []*ComponentKind, add []*ComponentKind) []*ComponentKind {
	seen := make(map[uint32]*ComponentKind, len(base)+len(add))
	for _, k := range base {
		seen[k.ID] = k
	}
	for _, k := range add {
		seen[k.ID] = k
	}
	out := make([]*ComponentKind, 0, len(seen))
	for _, k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func subtractKinds(base []*ComponentKind, remove []*ComponentKind) []*ComponentKind {
	drop := make(map[uint32]bool, len(remove))
	for _, k := range remove {
		drop[k.ID] = true
	}
	out := make([]*ComponentKind, 0, len(base))
	for _, k := range base {
		if !drop[k.ID] {
			out = append(out, k)
		}
	}
	return out
}

// observerFlags holds one flag per lifecycle event. The graph carries a
// value of it, but nothing sets or reads it: lifecycle dispatch
// (hooks.go) always consults the observer index.
type observerFlags [5]bool
