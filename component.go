package forge

import (
	"sort"

	"github.com/TheBitDrifter/mask"
)

// Bundle is a statically known set of components added or removed
// together (§9's "Bundle" pattern). NewBundle builds one from a list of
// registered component handles.
type Bundle interface {
	components() []AnyComponent
}

type bundleSlice []AnyComponent

func (b bundleSlice) components() []AnyComponent { return b }

// NewBundle wraps a list of component handles as a Bundle.
func NewBundle(cs ...AnyComponent) Bundle { return bundleSlice(cs) }

// signatureOf builds the archetype/query bitmask for a set of component
// kinds, keyed by their dense registry id (the scheme the teacher's
// RowIndexFor already uses, generalized from per-world schema bits to
// the process-global component id).
func signatureOf(comps []AnyComponent) mask.Mask {
	var m mask.Mask
	for _, c := range comps {
		m.Mark(c.Kind().ID)
	}
	return m
}

// sortedKinds returns the kinds of comps sorted and deduplicated by id,
// matching §3's "archetype.components is sorted and deduplicated"
// invariant.
func sortedKinds(comps []AnyComponent) []*ComponentKind {
	seen := make(map[uint32]*ComponentKind, len(comps))
	for _, c := range comps {
		k := c.Kind()
		seen[k.ID] = k
	}
	out := make([]*ComponentKind, 0, len(seen))
	for _, k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
