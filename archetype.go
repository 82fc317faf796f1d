package forge

import (
	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

type archetypeID uint32

// Archetype is the set of component kinds present on a group of
// entities; entities with identical sets share storage (§3). Its
// identity is determined solely by the full, sorted, deduplicated
// kind set — Table-class kinds back its table columns, SparseSet-class
// kinds are recorded for signature/query purposes only, since their
// payload lives in the world's per-kind sparse sets instead.
type Archetype struct {
	id         archetypeID
	world      *World
	kinds      []*ComponentKind // full signature, sorted by id
	sig        mask.Mask
	tableKinds []*ComponentKind // Table-class subset, sorted by id
	tbl        table.Table      // nil iff tableKinds is empty

	entities []Entity // dense, row-aligned with tbl's columns when tbl != nil
	ticks    *tickTable

	edges archetypeEdges
}

// ID returns the archetype's dense id within its world.
func (a *Archetype) ID() uint32 { return uint32(a.id) }

// Kinds returns the archetype's full, sorted component signature.
func (a *Archetype) Kinds() []*ComponentKind { return a.kinds }

// Signature returns the archetype's identity bitmask.
func (a *Archetype) Signature() mask.Mask { return a.sig }

// Table returns the underlying columnar table, or nil if the archetype
// has no Table-class components.
func (a *Archetype) Table() table.Table { return a.tbl }

// Len reports how many entities currently live in this archetype.
func (a *Archetype) Len() int { return len(a.entities) }

// Has reports whether the archetype's signature includes kind.
func (a *Archetype) Has(kind *ComponentKind) bool {
	var m mask.Mask
	m.Mark(kind.ID)
	return a.sig.ContainsAll(m)
}

func newArchetype(w *World, id archetypeID, kinds []*ComponentKind) (*Archetype, error) {
	a := &Archetype{id: id, world: w, kinds: kinds}
	for _, k := range kinds {
		a.sig.Mark(k.ID)
		if k.Class == StorageTable {
			a.tableKinds = append(a.tableKinds, k)
		}
	}
	a.edges = newArchetypeEdges()
	a.ticks = newTickTable(a.tableKinds)

	if len(a.tableKinds) == 0 {
		return a, nil
	}

	elementTypes := make([]table.ElementType, len(a.tableKinds))
	for i, k := range a.tableKinds {
		elementTypes[i] = k.element
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(w.schema).
		WithEntryIndex(w.entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return nil, bark.AddTrace(err)
	}
	a.tbl = tbl
	return a, nil
}

// pushRow appends a new, zero-valued row for e and returns its row
// index. Callers are responsible for writing initial component values.
// now stamps the added/changed ticks for every table-class column.
func (a *Archetype) pushRow(e Entity, now uint32) int {
	if a.tbl == nil {
		a.entities = append(a.entities, e)
		a.ticks.push(now)
		return len(a.entities) - 1
	}
	entries, err := a.tbl.NewEntries(1)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	row := entries[0].Index()
	if row == len(a.entities) {
		a.entities = append(a.entities, e)
	} else {
		// Defensive: keep the dense slice aligned even if the table
		// ever reuses a freed slot instead of strictly appending.
		for len(a.entities) <= row {
			a.entities = append(a.entities, Entity{})
		}
		a.entities[row] = e
	}
	a.ticks.push(now)
	return row
}

// swapRemove removes row from the archetype. If another entity occupied
// the last row, it is moved into the vacated slot and returned so the
// caller can fix up that entity's cached location (§4.2, Property 2).
func (a *Archetype) swapRemove(row int) (moved Entity, hasMoved bool) {
	last := len(a.entities) - 1
	if row < 0 || row > last {
		return Entity{}, false
	}
	if row != last {
		moved = a.entities[last]
		a.entities[row] = moved
		hasMoved = true
	}
	a.entities = a.entities[:last]
	a.ticks.swapRemove(row)

	if a.tbl != nil {
		entry, err := a.tbl.Entry(row)
		if err != nil {
			panic(bark.AddTrace(err))
		}
		if _, err := a.tbl.DeleteEntries(int(entry.ID())); err != nil {
			panic(bark.AddTrace(err))
		}
	}
	return moved, hasMoved
}

// transferRow moves the row at src's position row to dest, appending it
// there. It returns the displaced entity in src (if any) the same way
// swapRemove does, and the new row index in dest. The table-level move
// (when both sides have table columns) copies the shared columns and
// drops the rest — "move_to_and_drop_missing" from §4.4's removal
// protocol, collapsed with the symmetric add-protocol append since our
// Table dependency performs both in one TransferEntries call.
func (src *Archetype) transferRow(row int, dest *Archetype, now uint32) (destRow int, moved Entity, hasMoved bool) {
	e := src.entities[row]
	last := len(src.entities) - 1
	if row != last {
		moved = src.entities[last]
		hasMoved = true
	}
	dest.ticks.appendRowFrom(src.ticks, row, now)
	src.ticks.swapRemove(row)

	switch {
	case src.tbl != nil && dest.tbl != nil:
		if err := src.tbl.TransferEntries(dest.tbl, row); err != nil {
			panic(bark.AddTrace(err))
		}
		destRow = dest.tbl.Length() - 1
	case src.tbl != nil && dest.tbl == nil:
		entry, err := src.tbl.Entry(row)
		if err != nil {
			panic(bark.AddTrace(err))
		}
		if _, err := src.tbl.DeleteEntries(int(entry.ID())); err != nil {
			panic(bark.AddTrace(err))
		}
		destRow = len(dest.entities)
	case src.tbl == nil && dest.tbl != nil:
		entries, err := dest.tbl.NewEntries(1)
		if err != nil {
			panic(bark.AddTrace(err))
		}
		destRow = entries[0].Index()
	default: // both nil
		destRow = len(dest.entities)
	}

	if row != last {
		src.entities[row] = moved
	}
	src.entities = src.entities[:last]

	for len(dest.entities) <= destRow {
		dest.entities = append(dest.entities, Entity{})
	}
	dest.entities[destRow] = e

	return destRow, moved, hasMoved
}
