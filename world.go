package forge

import (
	"fmt"
	"math"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"
)

// World owns every entity, archetype, storage backend, resource, the
// observer index, the deferred-command buffer, and the change-tick
// counter exclusively. Systems only ever borrow from it according to
// their declared access (§3's Ownership rule).
type World struct {
	schema     table.Schema
	entryIndex table.EntryIndex

	entities *entityAllocator
	graph    *archetypeGraph

	sparseSets map[uint32]sparseSet

	resources *resourceRegistry
	observers *observerIndex
	commands  *CommandQueue
	events    *eventRegistry

	tick uint32 // this_run_tick for the frame currently executing

	lockDepth int
}

// NewWorld creates an empty World: one empty archetype, no resources,
// no observers, tick 1.
func NewWorld() *World {
	w := &World{
		schema:     table.Factory.NewSchema(),
		entryIndex: table.Factory.NewEntryIndex(),
		entities:   newEntityAllocator(),
		sparseSets: make(map[uint32]sparseSet),
		resources:  newResourceRegistry(),
		commands:   newCommandQueue(),
		events:     newEventRegistry(),
		tick:       1, // 0 is reserved as the "never set" sentinel for componentTicks
	}
	w.graph = newArchetypeGraph(w)
	w.observers = newObserverIndex()
	return w
}

// Tick returns the world's current change-tick counter.
func (w *World) Tick() uint32 { return w.tick }

// AdvanceTick bumps the change-tick counter for a new frame, applying
// the wrap policy decided in SPEC_FULL.md §6: on the frame where the
// counter would overflow uint32, every stored tick is reset to zero
// first and the new frame starts counting from 1.
func (w *World) AdvanceTick() uint32 {
	if w.tick == math.MaxUint32 {
		w.resetAllTicks()
		w.tick = 0
	}
	w.tick++
	return w.tick
}

func (w *World) resetAllTicks() {
	for _, a := range w.graph.byID {
		a.ticks.resetAll()
	}
	for _, ss := range w.sparseSets {
		ss.resetTicks()
	}
}

// Locked reports whether the world currently forbids structural
// mutation (an iteration or system run is in flight).
func (w *World) Locked() bool { return w.lockDepth > 0 }

// Lock marks the world as busy; structural mutations are deferred to
// the command queue until the matching Unlock.
func (w *World) Lock() { w.lockDepth++ }

// Unlock releases one lock level and, once fully unlocked, drains
// queued commands.
func (w *World) Unlock() {
	if w.lockDepth > 0 {
		w.lockDepth--
	}
	if w.lockDepth == 0 {
		if err := w.commands.apply(w); err != nil {
			panic(bark.AddTrace(err))
		}
	}
}

// Spawn creates one entity with the given bundle and returns its
// handle (§6 Entity API). While the world is locked the spawn is queued
// instead and the zero Entity is returned.
func (w *World) Spawn(bundle ...AnyComponent) (Entity, error) {
	if w.Locked() {
		var zero Entity
		w.commands.enqueue(spawnCommand{components: bundle})
		return zero, nil
	}
	return w.spawnNow(bundle)
}

func (w *World) spawnNow(bundle []AnyComponent) (Entity, error) {
	kinds := sortedKinds(bundle)
	arch, err := w.graph.archetypeFor(kinds)
	if err != nil {
		return Entity{}, err
	}

	e := w.entities.allocate()
	row := arch.pushRow(e, w.tick)
	meta, _ := w.entities.meta(e)
	meta.archetype = arch
	meta.row = row

	for _, k := range kinds {
		if k.Class == StorageSparseSet {
			if w.sparseSets[k.ID] == nil {
				w.sparseSets[k.ID] = newTypedSparseSetFor(k)
			}
		}
	}
	for _, c := range bundle {
		if err := w.writeInitial(e, arch, row, c); err != nil {
			return Entity{}, err
		}
	}

	w.fireLifecycle(OnAdd, e, kinds)
	w.fireLifecycle(OnInsert, e, kinds)
	return e, nil
}

// writeInitial installs a freshly-spawned component's value (its Go
// zero value, since Spawn takes handles, not values — callers mutate
// through EntityRef/query access afterward, matching the teacher's
// "push a zero row, write through the cursor" flow).
func (w *World) writeInitial(e Entity, arch *Archetype, row int, c AnyComponent) error {
	k := c.Kind()
	if k.Class == StorageSparseSet {
		ss := w.sparseSets[k.ID]
		ss.insert(e.Index(), nil)
		ss.stampAdded(e.Index(), w.tick)
		return nil
	}
	return nil
}

// Despawn removes an entity and all its components, firing OnReplace/
// OnRemove for each present component kind, then OnDespawn once.
func (w *World) Despawn(e Entity) error {
	if w.Locked() {
		w.commands.enqueue(despawnCommand{entity: e})
		return nil
	}
	return w.despawnNow(e)
}

func (w *World) despawnNow(e Entity) error {
	meta, ok := w.entities.meta(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	arch := meta.archetype

	if meta.onDestroy != nil {
		meta.onDestroy(e)
	}

	w.fireLifecycle(OnReplace, e, arch.kinds)
	w.fireLifecycle(OnRemove, e, arch.kinds)

	for _, k := range arch.kinds {
		if k.Class == StorageSparseSet {
			if ss := w.sparseSets[k.ID]; ss != nil {
				ss.remove(e.Index())
			}
		}
	}

	moved, hasMoved := arch.swapRemove(meta.row)
	if hasMoved {
		movedMeta, _ := w.entities.meta(moved)
		movedMeta.row = meta.row
	}

	w.observers.entityDespawned(e)
	w.fireLifecycle(OnDespawn, e, arch.kinds)
	w.entities.free(e)
	return nil
}

// Valid reports whether e still names a live row.
func (w *World) Valid(e Entity) bool { return w.entities.isValid(e) }

// AddComponents performs the archetype-graph add protocol (§4.4): move
// the entity to the archetype reached by adding kinds' set, firing
// OnAdd/OnInsert after the move completes. Re-adding an already-present
// kind is a value update and never moves the entity.
func (w *World) AddComponents(e Entity, add ...AnyComponent) error {
	if w.Locked() {
		w.commands.enqueue(addCommand{entity: e, components: add})
		return nil
	}
	return w.addComponentsNow(e, add)
}

func (w *World) addComponentsNow(e Entity, add []AnyComponent) error {
	meta, ok := w.entities.meta(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	src := meta.archetype
	kinds := sortedKinds(add)

	var novel []*ComponentKind
	for _, k := range kinds {
		if !src.Has(k) {
			novel = append(novel, k)
		}
	}

	if len(novel) == 0 {
		// Pure value update: no structural move, no triggers.
		for _, c := range add {
			w.writeValue(e, c)
		}
		return nil
	}

	dest, err := w.graph.withAdded(src, novel)
	if err != nil {
		return err
	}

	destRow, moved, hasMoved := src.transferRow(meta.row, dest, w.tick)
	if hasMoved {
		movedMeta, _ := w.entities.meta(moved)
		movedMeta.row = meta.row
	}
	meta.archetype = dest
	meta.row = destRow

	for _, k := range novel {
		if k.Class == StorageSparseSet && w.sparseSets[k.ID] == nil {
			w.sparseSets[k.ID] = newTypedSparseSetFor(k)
		}
	}
	for _, c := range add {
		w.writeValue(e, c)
	}

	w.fireLifecycle(OnAdd, e, novel)
	w.fireLifecycle(OnInsert, e, novel)
	return nil
}

// RemoveComponents performs the "remove" variant of §4.4: absent kinds
// are silently skipped (no-op), present ones trigger OnReplace/OnRemove
// before the move, matching the removal protocol's step order.
func (w *World) RemoveComponents(e Entity, remove ...AnyComponent) error {
	if w.Locked() {
		w.commands.enqueue(removeCommand{entity: e, components: remove, take: false})
		return nil
	}
	return w.removeComponentsNow(e, remove, false)
}

// TakeComponents is the "take" variant: removing an absent kind is
// NoSuchComponent instead of a no-op.
func (w *World) TakeComponents(e Entity, remove ...AnyComponent) error {
	if w.Locked() {
		w.commands.enqueue(removeCommand{entity: e, components: remove, take: true})
		return nil
	}
	return w.removeComponentsNow(e, remove, true)
}

func (w *World) removeComponentsNow(e Entity, remove []AnyComponent, take bool) error {
	meta, ok := w.entities.meta(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	src := meta.archetype
	kinds := sortedKinds(remove)

	var present []*ComponentKind
	for _, k := range kinds {
		if src.Has(k) {
			present = append(present, k)
		} else if take {
			return NoSuchComponentError{Entity: e, Kind: k}
		}
	}
	if len(present) == 0 {
		return nil
	}

	w.fireLifecycle(OnReplace, e, present)
	w.fireLifecycle(OnRemove, e, present)

	for _, k := range present {
		if k.Class == StorageSparseSet {
			if ss := w.sparseSets[k.ID]; ss != nil {
				ss.remove(e.Index())
			}
		}
	}

	dest, err := w.graph.withRemoved(src, present, take)
	if err != nil {
		return err
	}

	destRow, moved, hasMoved := src.transferRow(meta.row, dest, w.tick)
	if hasMoved {
		movedMeta, _ := w.entities.meta(moved)
		movedMeta.row = meta.row
	}
	meta.archetype = dest
	meta.row = destRow
	return nil
}

// writeValue makes sure e has a slot for c in its current row. For a
// SparseSet-class kind it inserts a zero value (stamped added) if the
// slot is absent, or stamps the existing slot changed. No component
// value is written.
func (w *World) writeValue(e Entity, c AnyComponent) {
	k := c.Kind()
	if k.Class == StorageSparseSet {
		ss, ok := w.sparseSets[k.ID]
		if !ok {
			return
		}
		if !ss.has(e.Index()) {
			ss.insert(e.Index(), nil)
			ss.stampAdded(e.Index(), w.tick)
		} else {
			ss.markChanged(e.Index(), w.tick)
		}
		return
	}
	// Table-class rows already exist after the move; values are written
	// through Set/SetRef (entity_ref.go).
}

func newTypedSparseSetFor(k *ComponentKind) sparseSet {
	// The concrete element type is erased by the time the world only
	// has a *ComponentKind; RegisterComponent stashes a constructor
	// closure on first registration so the world can build the right
	// typedSparseSet[T] without reflection over the zero value.
	if k.sparseCtor == nil {
		panic(fmt.Sprintf("component %s has no sparse-set constructor", k.Name))
	}
	return k.sparseCtor()
}

// archetypes exposes every archetype currently known to the world, in
// creation order (deterministic iteration order for queries, §4.5).
func (w *World) archetypes() []*Archetype { return w.graph.byID }

// SpawnBundle is Spawn for a reusable, statically-built Bundle.
func (w *World) SpawnBundle(b Bundle) (Entity, error) { return w.Spawn(b.components()...) }

// AddBundle is AddComponents for a reusable, statically-built Bundle.
func (w *World) AddBundle(e Entity, b Bundle) error { return w.AddComponents(e, b.components()...) }

// RemoveBundle is RemoveComponents for a reusable, statically-built
// Bundle.
func (w *World) RemoveBundle(e Entity, b Bundle) error {
	return w.RemoveComponents(e, b.components()...)
}

// TakeBundle is TakeComponents for a reusable, statically-built Bundle.
func (w *World) TakeBundle(e Entity, b Bundle) error {
	return w.TakeComponents(e, b.components()...)
}

// EntityMut returns a typed handle bound to e's live row, so callers
// can chain component operations without re-threading the Entity
// argument through every call (bevy's EntityWorldMut, generalized for
// archetype-graph based moves).
func (w *World) EntityMut(e Entity) (EntityRef, error) {
	if !w.Valid(e) {
		return EntityRef{}, InvalidEntityError{Entity: e}
	}
	return EntityRef{world: w, entity: e}, nil
}
