package forge

// ObserverFunc is the callback shape for both entity-scoped and
// world-scoped observers (§4.6).
type ObserverFunc func(dw *DeferredWorld, e Entity, kind *ComponentKind)

type observerKey struct {
	evt    LifecycleEvent
	kindID uint32
}

type observerEntry struct {
	id     uint64
	entity Entity
	global bool
	fn     ObserverFunc
}

// observerIndex holds every registered observer, indexed by (event,
// component kind) for dispatch and additionally by owning entity so a
// despawn can drop that entity's observers in one pass.
type observerIndex struct {
	byKey    map[observerKey][]*observerEntry
	byEntity map[Entity][]*observerEntry
	nextID   uint64
}

func newObserverIndex() *observerIndex {
	return &observerIndex{
		byKey:    make(map[observerKey][]*observerEntry),
		byEntity: make(map[Entity][]*observerEntry),
	}
}

// ObserverHandle identifies a registered observer for later removal.
type ObserverHandle uint64

// observe registers fn against (evt, kind). If global is true, the
// observer fires for every entity and owner is ignored; otherwise it
// fires only when the event concerns owner, and is dropped
// automatically when owner despawns.
func (idx *observerIndex) observe(evt LifecycleEvent, kind *ComponentKind, owner Entity, global bool, fn ObserverFunc) ObserverHandle {
	idx.nextID++
	entry := &observerEntry{id: idx.nextID, entity: owner, global: global, fn: fn}
	key := observerKey{evt: evt, kindID: kind.ID}
	idx.byKey[key] = append(idx.byKey[key], entry)
	if !global {
		idx.byEntity[owner] = append(idx.byEntity[owner], entry)
	}
	return ObserverHandle(entry.id)
}

// stopObserving removes a previously registered observer by handle.
func (idx *observerIndex) stopObserving(h ObserverHandle) {
	for key, entries := range idx.byKey {
		for i, e := range entries {
			if e.id == uint64(h) {
				idx.byKey[key] = append(entries[:i], entries[i+1:]...)
				if !e.global {
					idx.removeFromEntity(e)
				}
				return
			}
		}
	}
}

func (idx *observerIndex) removeFromEntity(e *observerEntry) {
	list := idx.byEntity[e.entity]
	for i, other := range list {
		if other.id == e.id {
			idx.byEntity[e.entity] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// entityDespawned drops every observer owned by e.
func (idx *observerIndex) entityDespawned(e Entity) {
	owned := idx.byEntity[e]
	if len(owned) == 0 {
		return
	}
	ownedIDs := make(map[uint64]bool, len(owned))
	for _, o := range owned {
		ownedIDs[o.id] = true
	}
	for key, entries := range idx.byKey {
		filtered := entries[:0]
		for _, entry := range entries {
			if !ownedIDs[entry.id] {
				filtered = append(filtered, entry)
			}
		}
		idx.byKey[key] = filtered
	}
	delete(idx.byEntity, e)
}

// dispatch invokes every observer registered for (evt, kind) that
// matches e (global observers always match; entity-scoped observers
// match only their own entity).
func (idx *observerIndex) dispatch(dw *DeferredWorld, evt LifecycleEvent, e Entity, kind *ComponentKind) {
	for _, entry := range idx.byKey[observerKey{evt: evt, kindID: kind.ID}] {
		if entry.global || entry.entity == e {
			entry.fn(dw, e, kind)
		}
	}
}
