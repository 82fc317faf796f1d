package forge

// Get returns a pointer to e's current value of T, for direct,
// non-query random access (§6's "O(1) by entity" requirement).
// Returns NoSuchComponentError if e doesn't carry T.
func Get[T any](w *World, e Entity) (*T, error) {
	meta, ok := w.entities.meta(e)
	if !ok {
		return nil, InvalidEntityError{Entity: e}
	}
	comp, err := componentHandleOf[T]()
	if err != nil {
		return nil, err
	}
	k := comp.Kind()
	if !meta.archetype.Has(k) {
		return nil, NoSuchComponentError{Entity: e, Kind: k}
	}
	return fetchPtr[T](w, meta.archetype, meta.row, e, k, comp), nil
}

// Has reports whether e currently carries T.
func Has[T any](w *World, e Entity) bool {
	meta, ok := w.entities.meta(e)
	if !ok {
		return false
	}
	k, err := ComponentKindOf[T]()
	if err != nil {
		return false
	}
	return meta.archetype.Has(k)
}

// Set writes value into e's slot for T and stamps its changed tick.
// Returns NoSuchComponentError if e doesn't carry T — Set never adds
// the component structurally; use World.AddComponents for that.
func Set[T any](w *World, e Entity, value T) error {
	ptr, err := Get[T](w, e)
	if err != nil {
		return err
	}
	*ptr = value
	comp, _ := componentHandleOf[T]()
	meta, _ := w.entities.meta(e)
	stampChanged(w, meta.archetype, meta.row, e, comp.Kind(), w.tick)
	return nil
}

// SetParent records e's parent for relation queries, returning
// EntityRelationError if e already has a different parent (§9's
// supplemented parent/child relation — single parent only).
func (w *World) SetParent(child, parent Entity) error {
	meta, ok := w.entities.meta(child)
	if !ok {
		return InvalidEntityError{Entity: child}
	}
	if meta.hasParent && meta.parent != parent {
		return EntityRelationError{Child: child, Parent: meta.parent}
	}
	meta.parent = parent
	meta.hasParent = true
	return nil
}

// Parent returns e's parent and whether it has one.
func (w *World) Parent(e Entity) (Entity, bool) {
	meta, ok := w.entities.meta(e)
	if !ok {
		return Entity{}, false
	}
	return meta.parent, meta.hasParent
}

// SetDestroyCallback registers a callback invoked immediately before e
// despawns, matching the teacher's entity destroy-callback hook.
func (w *World) SetDestroyCallback(e Entity, cb EntityDestroyCallback) error {
	meta, ok := w.entities.meta(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	meta.onDestroy = cb
	return nil
}

// EntityRef is a typed handle bound to one entity, returned by
// World.EntityMut. It wraps the component-access free functions and
// World's structural methods so a caller threading one entity through
// several operations doesn't have to repeat it.
type EntityRef struct {
	world  *World
	entity Entity
}

// Entity returns the underlying handle.
func (r EntityRef) Entity() Entity { return r.entity }

// Add performs World.AddComponents against the bound entity.
func (r EntityRef) Add(components ...AnyComponent) error {
	return r.world.AddComponents(r.entity, components...)
}

// Remove performs World.RemoveComponents against the bound entity.
func (r EntityRef) Remove(components ...AnyComponent) error {
	return r.world.RemoveComponents(r.entity, components...)
}

// Take performs World.TakeComponents against the bound entity.
func (r EntityRef) Take(components ...AnyComponent) error {
	return r.world.TakeComponents(r.entity, components...)
}

// Despawn performs World.Despawn against the bound entity.
func (r EntityRef) Despawn() error { return r.world.Despawn(r.entity) }

// GetRef reads T off the entity bound to r.
func GetRef[T any](r EntityRef) (*T, error) { return Get[T](r.world, r.entity) }

// HasRef reports whether the entity bound to r carries T.
func HasRef[T any](r EntityRef) bool { return Has[T](r.world, r.entity) }

// SetRef writes value into the entity bound to r's slot for T.
func SetRef[T any](r EntityRef, value T) error { return Set[T](r.world, r.entity, value) }
