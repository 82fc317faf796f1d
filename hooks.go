package forge

// fireLifecycle runs every hook then every observer registered for evt
// across kinds, in that order (§4.6's resolved dispatch-order question).
// Hooks run unconditionally; observers only for entities/kinds they
// were registered against.
func (w *World) fireLifecycle(evt LifecycleEvent, e Entity, kinds []*ComponentKind) {
	if len(kinds) == 0 {
		return
	}
	dw := newDeferredWorld(w, e)
	for _, k := range kinds {
		if hook := k.Hook(evt); hook != nil {
			hook(dw, e, k)
		}
	}
	for _, k := range kinds {
		w.observers.dispatch(dw, evt, e, k)
	}
}

// Observe registers fn to run whenever evt fires for kind on any
// entity.
func Observe[T any](w *World, evt LifecycleEvent, fn ObserverFunc) (ObserverHandle, error) {
	kind, err := ComponentKindOf[T]()
	if err != nil {
		return 0, err
	}
	return w.observers.observe(evt, kind, Entity{}, true, fn), nil
}

// ObserveEntity registers fn to run only when evt fires for kind on e.
// The observer is dropped automatically when e despawns.
func ObserveEntity[T any](w *World, e Entity, evt LifecycleEvent, fn ObserverFunc) (ObserverHandle, error) {
	kind, err := ComponentKindOf[T]()
	if err != nil {
		return 0, err
	}
	return w.observers.observe(evt, kind, e, false, fn), nil
}

// StopObserving removes a previously registered observer.
func (w *World) StopObserving(h ObserverHandle) {
	w.observers.stopObserving(h)
}
