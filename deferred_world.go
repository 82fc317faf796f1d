package forge

// DeferredWorld is the restricted handle hooks and observers receive
// while a lifecycle event is firing. Structural mutation of the entity
// currently under trigger is forbidden — attempts enqueue instead
// against other entities, but panic for self-mutation to catch the
// re-entrancy bug early instead of corrupting the in-flight archetype
// move (§4.6).
type DeferredWorld struct {
	world   *World
	firing  Entity
	hasSelf bool
}

func newDeferredWorld(w *World, firing Entity) *DeferredWorld {
	return &DeferredWorld{world: w, firing: firing, hasSelf: true}
}

// Spawn queues a new entity, to be created once the current lock scope
// drains.
func (dw *DeferredWorld) Spawn(bundle ...AnyComponent) {
	dw.world.commands.enqueue(spawnCommand{components: bundle})
}

// AddComponents queues a structural add against e. Targeting the
// entity currently firing panics: lifecycle callbacks must not
// re-enter their own entity's structural state mid-transition.
func (dw *DeferredWorld) AddComponents(e Entity, add ...AnyComponent) {
	dw.guard(e)
	dw.world.commands.enqueue(addCommand{entity: e, components: add})
}

// RemoveComponents queues a structural remove against e. See
// AddComponents for the re-entrancy rule.
func (dw *DeferredWorld) RemoveComponents(e Entity, remove ...AnyComponent) {
	dw.guard(e)
	dw.world.commands.enqueue(removeCommand{entity: e, components: remove, take: false})
}

// Despawn queues destruction of e. See AddComponents for the
// re-entrancy rule.
func (dw *DeferredWorld) Despawn(e Entity) {
	dw.guard(e)
	dw.world.commands.enqueue(despawnCommand{entity: e})
}

func (dw *DeferredWorld) guard(e Entity) {
	if dw.hasSelf && e == dw.firing {
		panic(reentrantMutationMessage(dw.firing))
	}
}

// Resource reads a resource by type, the same as World.Resource — hooks
// and observers may freely read (but not structurally write) world
// state.
func ResourceFromDeferred[T any](dw *DeferredWorld) (*T, error) {
	return Resource[T](dw.world)
}

func reentrantMutationMessage(e Entity) string {
	return "forge: observer/hook attempted to re-enter structural mutation of entity " + e.String() + " while its own lifecycle event is firing"
}
