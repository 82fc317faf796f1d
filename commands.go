package forge

// command is one queued structural mutation, applied once the world's
// lock depth returns to zero (§4.7: Commands are collected during a
// system run and flushed at the executor's next sync point).
type command interface {
	apply(w *World) error
}

type spawnCommand struct {
	components []AnyComponent
}

func (c spawnCommand) apply(w *World) error {
	_, err := w.spawnNow(c.components)
	return err
}

type despawnCommand struct {
	entity Entity
}

func (c despawnCommand) apply(w *World) error {
	if !w.Valid(c.entity) {
		return nil
	}
	return w.despawnNow(c.entity)
}

type addCommand struct {
	entity     Entity
	components []AnyComponent
}

func (c addCommand) apply(w *World) error {
	if !w.Valid(c.entity) {
		return nil
	}
	return w.addComponentsNow(c.entity, c.components)
}

type removeCommand struct {
	entity     Entity
	components []AnyComponent
	take       bool
}

func (c removeCommand) apply(w *World) error {
	if !w.Valid(c.entity) {
		return nil
	}
	return w.removeComponentsNow(c.entity, c.components, c.take)
}

// CommandQueue buffers commands issued while the world is locked
// (mid-iteration or mid-system-run) and applies them in FIFO order once
// drained.
type CommandQueue struct {
	pending []command
}

func newCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

func (q *CommandQueue) enqueue(c command) {
	q.pending = append(q.pending, c)
}

// apply runs every queued command against w, in submission order.
// Commands enqueued by a command's own application (e.g. a spawn
// triggering an OnAdd hook that despawns something else) are appended
// to the same queue and processed within this call, draining it fully.
func (q *CommandQueue) apply(w *World) error {
	for len(q.pending) > 0 {
		next := q.pending[0]
		q.pending = q.pending[1:]
		if err := next.apply(w); err != nil {
			return err
		}
	}
	return nil
}

// Commands is the system-param handle for queuing structural mutations
// from within a system body without requiring &mut World access,
// mirroring the teacher's operation-queue pattern generalized from
// entity-creation-only to the full structural API.
type Commands struct {
	world *World
}

// NewCommands wraps w for deferred structural mutation.
func NewCommands(w *World) Commands { return Commands{world: w} }

// Spawn queues entity creation.
func (c Commands) Spawn(bundle ...AnyComponent) {
	c.world.commands.enqueue(spawnCommand{components: bundle})
}

// Despawn queues entity destruction.
func (c Commands) Despawn(e Entity) {
	c.world.commands.enqueue(despawnCommand{entity: e})
}

// AddComponents queues a structural add.
func (c Commands) AddComponents(e Entity, add ...AnyComponent) {
	c.world.commands.enqueue(addCommand{entity: e, components: add})
}

// RemoveComponents queues a structural remove (absent kinds are a
// no-op).
func (c Commands) RemoveComponents(e Entity, remove ...AnyComponent) {
	c.world.commands.enqueue(removeCommand{entity: e, components: remove, take: false})
}

// TakeComponents queues a structural remove that errors at apply time
// if any kind is absent.
func (c Commands) TakeComponents(e Entity, remove ...AnyComponent) {
	c.world.commands.enqueue(removeCommand{entity: e, components: remove, take: true})
}
