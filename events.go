package forge

import "reflect"

// eventRecord pairs a queued event value with the strictly increasing
// id assigned at write time (§5's EventBuffer contract).
type eventRecord struct {
	id    uint64
	value any
}

// eventBuffer is the type-erased double buffer backing one event type:
// writers append to the current half and readers read both halves,
// matching bevy's Events<T> double-buffer (chosen over a single ring
// buffer with an offset per the resolved Open Question in §5 — a
// double buffer makes "has this reader fallen behind by more than one
// frame" trivially observable as a dropped-buffer count instead of a
// wraparound check).
type eventBuffer struct {
	elemType reflect.Type
	current  []eventRecord
	previous []eventRecord
	nextID   uint64
}

func newEventBuffer(t reflect.Type) *eventBuffer {
	return &eventBuffer{elemType: t, nextID: 1}
}

func (b *eventBuffer) write(v any) uint64 {
	id := b.nextID
	b.nextID++
	b.current = append(b.current, eventRecord{id: id, value: v})
	return id
}

// swap rotates the buffers, called once per frame by the schedule
// (analogous to bevy's Events::update). An event stays visible to
// readers through the first swap after it was written and is dropped by
// the second.
func (b *eventBuffer) swap() {
	b.previous = b.current
	b.current = nil
}

// since returns every record with id > lastSeen, across both halves in
// write order, plus the highest id observed (for the reader to store as
// its new cursor).
func (b *eventBuffer) since(lastSeen uint64) ([]eventRecord, uint64) {
	var out []eventRecord
	newest := lastSeen
	for _, r := range b.previous {
		if r.id > lastSeen {
			out = append(out, r)
			if r.id > newest {
				newest = r.id
			}
		}
	}
	for _, r := range b.current {
		if r.id > lastSeen {
			out = append(out, r)
			if r.id > newest {
				newest = r.id
			}
		}
	}
	return out, newest
}

// eventRegistry holds one eventBuffer per event type, world-owned.
type eventRegistry struct {
	buffers map[reflect.Type]*eventBuffer
}

func newEventRegistry() *eventRegistry {
	return &eventRegistry{buffers: make(map[reflect.Type]*eventBuffer)}
}

func (r *eventRegistry) bufferFor(t reflect.Type) *eventBuffer {
	b, ok := r.buffers[t]
	if !ok {
		b = newEventBuffer(t)
		r.buffers[t] = b
	}
	return b
}

// SwapEventBuffers rotates every registered event type's double buffer.
// Executor.RunOnce calls this once per frame, after every level has run,
// so events written this frame stay readable through the next frame.
func (w *World) SwapEventBuffers() {
	for _, b := range w.events.buffers {
		b.swap()
	}
}

// EventWriter is the system-param handle for publishing events of type
// T.
type EventWriter[T any] struct {
	world *World
}

// NewEventWriter builds a writer for event type T.
func NewEventWriter[T any](w *World) EventWriter[T] { return EventWriter[T]{world: w} }

// Write publishes one event.
func (w EventWriter[T]) Write(v T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	w.world.events.bufferFor(t).write(v)
}

// EventReader is the system-param handle for draining events of type T
// written since this reader's cursor. Each distinct reader (keyed by
// the *EventReader value itself) tracks its own last_seen_id (§5).
type EventReader[T any] struct {
	world      *World
	lastSeenID uint64
}

// NewEventReader builds a reader for event type T, starting before any
// currently-buffered event.
func NewEventReader[T any](w *World) *EventReader[T] { return &EventReader[T]{world: w} }

// Read drains every event written since the last Read call, in write
// order, advancing the reader's cursor.
func (r *EventReader[T]) Read() []T {
	t := reflect.TypeOf((*T)(nil)).Elem()
	records, newest := r.world.events.bufferFor(t).since(r.lastSeenID)
	r.lastSeenID = newest
	out := make([]T, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.value.(T))
	}
	return out
}
