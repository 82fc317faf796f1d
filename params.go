package forge

import "reflect"

// paramAccess is the read/write footprint one system parameter
// contributes. Systems merge their parameters' paramAccess at build
// time to get the system's total declared access (§3).
type paramAccess struct {
	compReads    []uint32
	compWrites   []uint32
	resReads     []reflect.Type
	resWrites    []reflect.Type
	eventReads   []reflect.Type
	eventWrites  []reflect.Type
	exclusive    bool
}

// Param is implemented by every system-parameter type (QueryN, Res,
// ResMut, Commands, EventReader, EventWriter, Local) so a system can
// compute its access footprint from the parameters it captures.
type Param interface {
	describe() paramAccess
}

func (q *Query1[A]) describe() paramAccess { return paramAccess{compWrites: []uint32{q.kindA.ID}} }

func (q *Query2[A, B]) describe() paramAccess {
	return paramAccess{compWrites: []uint32{q.kindA.ID, q.kindB.ID}}
}

func (q *Query3[A, B, C]) describe() paramAccess {
	return paramAccess{compWrites: []uint32{q.kindA.ID, q.kindB.ID, q.kindC.ID}}
}

func (q *Query4[A, B, C, D]) describe() paramAccess {
	return paramAccess{compWrites: []uint32{q.kindA.ID, q.kindB.ID, q.kindC.ID, q.kindD.ID}}
}

// Ref1..Ref4 declare reads, not writes — two systems holding only Refs
// over the same component(s) don't conflict (§5).
func (q *Ref1[A]) describe() paramAccess { return paramAccess{compReads: []uint32{q.kindA.ID}} }

func (q *Ref2[A, B]) describe() paramAccess {
	return paramAccess{compReads: []uint32{q.kindA.ID, q.kindB.ID}}
}

func (q *Ref3[A, B, C]) describe() paramAccess {
	return paramAccess{compReads: []uint32{q.kindA.ID, q.kindB.ID, q.kindC.ID}}
}

func (q *Ref4[A, B, C, D]) describe() paramAccess {
	return paramAccess{compReads: []uint32{q.kindA.ID, q.kindB.ID, q.kindC.ID, q.kindD.ID}}
}

func (r Res[T]) describe() paramAccess {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return paramAccess{resReads: []reflect.Type{t}}
}

func (r ResMut[T]) describe() paramAccess {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return paramAccess{resWrites: []reflect.Type{t}}
}

// Commands never declares component/resource access — its mutations are
// deferred and applied at the next sync point, so it never conflicts
// with a concurrently running system (§4.7).
func (c Commands) describe() paramAccess { return paramAccess{} }

func (r *EventReader[T]) describe() paramAccess {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return paramAccess{eventReads: []reflect.Type{t}}
}

func (w EventWriter[T]) describe() paramAccess {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return paramAccess{eventWrites: []reflect.Type{t}}
}

// Local holds system-private state that persists across runs without
// living in the World at all — no access footprint, never conflicts.
type Local[T any] struct {
	Value T
}

// NewLocal creates a zero-valued Local[T], to be stored alongside the
// owning System and passed into its closure by reference.
func NewLocal[T any]() *Local[T] { return &Local[T]{} }

func (l *Local[T]) describe() paramAccess { return paramAccess{} }

// ExclusiveWorld is a Param that gives a system full, direct access to
// *World — conflicts with every other system, since the executor can't
// reason about what an exclusive system might touch (§3's "exclusive
// systems run alone" rule).
type ExclusiveWorld struct {
	World *World
}

func (e ExclusiveWorld) describe() paramAccess { return paramAccess{exclusive: true} }

func mergeAccess(params []Param) paramAccess {
	var acc paramAccess
	for _, p := range params {
		d := p.describe()
		acc.compReads = append(acc.compReads, d.compReads...)
		acc.compWrites = append(acc.compWrites, d.compWrites...)
		acc.resReads = append(acc.resReads, d.resReads...)
		acc.resWrites = append(acc.resWrites, d.resWrites...)
		acc.eventReads = append(acc.eventReads, d.eventReads...)
		acc.eventWrites = append(acc.eventWrites, d.eventWrites...)
		acc.exclusive = acc.exclusive || d.exclusive
	}
	return acc
}

// conflictsWith reports whether two systems' declared accesses could
// race if run concurrently: any write overlapping the other's read or
// write set, on components, resources, or events, or either being
// exclusive.
func (a paramAccess) conflictsWith(b paramAccess) bool {
	if a.exclusive || b.exclusive {
		return true
	}
	if intersectsU32(a.compWrites, b.compReads) || intersectsU32(a.compWrites, b.compWrites) {
		return true
	}
	if intersectsU32(b.compWrites, a.compReads) {
		return true
	}
	if intersectsType(a.resWrites, b.resReads) || intersectsType(a.resWrites, b.resWrites) {
		return true
	}
	if intersectsType(b.resWrites, a.resReads) {
		return true
	}
	if intersectsType(a.eventWrites, b.eventReads) || intersectsType(a.eventWrites, b.eventWrites) {
		return true
	}
	if intersectsType(b.eventWrites, a.eventReads) {
		return true
	}
	return false
}

func intersectsU32(a, b []uint32) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[uint32]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return true
		}
	}
	return false
}

func intersectsType(a, b []reflect.Type) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[reflect.Type]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return true
		}
	}
	return false
}
