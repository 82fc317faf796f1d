/*
Package forge provides an archetype-based Entity-Component-System (ECS)
and a parallel system scheduler for games and simulations.

Forge keeps entities with identical component sets packed together in
per-archetype storage for cache-friendly iteration, moving entities
between archetypes as components are added or removed. A component's
storage class — Table (dense, columnar) or SparseSet (churn-tolerant,
independent of archetype moves) — is chosen once at registration.

Core Concepts:

  - Entity: a stable index/generation handle to a row of components.
  - Component: a registered, typed data kind (RegisterComponent).
  - Archetype: the set of entities sharing one exact component signature.
  - Query: a typed, filtered view over every entity carrying a given
    component set (NewQuery1..NewQuery4).
  - System: a unit of frame logic with a computed access footprint,
    scheduled and run by an Executor.

Basic Usage:

	type Position struct{ X, Y float64 }
	type Velocity struct{ X, Y float64 }

	posComp := forge.RegisterComponent[Position](forge.StorageTable)
	velComp := forge.RegisterComponent[Velocity](forge.StorageTable)

	world := forge.NewWorld()
	e, _ := world.Spawn(posComp, velComp)

	query, _ := forge.NewQuery2[Position, Velocity](world)
	query.Each(func(e forge.Entity, pos *Position, vel *Velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

Systems compose into a Schedule, which an Executor runs one frame at a
time, dispatching non-conflicting systems concurrently:

	move := forge.NewSystem("move", func() { query.Each(moveOne) }, query)
	sched := forge.NewSchedule("update").AddSystem(move)
	forge.NewExecutor(world, 0).RunOnce(sched)
*/
package forge
