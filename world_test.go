package forge

import "testing"

type wtPosition struct{ X, Y float64 }
type wtVelocity struct{ X, Y float64 }
type wtTag struct{}
type wtChurny struct{ N int }

var (
	wtPositionComp = RegisterComponent[wtPosition](StorageTable)
	wtVelocityComp = RegisterComponent[wtVelocity](StorageTable)
	wtTagComp      = RegisterComponent[wtTag](StorageTable)
	wtChurnyComp   = RegisterComponent[wtChurny](StorageSparseSet)
)

func TestSpawnAssignsDistinctEntities(t *testing.T) {
	w := NewWorld()
	a, err := w.Spawn(wtPositionComp)
	if err != nil {
		t.Fatal(err)
	}
	b, err := w.Spawn(wtPositionComp)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("expected distinct entities, got %v and %v", a, b)
	}
	if !w.Valid(a) || !w.Valid(b) {
		t.Fatal("freshly spawned entities should be valid")
	}
}

func TestDespawnInvalidatesHandle(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn(wtPositionComp)
	if err := w.Despawn(e); err != nil {
		t.Fatal(err)
	}
	if w.Valid(e) {
		t.Fatal("expected entity to be invalid after despawn")
	}
	if err := w.Despawn(e); err == nil {
		t.Fatal("expected despawning an already-dead entity to error")
	}
}

func TestSwapRemoveFixesUpMovedEntity(t *testing.T) {
	w := NewWorld()
	e1, _ := w.Spawn(wtPositionComp)
	e2, _ := w.Spawn(wtPositionComp)
	e3, _ := w.Spawn(wtPositionComp)

	if err := w.Despawn(e1); err != nil {
		t.Fatal(err)
	}

	// e3 should have been swapped into e1's vacated row; its cached
	// location must reflect that, or AddComponents below would corrupt
	// the wrong row.
	if err := w.AddComponents(e3, wtVelocityComp); err != nil {
		t.Fatal(err)
	}
	if !Has[wtVelocity](w, e3) {
		t.Fatal("expected e3 to carry Velocity after the add")
	}
	if !w.Valid(e2) {
		t.Fatal("e2 should remain valid and untouched")
	}
}

func TestAddComponentsMovesArchetype(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn(wtPositionComp)
	if err := Set(w, e, wtPosition{X: 1, Y: 2}); err != nil {
		t.Fatal(err)
	}

	if err := w.AddComponents(e, wtVelocityComp); err != nil {
		t.Fatal(err)
	}

	pos, err := Get[wtPosition](w, e)
	if err != nil {
		t.Fatal(err)
	}
	if pos.X != 1 || pos.Y != 2 {
		t.Fatalf("expected position to survive the archetype move, got %+v", pos)
	}
	if !Has[wtVelocity](w, e) {
		t.Fatal("expected e to carry Velocity")
	}
}

func TestReAddIsValueUpdateNotMove(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn(wtPositionComp)
	archBefore, _ := w.entities.meta(e)
	firstArch := archBefore.archetype

	if err := w.AddComponents(e, wtPositionComp); err != nil {
		t.Fatal(err)
	}
	archAfter, _ := w.entities.meta(e)
	if archAfter.archetype != firstArch {
		t.Fatal("re-adding an already-present component must not move the entity")
	}
}

func TestRemoveAbsentIsNoOpTakeErrors(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn(wtPositionComp)

	if err := w.RemoveComponents(e, wtVelocityComp); err != nil {
		t.Fatalf("remove of an absent component should be a no-op, got %v", err)
	}
	if err := w.TakeComponents(e, wtVelocityComp); err == nil {
		t.Fatal("take of an absent component should error")
	}
}

func TestSparseSetComponentSurvivesArchetypeMove(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn(wtChurnyComp)
	if err := Set(w, e, wtChurny{N: 7}); err != nil {
		t.Fatal(err)
	}
	if err := w.AddComponents(e, wtPositionComp); err != nil {
		t.Fatal(err)
	}
	v, err := Get[wtChurny](w, e)
	if err != nil {
		t.Fatal(err)
	}
	if v.N != 7 {
		t.Fatalf("expected sparse value to survive the move, got %+v", v)
	}
}

func TestLockDefersStructuralMutation(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn(wtPositionComp)

	w.Lock()
	if err := w.AddComponents(e, wtVelocityComp); err != nil {
		t.Fatal(err)
	}
	if Has[wtVelocity](w, e) {
		t.Fatal("structural mutation should be deferred while locked")
	}
	w.Unlock()
	if !Has[wtVelocity](w, e) {
		t.Fatal("expected deferred add to apply once unlocked")
	}
}
