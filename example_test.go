package forge

import "testing"

type exPosition struct{ X, Y, Z float64 }
type exVelocity struct{ X, Y, Z float64 }
type exA struct{ N int }
type exB struct{ S string }
type exPing struct{ N int }
type exScore struct{ Value int }

var (
	exPositionComp = RegisterComponent[exPosition](StorageTable)
	exVelocityComp = RegisterComponent[exVelocity](StorageTable)
	exAComp        = RegisterComponent[exA](StorageTable)
	exBComp        = RegisterComponent[exB](StorageTable)
)

// TestSpawnDespawnIdentity is S1: a spawned entity's components round
// trip through a query and through direct Get, and both disappear once
// the entity despawns.
func TestSpawnDespawnIdentity(t *testing.T) {
	w := NewWorld()
	e, err := w.Spawn(exPositionComp, exVelocityComp)
	if err != nil {
		t.Fatal(err)
	}
	if err := Set(w, e, exPosition{X: 1, Y: 2, Z: 3}); err != nil {
		t.Fatal(err)
	}
	if err := Set(w, e, exVelocity{X: 0, Y: 0, Z: 1}); err != nil {
		t.Fatal(err)
	}

	q, err := NewQuery2[exPosition, exVelocity](w)
	if err != nil {
		t.Fatal(err)
	}
	if q.Count() != 1 {
		t.Fatalf("expected exactly one matching tuple, got %d", q.Count())
	}
	q.Each(func(_ Entity, pos *exPosition, vel *exVelocity) {
		if *pos != (exPosition{X: 1, Y: 2, Z: 3}) || *vel != (exVelocity{X: 0, Y: 0, Z: 1}) {
			t.Fatalf("unexpected values: %+v %+v", pos, vel)
		}
	})

	if err := w.Despawn(e); err != nil {
		t.Fatal(err)
	}
	if q.Count() != 0 {
		t.Fatalf("expected zero matches after despawn, got %d", q.Count())
	}
	if _, err := Get[exPosition](w, e); err == nil {
		t.Fatal("expected Get on a despawned entity to error")
	}
}

// TestStructuralMovePreservesValues is S2: adding and removing
// components moves the entity across archetypes without disturbing the
// values of components that survive the move.
func TestStructuralMovePreservesValues(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn(exAComp)
	if err := Set(w, e, exA{N: 10}); err != nil {
		t.Fatal(err)
	}

	if err := w.AddComponents(e, exBComp); err != nil {
		t.Fatal(err)
	}
	if err := Set(w, e, exB{S: "x"}); err != nil {
		t.Fatal(err)
	}

	a, err := Get[exA](w, e)
	if err != nil || a.N != 10 {
		t.Fatalf("expected A to survive the add, got %+v, %v", a, err)
	}
	b, err := Get[exB](w, e)
	if err != nil || b.S != "x" {
		t.Fatalf("expected B to be set, got %+v, %v", b, err)
	}

	if err := w.RemoveComponents(e, exAComp); err != nil {
		t.Fatal(err)
	}
	if _, err := Get[exA](w, e); err == nil {
		t.Fatal("expected A to be gone after remove")
	}
	b, err = Get[exB](w, e)
	if err != nil || b.S != "x" {
		t.Fatalf("expected B to survive the remove, got %+v, %v", b, err)
	}
}

// TestDoubleBufferedEventsMatchSpec is S3: an event survives exactly
// one SwapEventBuffers beyond the frame it was written in.
func TestDoubleBufferedEventsMatchSpec(t *testing.T) {
	w := NewWorld()
	writer := NewEventWriter[exPing](w)
	reader := NewEventReader[exPing](w)

	writer.Write(exPing{N: 1})
	writer.Write(exPing{N: 2})
	got := reader.Read()
	if len(got) != 2 || got[0].N != 1 || got[1].N != 2 {
		t.Fatalf("expected [1 2], got %+v", got)
	}
	if more := reader.Read(); len(more) != 0 {
		t.Fatalf("expected empty read immediately after draining, got %+v", more)
	}

	w.SwapEventBuffers()
	writer.Write(exPing{N: 3})
	got = reader.Read()
	if len(got) != 1 || got[0].N != 3 {
		t.Fatalf("expected [3], got %+v", got)
	}

	w.SwapEventBuffers()
	w.SwapEventBuffers()
	writer.Write(exPing{N: 4})
	got = reader.Read()
	if len(got) != 1 || got[0].N != 4 {
		t.Fatalf("expected [4], not earlier pings, got %+v", got)
	}
}

// TestConflictingResourceAccessFailsRegistration is S4 in its
// two-system shape: one system holds ResMut<exScore>, another holds
// Res<exScore>, and Build rejects the unordered pair. NewSystem does not
// check one system's own parameters against each other, so the
// single-system ResMut+Res form is not detected.
func TestConflictingResourceAccessFailsRegistration(t *testing.T) {
	w := NewWorld()
	InsertResource(w, exScore{})

	sched := NewSchedule("s4")
	sched.AddSystem(NewSystem("writer", func() {}, NewResMut[exScore](w)))
	sched.AddSystem(NewSystem("reader", func() {}, NewRes[exScore](w)))

	err := sched.Build()
	if err == nil {
		t.Fatal("expected ConflictingAccessError for unordered ResMut/Res on the same resource")
	}
	if _, ok := err.(ConflictingAccessError); !ok {
		t.Fatalf("expected ConflictingAccessError, got %T", err)
	}
}

// TestOrderingEdgeMakesWriteVisible is S6: an explicit before-edge
// guarantees A's write to Score is observed by B within the same frame.
func TestOrderingEdgeMakesWriteVisible(t *testing.T) {
	w := NewWorld()
	InsertResource(w, exScore{Value: 0})

	observed := -1
	sched := NewSchedule("s6")
	sched.AddSystem(NewSystem("a", func() {
		s, _ := Resource[exScore](w)
		s.Value = 1
	}, NewResMut[exScore](w)))
	sched.AddSystem(NewSystem("b", func() {
		s, _ := Resource[exScore](w)
		observed = s.Value
	}, NewRes[exScore](w)))
	sched.OrderBefore("a", "b")

	ex := NewExecutor(w, 2)
	if err := ex.RunOnce(sched); err != nil {
		t.Fatal(err)
	}
	if observed != 1 {
		t.Fatalf("expected B to observe A's write, got %d", observed)
	}
}
