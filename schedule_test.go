package forge

import "testing"

type stPosition struct{ X float64 }

var stPositionComp = RegisterComponent[stPosition](StorageTable)

func newStPositionQuery(t *testing.T, w *World) *Query1[stPosition] {
	t.Helper()
	q, err := NewQuery1[stPosition](w)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func TestScheduleBuildOrdersIndependentSystemsIntoOneLevel(t *testing.T) {
	w := NewWorld()
	qa := newStPositionQuery(t, w)
	qb := newStPositionQuery(t, w)

	sched := NewSchedule("independent")
	sched.AddSystem(NewSystem("a", func() {}))
	sched.AddSystem(NewSystem("b", func() {}))
	_ = qa
	_ = qb

	if err := sched.Build(); err != nil {
		t.Fatal(err)
	}
	if len(sched.batches) != 1 || len(sched.batches[0]) != 2 {
		t.Fatalf("expected both systems in a single level, got %v", sched.batches)
	}
}

func TestScheduleBuildRejectsUnorderedConflict(t *testing.T) {
	w := NewWorld()
	qa := newStPositionQuery(t, w)
	qb := newStPositionQuery(t, w)

	sched := NewSchedule("conflict")
	sched.AddSystem(NewSystem("a", func() {}, qa))
	sched.AddSystem(NewSystem("b", func() {}, qb))

	err := sched.Build()
	if err == nil {
		t.Fatal("expected ConflictingAccessError for two systems writing the same component with no ordering")
	}
	if _, ok := err.(ConflictingAccessError); !ok {
		t.Fatalf("expected ConflictingAccessError, got %T: %v", err, err)
	}
}

func TestScheduleBuildAcceptsOrderedConflict(t *testing.T) {
	w := NewWorld()
	qa := newStPositionQuery(t, w)
	qb := newStPositionQuery(t, w)

	sched := NewSchedule("ordered")
	sched.AddSystem(NewSystem("a", func() {}, qa))
	sched.AddSystem(NewSystem("b", func() {}, qb))
	sched.OrderBefore("a", "b")

	if err := sched.Build(); err != nil {
		t.Fatalf("expected ordered conflicting systems to build cleanly, got %v", err)
	}
	if len(sched.batches) != 2 {
		t.Fatalf("expected two sequential levels, got %v", sched.batches)
	}
}

func TestScheduleBuildAcceptsUnorderedReadOnlyOverlap(t *testing.T) {
	w := NewWorld()
	ra, err := NewRef1[stPosition](w)
	if err != nil {
		t.Fatal(err)
	}
	rb, err := NewRef1[stPosition](w)
	if err != nil {
		t.Fatal(err)
	}

	sched := NewSchedule("read-only")
	sched.AddSystem(NewSystem("a", func() {}, ra))
	sched.AddSystem(NewSystem("b", func() {}, rb))

	if err := sched.Build(); err != nil {
		t.Fatalf("expected two read-only queries over the same component not to conflict, got %v", err)
	}
	if len(sched.batches) != 1 || len(sched.batches[0]) != 2 {
		t.Fatalf("expected both read-only systems in a single level, got %v", sched.batches)
	}
}

func TestScheduleBuildDetectsCycle(t *testing.T) {
	sched := NewSchedule("cycle")
	sched.AddSystem(NewSystem("a", func() {}))
	sched.AddSystem(NewSystem("b", func() {}))
	sched.OrderBefore("a", "b")
	sched.OrderBefore("b", "a")

	err := sched.Build()
	if err == nil {
		t.Fatal("expected CycleInScheduleError")
	}
	if _, ok := err.(CycleInScheduleError); !ok {
		t.Fatalf("expected CycleInScheduleError, got %T: %v", err, err)
	}
}

func TestRunConditionGatesExecution(t *testing.T) {
	ran := false
	gate := false
	sys := NewSystem("gated", func() { ran = true }).WithRunCondition(func() bool { return gate })

	if sys.shouldRun() {
		t.Fatal("expected gated system not to run while condition is false")
	}

	gate = true
	if !sys.shouldRun() {
		t.Fatal("expected gated system to run once condition flips true")
	}
	sys.run()
	if !ran {
		t.Fatal("expected run closure to have executed")
	}
}
