package forge

import "testing"

type supA struct{ N int }
type supB struct{ N int }

var (
	supAComp = RegisterComponent[supA](StorageTable)
	supBComp = RegisterComponent[supB](StorageTable)
)

func TestBundleSpawnAddRemove(t *testing.T) {
	w := NewWorld()
	bundle := NewBundle(supAComp, supBComp)

	e, err := w.SpawnBundle(bundle)
	if err != nil {
		t.Fatal(err)
	}
	if !Has[supA](w, e) || !Has[supB](w, e) {
		t.Fatal("expected both bundle members present after SpawnBundle")
	}

	if err := w.RemoveBundle(e, bundle); err != nil {
		t.Fatal(err)
	}
	if Has[supA](w, e) || Has[supB](w, e) {
		t.Fatal("expected both bundle members gone after RemoveBundle")
	}

	if err := w.AddBundle(e, bundle); err != nil {
		t.Fatal(err)
	}
	if !Has[supA](w, e) || !Has[supB](w, e) {
		t.Fatal("expected both bundle members present after AddBundle")
	}
}

func TestEntityRefChainsOperations(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn(supAComp)

	ref, err := w.EntityMut(e)
	if err != nil {
		t.Fatal(err)
	}
	if err := SetRef(ref, supA{N: 4}); err != nil {
		t.Fatal(err)
	}
	if err := ref.Add(supBComp); err != nil {
		t.Fatal(err)
	}
	if !HasRef[supB](ref) {
		t.Fatal("expected supB present after EntityRef.Add")
	}
	a, err := GetRef[supA](ref)
	if err != nil || a.N != 4 {
		t.Fatalf("expected supA value to survive the add, got %+v, %v", a, err)
	}

	if err := ref.Despawn(); err != nil {
		t.Fatal(err)
	}
	if w.Valid(e) {
		t.Fatal("expected entity invalid after EntityRef.Despawn")
	}

	if _, err := w.EntityMut(e); err == nil {
		t.Fatal("expected EntityMut on a dead entity to error")
	}
}

func TestScheduleSystemSetOrdering(t *testing.T) {
	w := NewWorld()
	qa := newStPositionQuery(t, w)
	qb, err := NewRef1[stPosition](w)
	if err != nil {
		t.Fatal(err)
	}
	qc, err := NewRef1[stPosition](w)
	if err != nil {
		t.Fatal(err)
	}

	sched := NewSchedule("sets")
	sched.AddSystem(NewSystem("a", func() {}, qa))
	sched.AddSystem(NewSystem("b", func() {}, qb))
	sched.AddSystem(NewSystem("c", func() {}, qc))

	sched.AddSet("readers", "b", "c")
	sched.OrderBefore("a", "readers")

	if err := sched.Build(); err != nil {
		t.Fatalf("expected set-based ordering to resolve every conflict, got %v", err)
	}
	if len(sched.batches) != 2 {
		t.Fatalf("expected a first level with just a, then b/c together, got %v", sched.batches)
	}
	if len(sched.batches[0]) != 1 || sched.systems[sched.batches[0][0]].Name != "a" {
		t.Fatalf("expected a alone in the first level, got %v", sched.batches[0])
	}
}

func TestExecutorDispatchesWorkerGroups(t *testing.T) {
	w := NewWorld()
	ranCompute, ranIO := false, false

	sched := NewSchedule("groups")
	sched.AddSystem(NewSystem("cpu", func() { ranCompute = true }))
	sched.AddSystem(NewSystem("io", func() { ranIO = true }).WithWorkerGroup(GroupIO))

	ex := NewExecutor(w, 2)
	if err := ex.RunOnce(sched); err != nil {
		t.Fatal(err)
	}
	if !ranCompute || !ranIO {
		t.Fatal("expected both the compute- and IO-grouped systems to run")
	}
}
