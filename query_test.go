package forge

import "testing"

type qtPosition struct{ X, Y float64 }
type qtVelocity struct{ X, Y float64 }
type qtDead struct{}

var (
	qtPositionComp = RegisterComponent[qtPosition](StorageTable)
	qtVelocityComp = RegisterComponent[qtVelocity](StorageTable)
	qtDeadComp     = RegisterComponent[qtDead](StorageTable)
)

func TestQueryEachMovesEntities(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn(qtPositionComp, qtVelocityComp)
	Set(w, e, qtPosition{})
	Set(w, e, qtVelocity{X: 1, Y: 2})

	q, err := NewQuery2[qtPosition, qtVelocity](w)
	if err != nil {
		t.Fatal(err)
	}
	q.Each(func(_ Entity, pos *qtPosition, vel *qtVelocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

	pos, _ := Get[qtPosition](w, e)
	if pos.X != 1 || pos.Y != 2 {
		t.Fatalf("expected position updated by velocity, got %+v", pos)
	}
}

func TestQueryWithoutExcludesArchetype(t *testing.T) {
	w := NewWorld()
	alive, _ := w.Spawn(qtPositionComp)
	dead, _ := w.Spawn(qtPositionComp, qtDeadComp)

	q, err := NewQuery1[qtPosition](w, Without[qtDead]())
	if err != nil {
		t.Fatal(err)
	}

	seen := map[Entity]bool{}
	q.Each(func(e Entity, _ *qtPosition) { seen[e] = true })

	if !seen[alive] {
		t.Fatal("expected alive entity to match")
	}
	if seen[dead] {
		t.Fatal("expected dead entity to be excluded")
	}
}

func TestQueryAddedFiltersByTick(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn(qtPositionComp)

	q, err := NewQuery1[qtPosition](w, Added[qtPosition]())
	if err != nil {
		t.Fatal(err)
	}

	// The component was spawned at tick 1 (before any AdvanceTick call),
	// which is newer than the query's lastRun of 0, so it reads as added
	// on the first run observed after the next AdvanceTick.
	w.AdvanceTick()
	count := q.Count()
	if count != 1 {
		t.Fatalf("expected the freshly spawned component to read as added on its first observed run, got %d", count)
	}
	q.setLastRun(w.Tick())

	w.AdvanceTick()
	count = q.Count()
	if count != 0 {
		t.Fatalf("expected no newly-added rows on the second run, got %d", count)
	}
	_ = e
}

func TestQueryCountMatchesEachIterations(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 5; i++ {
		w.Spawn(qtPositionComp)
	}
	q, err := NewQuery1[qtPosition](w)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	q.Each(func(Entity, *qtPosition) { n++ })
	if n != 5 {
		t.Fatalf("expected 5 matches, got %d", n)
	}
	if q.Count() != 5 {
		t.Fatalf("expected Count to agree with Each, got %d", q.Count())
	}
}
