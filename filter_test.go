package forge

import "testing"

type ftPosition struct{}
type ftFriendly struct{}
type ftHostile struct{}

var (
	ftPositionComp = RegisterComponent[ftPosition](StorageTable)
	ftFriendlyComp = RegisterComponent[ftFriendly](StorageTable)
	ftHostileComp  = RegisterComponent[ftHostile](StorageTable)
)

func TestOrFilterMatchesEitherSide(t *testing.T) {
	w := NewWorld()
	friendly, _ := w.Spawn(ftPositionComp, ftFriendlyComp)
	hostile, _ := w.Spawn(ftPositionComp, ftHostileComp)
	neither, _ := w.Spawn(ftPositionComp)

	q, err := NewQuery1[ftPosition](w, Or(With[ftFriendly](), With[ftHostile]()))
	if err != nil {
		t.Fatal(err)
	}

	seen := map[Entity]bool{}
	q.Each(func(e Entity, _ *ftPosition) { seen[e] = true })

	if !seen[friendly] || !seen[hostile] {
		t.Fatalf("expected both friendly and hostile entities to match, got %v", seen)
	}
	if seen[neither] {
		t.Fatal("expected the entity with neither tag to be excluded")
	}
	if len(seen) != 2 {
		t.Fatalf("expected exactly 2 matches, got %d", len(seen))
	}
}
