package forge

import "testing"

type etDamage struct{ Amount int }

func TestEventReaderReceivesWrittenEvents(t *testing.T) {
	w := NewWorld()
	writer := NewEventWriter[etDamage](w)
	reader := NewEventReader[etDamage](w)

	writer.Write(etDamage{Amount: 3})
	writer.Write(etDamage{Amount: 5})

	got := reader.Read()
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Amount != 3 || got[1].Amount != 5 {
		t.Fatalf("expected events in write order, got %+v", got)
	}

	if more := reader.Read(); len(more) != 0 {
		t.Fatalf("expected no new events on second read, got %+v", more)
	}
}

func TestEventSurvivesOneBufferSwap(t *testing.T) {
	w := NewWorld()
	writer := NewEventWriter[etDamage](w)
	reader := NewEventReader[etDamage](w)

	writer.Write(etDamage{Amount: 1})
	w.SwapEventBuffers()

	got := reader.Read()
	if len(got) != 1 {
		t.Fatalf("expected the event to survive one swap, got %d events", len(got))
	}

	w.SwapEventBuffers()
	w.SwapEventBuffers()
	if more := reader.Read(); len(more) != 0 {
		t.Fatalf("expected the event to be gone after two more swaps, got %+v", more)
	}
}

func TestIndependentReadersHaveIndependentCursors(t *testing.T) {
	w := NewWorld()
	writer := NewEventWriter[etDamage](w)
	r1 := NewEventReader[etDamage](w)

	writer.Write(etDamage{Amount: 9})
	r1.Read()

	r2 := NewEventReader[etDamage](w)
	got := r2.Read()
	if len(got) != 1 {
		t.Fatalf("expected a fresh reader to see events written before its creation, got %d", len(got))
	}
}
