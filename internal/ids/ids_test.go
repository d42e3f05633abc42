package ids

import (
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

func TestNewRecordIDIsUUID(t *testing.T) {
	id := NewRecordID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewRecordID() = %q: %v", id, err)
	}
	if id == NewRecordID() {
		t.Fatal("expected distinct ids")
	}
}

func TestNewRequestIDIsKSUID(t *testing.T) {
	if _, err := ksuid.Parse(NewRequestID()); err != nil {
		t.Fatal(err)
	}
}

func TestNewEventIDUnique(t *testing.T) {
	if err := SetNode(7); err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewEventID()
		if seen[id] {
			t.Fatalf("duplicate event id %s", id)
		}
		seen[id] = true
	}
}

func TestSetNodeRejectsOutOfRange(t *testing.T) {
	if err := SetNode(1 << 20); err == nil {
		t.Fatal("expected error for node out of range")
	}
}

func TestNewSequenceIncreasing(t *testing.T) {
	prev := NewSequence()
	for i := 0; i < 1000; i++ {
		n := NewSequence()
		if n <= prev {
			t.Fatalf("sequence went from %d to %d", prev, n)
		}
		prev = n
	}
}

func TestSetNodeAcceptsZero(t *testing.T) {
	if err := SetNode(0); err != nil {
		t.Fatal(err)
	}
	if NewSequence() <= 0 {
		t.Fatal("expected positive sequence on node 0")
	}
}
