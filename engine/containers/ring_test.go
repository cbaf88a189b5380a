package containers

import "testing"

func TestSlotRingRotation(t *testing.T) {
	r := NewSlotRing(2)
	if r.Current() != 0 || r.Next() != 1 {
		t.Fatalf("initial current/next = %d/%d", r.Current(), r.Next())
	}
	for i := 0; i < 10; i++ {
		prevNext := r.Next()
		if got := r.Advance(); got != prevNext {
			t.Fatalf("advance returned %d, want %d", got, prevNext)
		}
		if r.Current() == r.Next() {
			t.Fatalf("current and next collide at %d", r.Current())
		}
	}
}

func TestSlotRingWraps(t *testing.T) {
	r := NewSlotRing(3)
	var seen []int
	for i := 0; i < 4; i++ {
		seen = append(seen, r.Advance())
	}
	want := []int{1, 2, 0, 1}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("sequence %v, want %v", seen, want)
		}
	}
}

func TestSlotRingSingleSlot(t *testing.T) {
	r := NewSlotRing(1)
	if r.Advance() != 0 || r.Next() != 0 {
		t.Fatal("single slot ring must stay on 0")
	}
}

func TestSlotRingRejectsEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for size 0")
		}
	}()
	NewSlotRing(0)
}
