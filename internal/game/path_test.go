package game

import "testing"

func laneCells(n int) []Coord {
	cells := make([]Coord, n)
	for i := range cells {
		cells[i] = Coord{Row: 0, Col: i}
	}
	return cells
}

func occupants(q *PathQueue) []*Unit {
	out := make([]*Unit, 0, q.Len())
	for _, u := range q.Entries() {
		out = append(out, u)
	}
	return out
}

func TestPathQueueRoundTrip(t *testing.T) {
	for _, capacity := range []int{1, 3, 7} {
		q := NewPathQueue(laneCells(capacity))
		u := &Unit{ID: 1}
		if !q.Start(u) {
			t.Fatalf("capacity %d: expected start to succeed", capacity)
		}
		for i := 1; i < capacity; i++ {
			if got := q.Advance(); got != nil {
				t.Fatalf("capacity %d: unit arrived early after %d advances", capacity, i)
			}
		}
		if got := q.Advance(); got != u {
			t.Fatalf("capacity %d: expected unit to arrive on advance %d, got %v", capacity, capacity, got)
		}
		if q.Occupied() != 0 {
			t.Fatalf("capacity %d: expected empty queue, got %d occupants", capacity, q.Occupied())
		}
	}
}

func TestPathQueueStartRejectsOccupiedSpawn(t *testing.T) {
	q := NewPathQueue(laneCells(3))
	a, b := &Unit{ID: 1}, &Unit{ID: 2}
	if !q.Start(a) {
		t.Fatalf("expected first start to succeed")
	}
	if q.Start(b) {
		t.Fatalf("expected start into occupied spawn slot to fail")
	}
	if q.At(0) != a {
		t.Fatalf("spawn slot overwritten: got %v", q.At(0))
	}
}

func TestPathQueueAdvanceKeepsSpacing(t *testing.T) {
	q := NewPathQueue(laneCells(4))
	a, b := &Unit{ID: 1}, &Unit{ID: 2}
	q.Start(a)
	q.Advance()
	q.Start(b)

	got := occupants(q)
	if got[0] != b || got[1] != a {
		t.Fatalf("unexpected layout before advance: %v", got)
	}

	q.Advance()
	got = occupants(q)
	if got[0] != nil || got[1] != b || got[2] != a || got[3] != nil {
		t.Fatalf("adjacent units did not move together: %v", got)
	}

	if arrived := q.Advance(); arrived != nil {
		t.Fatalf("unexpected arrival %v", arrived)
	}
	if arrived := q.Advance(); arrived != a {
		t.Fatalf("expected lead unit to arrive, got %v", arrived)
	}
	if q.At(3) != b {
		t.Fatalf("trailing unit should occupy terminal slot, got %v", occupants(q))
	}
}

func TestPathQueueEntriesRestartable(t *testing.T) {
	q := NewPathQueue(laneCells(3))
	q.Start(&Unit{ID: 9})
	for pass := 0; pass < 2; pass++ {
		indices := make([]int, 0, 3)
		for i, u := range q.Entries() {
			indices = append(indices, i)
			if i == 0 && (u == nil || u.ID != 9) {
				t.Fatalf("pass %d: expected unit 9 in spawn slot, got %v", pass, u)
			}
		}
		if len(indices) != 3 || indices[0] != 0 || indices[2] != 2 {
			t.Fatalf("pass %d: unexpected indices %v", pass, indices)
		}
	}
}

func TestPathQueueRemove(t *testing.T) {
	q := NewPathQueue(laneCells(2))
	u := &Unit{ID: 1}
	q.Start(u)
	if !q.Remove(u) {
		t.Fatalf("expected remove to find unit")
	}
	if q.Remove(u) {
		t.Fatalf("expected second remove to report absence")
	}
}
