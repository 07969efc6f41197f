package game

import "iter"

// PathQueue is one lane: a fixed run of slots from the spawn end (slot 0) to
// the terminal slot next to the base. A slot holds at most one unit.
type PathQueue struct {
	cells []Coord
	slots []*Unit
}

// NewPathQueue builds an empty queue whose capacity equals len(cells). The
// cells are listed spawn first.
func NewPathQueue(cells []Coord) *PathQueue {
	copied := make([]Coord, len(cells))
	copy(copied, cells)
	return &PathQueue{
		cells: copied,
		slots: make([]*Unit, len(cells)),
	}
}

// Len reports the capacity of the queue.
func (q *PathQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.slots)
}

// Cell returns the board coordinate of slot i.
func (q *PathQueue) Cell(i int) Coord {
	return q.cells[i]
}

// Cells returns a copy of the lane cells in spawn-to-base order.
func (q *PathQueue) Cells() []Coord {
	copied := make([]Coord, len(q.cells))
	copy(copied, q.cells)
	return copied
}

// At returns the occupant of slot i, or nil.
func (q *PathQueue) At(i int) *Unit {
	return q.slots[i]
}

// Start places u in the spawn slot. It reports false and leaves the queue
// untouched when that slot is taken.
func (q *PathQueue) Start(u *Unit) bool {
	if q.Len() == 0 || u == nil || q.slots[0] != nil {
		return false
	}
	q.slots[0] = u
	return true
}

// Advance moves the lane one tick. It walks from the terminal slot back to
// the spawn slot, so no unit moves more than once and no two units meet in a
// slot. The unit leaving the terminal slot is returned.
func (q *PathQueue) Advance() *Unit {
	n := q.Len()
	if n == 0 {
		return nil
	}
	arrived := q.slots[n-1]
	q.slots[n-1] = nil
	for i := n - 2; i >= 0; i-- {
		if q.slots[i] == nil || q.slots[i+1] != nil {
			continue
		}
		q.slots[i+1] = q.slots[i]
		q.slots[i] = nil
	}
	return arrived
}

// Remove takes u out of the lane, reporting whether it was present.
func (q *PathQueue) Remove(u *Unit) bool {
	for i, occupant := range q.slots {
		if occupant == u {
			q.slots[i] = nil
			return true
		}
	}
	return false
}

// Occupied counts units currently on the lane.
func (q *PathQueue) Occupied() int {
	count := 0
	for _, occupant := range q.slots {
		if occupant != nil {
			count++
		}
	}
	return count
}

// Entries yields (slot index, occupant) pairs in spawn-to-base order. Empty
// slots yield a nil unit. The sequence can be ranged over repeatedly.
func (q *PathQueue) Entries() iter.Seq2[int, *Unit] {
	return func(yield func(int, *Unit) bool) {
		for i, occupant := range q.slots {
			if !yield(i, occupant) {
				return
			}
		}
	}
}
