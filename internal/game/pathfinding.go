package game

import "slices"

// orderBase sorts base cells closest to the board centre first. Each axis
// compares the absolute offset, then places the positive offset before the
// negative one, so the result is reproducible for any input order.
func orderBase(base []Coord, side int) []Coord {
	centre := (side - 1) / 2
	ordered := slices.Clone(base)
	key := func(c Coord) [4]int {
		dr, dc := c.Row-centre, c.Col-centre
		return [4]int{abs(dr), boolInt(dr < 0), abs(dc), boolInt(dc < 0)}
	}
	slices.SortStableFunc(ordered, func(a, b Coord) int {
		ka, kb := key(a), key(b)
		for i := range ka {
			if ka[i] != kb[i] {
				return ka[i] - kb[i]
			}
		}
		return a.Compare(b)
	})
	return ordered
}

// distances runs a multi-source breadth-first search from the ordered base
// cells across path cells. It returns the distance of every reached cell
// (base cells at zero) and the reached path cells in discovery order.
func distances(base []Coord, path map[Coord]struct{}) (map[Coord]int, []Coord) {
	dist := make(map[Coord]int, len(base)+len(path))
	queue := make([]Coord, 0, len(base)+len(path))
	for _, c := range base {
		if _, seen := dist[c]; seen {
			continue
		}
		dist[c] = 0
		queue = append(queue, c)
	}
	discovered := make([]Coord, 0, len(path))
	for head := 0; head < len(queue); head++ {
		current := queue[head]
		for _, offset := range neighbourOffsets {
			next := current.add(offset)
			if _, ok := path[next]; !ok {
				continue
			}
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[current] + 1
			discovered = append(discovered, next)
			queue = append(queue, next)
		}
	}
	return dist, discovered
}

// traceLanes walks from every spawn cell down the distance gradient to the
// cell next to the base. At a fork the first neighbour in search order wins.
func traceLanes(spawns []Coord, dist map[Coord]int, path map[Coord]struct{}) [][]Coord {
	lanes := make([][]Coord, 0, len(spawns))
	for _, spawn := range spawns {
		lane := []Coord{spawn}
		current := spawn
		for dist[current] > 1 {
			advanced := false
			for _, offset := range neighbourOffsets {
				next := current.add(offset)
				if _, ok := path[next]; !ok {
					continue
				}
				if d, ok := dist[next]; ok && d == dist[current]-1 {
					lane = append(lane, next)
					current = next
					advanced = true
					break
				}
			}
			if !advanced {
				panic("game: distance gradient broken at " + current.String())
			}
		}
		lanes = append(lanes, lane)
	}
	return lanes
}

// spawnCells lists reached path cells on the board edge that no reached
// neighbour lies farther from the base than, in row/column order.
func spawnCells(discovered []Coord, dist map[Coord]int, side int) []Coord {
	spawns := make([]Coord, 0)
	for _, c := range discovered {
		if c.Row != 0 && c.Col != 0 && c.Row != side-1 && c.Col != side-1 {
			continue
		}
		leaf := true
		for _, offset := range neighbourOffsets {
			if d, ok := dist[c.add(offset)]; ok && d > dist[c] {
				leaf = false
				break
			}
		}
		if leaf {
			spawns = append(spawns, c)
		}
	}
	sortCoords(spawns)
	return spawns
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
