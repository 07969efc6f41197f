package game

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

func TestCoordJSONPair(t *testing.T) {
	data, err := json.Marshal(Coord{Row: 3, Col: 7})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "[3,7]" {
		t.Fatalf("expected [3,7], got %s", data)
	}
	var c Coord
	if err := json.Unmarshal([]byte("[4, 9]"), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c != (Coord{Row: 4, Col: 9}) {
		t.Fatalf("unexpected decode %+v", c)
	}
	for _, bad := range []string{"[1]", "[1,2,3]", `{"Row":1}`} {
		if err := json.Unmarshal([]byte(bad), &c); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", bad, err)
		}
	}
}

func TestCoordOrderingAndDistance(t *testing.T) {
	coords := []Coord{{2, 0}, {0, 5}, {0, 1}, {1, 1}}
	sortCoords(coords)
	want := []Coord{{0, 1}, {0, 5}, {1, 1}, {2, 0}}
	if !slices.Equal(coords, want) {
		t.Fatalf("sorted %v, want %v", coords, want)
	}

	cases := []struct {
		a, b Coord
		want int
	}{
		{Coord{5, 5}, Coord{5, 5}, 0},
		{Coord{5, 5}, Coord{6, 6}, 1},
		{Coord{0, 0}, Coord{2, 5}, 5},
		{Coord{4, 1}, Coord{1, 2}, 3},
	}
	for _, tc := range cases {
		if got := tc.a.Chebyshev(tc.b); got != tc.want {
			t.Fatalf("Chebyshev(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
