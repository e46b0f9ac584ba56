package game

import "testing"

func TestAdjacentClippedAtEdges(t *testing.T) {
	corner := Coord{X: 0, Y: 0}
	neighbors, n := corner.Adjacent(4, 4)
	if n != 2 {
		t.Fatalf("corner should have 2 neighbors, got %d", n)
	}
	_ = neighbors

	middle := Coord{X: 1, Y: 1}
	_, n2 := middle.Adjacent(4, 4)
	if n2 != 4 {
		t.Fatalf("interior tile should have 4 neighbors, got %d", n2)
	}
}

func TestMapZeroDimensionsRejected(t *testing.T) {
	if _, ok := NewMap(0, 5); ok {
		t.Fatal("zero width should fail")
	}
	if _, ok := NewMap(5, 0); ok {
		t.Fatal("zero height should fail")
	}
}

func TestMapOutOfBoundsIsNotFault(t *testing.T) {
	m, _ := NewMap(2, 2)
	if _, ok := m.Get(Coord{X: 5, Y: 5}); ok {
		t.Fatal("out of bounds get should report not-ok")
	}
	if m.Set(Coord{X: 5, Y: 5}, NewDesert()) {
		t.Fatal("out of bounds set should report false")
	}
}

func TestMountainInvariantsHoldByConstruction(t *testing.T) {
	mt := NewMountain()
	if mt.Owner != 0 || mt.Army != 0 || mt.Population != 0 {
		t.Fatal("mountain tile must start unowned with no army or population")
	}
	if mt.Type.IsPassable() {
		t.Fatal("mountain must not be passable")
	}
}

func TestRowMajorIterationOrder(t *testing.T) {
	m, _ := NewMap(2, 2)
	var seen []Coord
	m.Iterate(func(c Coord, _ Tile) bool {
		seen = append(seen, c)
		return true
	})
	want := []Coord{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for i, c := range want {
		if seen[i] != c {
			t.Fatalf("index %d: want %+v got %+v", i, c, seen[i])
		}
	}
}
