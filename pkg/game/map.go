package game

// Map is a dense, row-major grid of tiles. Width and height are both
// non-zero for any Map returned by NewMap.
type Map struct {
	Width  uint16
	Height uint16
	Tiles  []Tile
}

// NewMap allocates a width×height map of desert tiles. It returns false if
// either dimension is zero.
func NewMap(width, height uint16) (*Map, bool) {
	if width == 0 || height == 0 {
		return nil, false
	}
	tiles := make([]Tile, int(width)*int(height))
	for i := range tiles {
		tiles[i] = NewDesert()
	}
	return &Map{Width: width, Height: height, Tiles: tiles}, true
}

// InBounds reports whether c lies within the map.
func (m *Map) InBounds(c Coord) bool {
	return c.X < m.Width && c.Y < m.Height
}

func (m *Map) index(c Coord) int {
	return int(c.Y)*int(m.Width) + int(c.X)
}

// Get returns the tile at c and true, or the zero Tile and false if c is
// out of bounds. Out-of-bounds access is never a fault; callers treat it as
// an invalid request.
func (m *Map) Get(c Coord) (Tile, bool) {
	if !m.InBounds(c) {
		return Tile{}, false
	}
	return m.Tiles[m.index(c)], true
}

// Set writes t at c, returning false if c is out of bounds.
func (m *Map) Set(c Coord, t Tile) bool {
	if !m.InBounds(c) {
		return false
	}
	m.Tiles[m.index(c)] = t
	return true
}

// Mutate applies fn to the tile at c in place, returning false if c is out
// of bounds.
func (m *Map) Mutate(c Coord, fn func(*Tile)) bool {
	if !m.InBounds(c) {
		return false
	}
	fn(&m.Tiles[m.index(c)])
	return true
}

// CoordAt returns the coordinate for a row-major tile index.
func (m *Map) CoordAt(index int) Coord {
	return Coord{X: uint16(index % int(m.Width)), Y: uint16(index / int(m.Width))}
}

// Iterate calls fn for every tile in row-major order. Iteration stops early
// if fn returns false.
func (m *Map) Iterate(fn func(Coord, Tile) bool) {
	for i, t := range m.Tiles {
		if !fn(m.CoordAt(i), t) {
			return
		}
	}
}

// TilesOwnedBy returns the coordinates of every tile owned by player, in
// row-major order.
func (m *Map) TilesOwnedBy(player PlayerID) []Coord {
	var out []Coord
	m.Iterate(func(c Coord, t Tile) bool {
		if t.Owner == player {
			out = append(out, c)
		}
		return true
	})
	return out
}

// CountCities returns the number of cities owned by player.
func (m *Map) CountCities(player PlayerID) int {
	n := 0
	m.Iterate(func(_ Coord, t Tile) bool {
		if t.Owner == player && t.Type == City {
			n++
		}
		return true
	})
	return n
}

// CountTerritory returns the number of non-mountain tiles owned by player.
func (m *Map) CountTerritory(player PlayerID) int {
	n := 0
	m.Iterate(func(_ Coord, t Tile) bool {
		if t.Owner == player && t.Type != Mountain {
			n++
		}
		return true
	})
	return n
}

// TotalPopulation returns the summed population of tiles owned by player.
func (m *Map) TotalPopulation(player PlayerID) uint32 {
	var sum uint32
	m.Iterate(func(_ Coord, t Tile) bool {
		if t.Owner == player {
			sum += t.Population
		}
		return true
	})
	return sum
}

// TotalArmy returns the summed army of tiles owned by player.
func (m *Map) TotalArmy(player PlayerID) uint32 {
	var sum uint32
	m.Iterate(func(_ Coord, t Tile) bool {
		if t.Owner == player {
			sum += t.Army
		}
		return true
	})
	return sum
}

// AdjacentOwnedCount returns how many of c's 4-neighbors are owned by owner.
func (m *Map) AdjacentOwnedCount(c Coord, owner PlayerID) int {
	neighbors, n := c.Adjacent(m.Width, m.Height)
	count := 0
	for i := uint8(0); i < n; i++ {
		if t, ok := m.Get(neighbors[i]); ok && t.Owner == owner {
			count++
		}
	}
	return count
}
