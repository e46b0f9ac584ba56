package game

// TileType classifies a tile's terrain.
type TileType uint8

const (
	// City tiles are the only tiles that hold population and are the
	// target of Convert and MoveCapital commands.
	City TileType = iota
	// Desert tiles are passable and ownable but never hold population.
	Desert
	// Mountain tiles are impassable and never owned.
	Mountain
)

// IsPassable reports whether an army can move onto a tile of this type.
func (t TileType) IsPassable() bool {
	return t != Mountain
}

// CanHavePopulation reports whether a tile of this type may carry population.
func (t TileType) CanHavePopulation() bool {
	return t == City
}

// Tile is a single cell of the map.
//
// Invariant: TileType == Mountain implies Owner == 0, Army == 0, Population == 0.
// Invariant: TileType != City implies Population == 0.
type Tile struct {
	Type       TileType
	Owner      PlayerID // 0 means unowned/neutral
	Army       uint32
	Population uint32
}

// NewCity returns an unowned city tile with the given population.
func NewCity(population uint32) Tile {
	return Tile{Type: City, Population: population}
}

// NewDesert returns an unowned desert tile.
func NewDesert() Tile {
	return Tile{Type: Desert}
}

// NewMountain returns a mountain tile.
func NewMountain() Tile {
	return Tile{Type: Mountain}
}

// Owned reports whether the tile currently has a non-neutral owner.
func (t Tile) Owned() bool {
	return t.Owner != 0
}
