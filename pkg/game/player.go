package game

// Player tracks one contestant's capital, life status, and discovered
// (fog-of-war) territory.
type Player struct {
	ID         PlayerID
	Capital    Coord
	Alive      bool
	Discovered map[Coord]struct{}
}

// NewPlayer creates a live player with the given capital, already marked as
// discovered.
func NewPlayer(id PlayerID, capital Coord) *Player {
	p := &Player{
		ID:         id,
		Capital:    capital,
		Alive:      true,
		Discovered: make(map[Coord]struct{}),
	}
	p.Discover(capital)
	return p
}

// Discover marks c as discovered by this player.
func (p *Player) Discover(c Coord) {
	p.Discovered[c] = struct{}{}
}

// HasDiscovered reports whether c has ever been visible to this player.
func (p *Player) HasDiscovered(c Coord) bool {
	_, ok := p.Discovered[c]
	return ok
}

// Eliminate marks the player as no longer alive. Elimination is monotone;
// callers must not resurrect a player.
func (p *Player) Eliminate() {
	p.Alive = false
}

// MoveCapital relocates the capital unconditionally. Validation (ownership,
// population comparison) is the caller's responsibility; see
// GameState.TryMoveCapital.
func (p *Player) MoveCapital(newCapital Coord) {
	p.Capital = newCapital
}
