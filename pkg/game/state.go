package game

// ScoringWeights controls how population, city count, and territory
// contribute to a player's score.
type ScoringWeights struct {
	Population float64
	City       float64
	Territory  float64
}

// DefaultScoringWeights matches the tournament configuration surface.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{Population: 1.0, City: 10.0, Territory: 0.5}
}

// CachedPlayerStats holds one player's per-turn aggregates, computed once
// and reused by every host-function query during the following turn.
type CachedPlayerStats struct {
	Population  uint32
	Army        uint32
	Territory   uint32
	FoodBalance int32
}

// AllPlayerStats is a fixed-size cache indexed by player ID.
type AllPlayerStats struct {
	stats [MaxPlayers]CachedPlayerStats
}

// Get returns the cached stats for id, or the zero value if id is out of
// the valid [1,MaxPlayers] range.
func (a *AllPlayerStats) Get(id PlayerID) CachedPlayerStats {
	if id < 1 || int(id) > MaxPlayers {
		return CachedPlayerStats{}
	}
	return a.stats[id-1]
}

func (a *AllPlayerStats) set(id PlayerID, s CachedPlayerStats) {
	if id < 1 || int(id) > MaxPlayers {
		return
	}
	a.stats[id-1] = s
}

// GameState is the full mutable state of one match.
type GameState struct {
	Map      *Map
	Players  []*Player
	Turn     uint32
	MaxTurns uint32
	Scoring  ScoringWeights
}

// NewGameState builds a fresh GameState at turn 0 with default scoring.
func NewGameState(m *Map, players []*Player, maxTurns uint32) *GameState {
	return &GameState{
		Map:      m,
		Players:  players,
		Turn:     0,
		MaxTurns: maxTurns,
		Scoring:  DefaultScoringWeights(),
	}
}

// GetPlayer returns the player with the given ID, or nil.
func (gs *GameState) GetPlayer(id PlayerID) *Player {
	for _, p := range gs.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AlivePlayers returns the currently alive players, in player order.
func (gs *GameState) AlivePlayers() []*Player {
	var out []*Player
	for _, p := range gs.Players {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// IsGameOver reports whether the match has reached a terminal state:
// turn >= max_turns, or at most one player remains alive.
func (gs *GameState) IsGameOver() bool {
	if gs.Turn >= gs.MaxTurns {
		return true
	}
	return len(gs.AlivePlayers()) <= 1
}

// AdvanceTurn increments the turn counter by exactly one.
func (gs *GameState) AdvanceTurn() {
	gs.Turn++
}

// CalculateScore computes a player's score from the scoring weights.
func (gs *GameState) CalculateScore(id PlayerID) float64 {
	population := float64(gs.Map.TotalPopulation(id))
	cities := float64(gs.Map.CountCities(id))
	territory := float64(gs.Map.CountTerritory(id))
	return gs.Scoring.Population*population + gs.Scoring.City*cities + gs.Scoring.Territory*territory
}

// FoodBalanceFor recomputes the food balance for a single player by walking
// the map. Used outside the hot per-turn path (e.g. tests, diagnostics);
// the turn driver should use the AllPlayerStats cache instead.
func (gs *GameState) FoodBalanceFor(id PlayerID) FoodBalance {
	return CalculateFoodBalance(gs.Map, id)
}

// CanSeeTile reports whether player id owns c or owns any 4-neighbor of c.
func (gs *GameState) CanSeeTile(id PlayerID, c Coord) bool {
	if t, ok := gs.Map.Get(c); ok && t.Owner == id {
		return true
	}
	neighbors, n := c.Adjacent(gs.Map.Width, gs.Map.Height)
	for i := uint8(0); i < n; i++ {
		if t, ok := gs.Map.Get(neighbors[i]); ok && t.Owner == id {
			return true
		}
	}
	return false
}

// UpdateVisibility marks every coordinate currently visible to player id as
// discovered.
func (gs *GameState) UpdateVisibility(id PlayerID) {
	p := gs.GetPlayer(id)
	if p == nil {
		return
	}
	gs.Map.Iterate(func(c Coord, _ Tile) bool {
		if gs.CanSeeTile(id, c) {
			p.Discover(c)
		}
		return true
	})
}

// TryMoveCapital relocates player id's capital to newCapital if it is an
// owned city with strictly greater population than the current capital.
func (gs *GameState) TryMoveCapital(id PlayerID, newCapital Coord) bool {
	p := gs.GetPlayer(id)
	if p == nil {
		return false
	}
	current, ok := gs.Map.Get(p.Capital)
	if !ok {
		return false
	}
	target, ok := gs.Map.Get(newCapital)
	if !ok {
		return false
	}
	if target.Type != City || target.Owner != id {
		return false
	}
	if target.Population <= current.Population {
		return false
	}
	p.MoveCapital(newCapital)
	return true
}

// CheckEliminations marks players !alive whose capital is no longer theirs
// or whose total population has reached zero. Elimination is irreversible;
// players already eliminated are left untouched.
func (gs *GameState) CheckEliminations(stats *AllPlayerStats) {
	for _, p := range gs.Players {
		if !p.Alive {
			continue
		}
		capitalTile, ok := gs.Map.Get(p.Capital)
		capitalOwned := ok && capitalTile.Owner == p.ID
		totalPop := stats.Get(p.ID).Population
		if !capitalOwned || totalPop == 0 {
			p.Eliminate()
		}
	}
}

// ProcessCombatCleanup drops ownership from any tile whose army has reached
// zero but which still carries an owner, matching the invariant that
// zero-army tiles revert to neutral at the end of a turn's combat phase.
func (gs *GameState) ProcessCombatCleanup() {
	for i := range gs.Map.Tiles {
		t := &gs.Map.Tiles[i]
		if t.Owner != 0 && t.Army == 0 {
			t.Owner = 0
		}
	}
}

// ComputeAllPlayerStats performs a single O(tiles) pass producing cached
// per-player stats for every player. Food balance uses the true
// per-city-adjacency production model (see pkg/game economy.go), not an
// approximation, so host queries served from this cache match the economy
// pass exactly.
func (gs *GameState) ComputeAllPlayerStats() *AllPlayerStats {
	var population, army, territory [MaxPlayers + 1]uint64
	var desertTiles [MaxPlayers + 1]int
	var cities [MaxPlayers + 1][]Coord

	gs.Map.Iterate(func(c Coord, t Tile) bool {
		id := t.Owner
		if id < 1 || int(id) > MaxPlayers {
			return true
		}
		if t.Type != Mountain {
			territory[id]++
		}
		army[id] += uint64(t.Army)
		switch t.Type {
		case City:
			population[id] += uint64(t.Population)
			cities[id] = append(cities[id], c)
		case Desert:
			desertTiles[id]++
		}
		return true
	})

	stats := &AllPlayerStats{}
	for id := PlayerID(1); int(id) <= MaxPlayers; id++ {
		var production int64
		for _, c := range cities[id] {
			production += CalculateCityProduction(gs.Map, c, id)
		}
		consumption := CalculateConsumption(uint32(population[id]), uint32(army[id]), desertTiles[id])
		stats.set(id, CachedPlayerStats{
			Population:  uint32(population[id]),
			Army:        uint32(army[id]),
			Territory:   uint32(territory[id]),
			FoodBalance: int32(production - consumption),
		})
	}
	return stats
}
