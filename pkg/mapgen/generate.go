package mapgen

import (
	"fmt"
	"math"

	"github.com/ensigame/ensi/pkg/game"
)

const (
	mountainChance  = 0.10
	neutralCellSize = 8
	startRadiusFrac = 0.35
	neutralCityBase = 50
	playerCityPop   = 100
	playerCityArmy  = 10
)

// Error reports a map-generation failure: not enough valid starting
// positions for the requested player count, or invalid dimensions.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("map generation failed: %s", e.Reason)
}

// Result is a freshly generated map paired with its initial players.
type Result struct {
	Map     *game.Map
	Players []*game.Player
}

// Generate deterministically builds a map and player starting positions
// from seed, width, height and numPlayers (must be in [2,8]).
func Generate(seed uint64, width, height uint16, numPlayers int) (*Result, error) {
	if numPlayers < 2 || numPlayers > game.MaxPlayers {
		return nil, &Error{Reason: fmt.Sprintf("num_players must be in [2,8], got %d", numPlayers)}
	}

	m, ok := game.NewMap(width, height)
	if !ok {
		return nil, &Error{Reason: "width and height must be non-zero"}
	}

	rng := NewRng(seed)

	generateTerrain(m, rng)
	placeNeutralCities(m, rng)

	starts, err := findStartingPositions(m, rng, numPlayers)
	if err != nil {
		return nil, err
	}

	players := make([]*game.Player, 0, numPlayers)
	for i, coord := range starts {
		id := game.PlayerID(i + 1)
		m.Set(coord, game.Tile{
			Type:       game.City,
			Owner:      id,
			Army:       playerCityArmy,
			Population: playerCityPop,
		})
		players = append(players, game.NewPlayer(id, coord))
	}

	return &Result{Map: m, Players: players}, nil
}

func generateTerrain(m *game.Map, rng *Rng) {
	for i := range m.Tiles {
		if rng.NextF64() < mountainChance {
			m.Tiles[i] = game.NewMountain()
		} else {
			m.Tiles[i] = game.NewDesert()
		}
	}
}

func placeNeutralCities(m *game.Map, rng *Rng) {
	// Cell origins iterate as int so the loop cannot wrap on maps whose
	// dimensions approach the uint16 limit.
	for cellY := 0; cellY < int(m.Height); cellY += neutralCellSize {
		for cellX := 0; cellX < int(m.Width); cellX += neutralCellSize {
			maxX := cellX + neutralCellSize
			if maxX > int(m.Width) {
				maxX = int(m.Width)
			}
			maxY := cellY + neutralCellSize
			if maxY > int(m.Height) {
				maxY = int(m.Height)
			}

			var desertsInCell []game.Coord
			for y := cellY; y < maxY; y++ {
				for x := cellX; x < maxX; x++ {
					c := game.Coord{X: uint16(x), Y: uint16(y)}
					if t, _ := m.Get(c); t.Type == game.Desert {
						desertsInCell = append(desertsInCell, c)
					}
				}
			}
			if len(desertsInCell) == 0 {
				continue
			}
			pick := desertsInCell[rng.NextU32(uint32(len(desertsInCell)))]
			pop := neutralCityBase + rng.NextU32(100)
			m.Set(pick, game.NewCity(pop))
		}
	}
}

func findStartingPositions(m *game.Map, rng *Rng, numPlayers int) ([]game.Coord, error) {
	var deserts []game.Coord
	m.Iterate(func(c game.Coord, t game.Tile) bool {
		if t.Type == game.Desert {
			deserts = append(deserts, c)
		}
		return true
	})
	if len(deserts) < numPlayers {
		return nil, &Error{Reason: fmt.Sprintf("not enough desert tiles for %d players (have %d)", numPlayers, len(deserts))}
	}

	centerX := float64(m.Width) / 2.0
	centerY := float64(m.Height) / 2.0
	minDim := float64(m.Width)
	if float64(m.Height) < minDim {
		minDim = float64(m.Height)
	}
	radius := startRadiusFrac * minDim
	angleOffset := rng.NextF64() * 2 * math.Pi
	angleStep := 2 * math.Pi / float64(numPlayers)

	taken := make(map[game.Coord]bool, numPlayers)
	starts := make([]game.Coord, 0, numPlayers)

	for i := 0; i < numPlayers; i++ {
		angle := angleOffset + float64(i)*angleStep
		targetX := centerX + radius*math.Cos(angle)
		targetY := centerY + radius*math.Sin(angle)

		best := -1
		var bestScore uint64
		for idx, c := range deserts {
			if taken[c] {
				continue
			}
			dx := targetX - float64(c.X)
			dy := targetY - float64(c.Y)
			score := uint64((dx*dx + dy*dy) * 1000)
			if best == -1 || score < bestScore {
				best = idx
				bestScore = score
			}
		}
		if best == -1 {
			return nil, &Error{Reason: "ran out of distinct desert tiles for starting positions"}
		}
		chosen := deserts[best]
		taken[chosen] = true
		starts = append(starts, chosen)
	}

	return starts, nil
}
