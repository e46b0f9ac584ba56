package game

const (
	// BaseCityProduction is a city's food output with no adjacent owned tiles.
	BaseCityProduction = 30
	// ProductionPerAdjacent is the bonus food per adjacent owned tile.
	ProductionPerAdjacent = 20
	// DesertUpkeepPerTile is the food consumed by each owned desert tile.
	DesertUpkeepPerTile = 2
)

// FoodBalance summarizes a player's per-turn economy.
type FoodBalance struct {
	Production  int64
	Consumption int64
	Balance     int64
	Territory   int
}

// EconomyResult reports what a single player's economy pass actually did,
// for observability; it does not feed back into game-state semantics.
type EconomyResult struct {
	GrewPopulation bool
	TotalGrowth    uint32
	TotalDeaths    uint32
	Rebellions     int
}

// CalculateCityProduction returns one city's food production: a base amount
// plus a bonus for each of its 4-neighbors also owned by owner.
func CalculateCityProduction(m *Map, cityCoord Coord, owner PlayerID) int64 {
	nAdj := m.AdjacentOwnedCount(cityCoord, owner)
	return BaseCityProduction + ProductionPerAdjacent*int64(nAdj)
}

// CalculateConsumption returns total food consumption for a player given
// their aggregate population, army, and owned desert-tile count.
func CalculateConsumption(population, army uint32, desertTiles int) int64 {
	return int64(population) + int64(army) + DesertUpkeepPerTile*int64(desertTiles)
}

// CalculateFoodBalance walks every tile owned by player once, producing
// production, consumption, balance, and territory.
func CalculateFoodBalance(m *Map, player PlayerID) FoodBalance {
	var population, army uint32
	var territory, desertTiles int
	var cities []Coord

	m.Iterate(func(c Coord, t Tile) bool {
		if t.Owner != player {
			return true
		}
		if t.Type != Mountain {
			territory++
		}
		army += t.Army
		switch t.Type {
		case City:
			population += t.Population
			cities = append(cities, c)
		case Desert:
			desertTiles++
		}
		return true
	})

	var production int64
	for _, c := range cities {
		production += CalculateCityProduction(m, c, player)
	}
	consumption := CalculateConsumption(population, army, desertTiles)

	return FoodBalance{
		Production:  production,
		Consumption: consumption,
		Balance:     production - consumption,
		Territory:   territory,
	}
}

// ApplyEconomy runs one player's production/consumption/growth/starvation
// pass for the current turn. rngSeed is turn*1_000_000 + player_id, used to
// derive per-city rebellion rolls deterministically.
func ApplyEconomy(m *Map, player PlayerID, rngSeed uint64) EconomyResult {
	fb := CalculateFoodBalance(m, player)

	if fb.Balance >= 0 {
		growth := uint32(fb.Balance / 2)
		applyGrowth(m, player, growth)
		return EconomyResult{GrewPopulation: growth > 0, TotalGrowth: growth}
	}

	deficit := uint32(-fb.Balance)
	return applyStarvation(m, player, deficit, rngSeed)
}

func applyGrowth(m *Map, player PlayerID, growth uint32) {
	cities := ownedCities(m, player)
	if len(cities) == 0 {
		return
	}
	perCity := growth / uint32(len(cities))
	remainder := growth % uint32(len(cities))

	for i, c := range cities {
		share := perCity
		if uint32(i) < remainder {
			share++
		}
		m.Mutate(c, func(t *Tile) {
			t.Population = satAdd32(t.Population, share)
		})
	}
}

func applyStarvation(m *Map, player PlayerID, deficit uint32, rngSeed uint64) EconomyResult {
	cities := ownedCities(m, player)

	var totalPop uint64
	populations := make([]uint32, len(cities))
	for i, c := range cities {
		t, _ := m.Get(c)
		populations[i] = t.Population
		totalPop += uint64(t.Population)
	}

	result := EconomyResult{}
	if totalPop == 0 {
		return result
	}

	for i, c := range cities {
		cityPop := populations[i]
		if cityPop == 0 {
			continue
		}

		// deaths_i = min(city_pop_i, min(deficit, floor(deficit*city_pop_i/total_pop))).
		// The inner min is always satisfied since city_pop_i <= total_pop, so
		// this reduces to min(city_pop_i, floor(...)).
		cityShare := uint32(uint64(deficit) * uint64(cityPop) / totalPop)
		deaths := cityShare
		if deficit < deaths {
			deaths = deficit
		}
		if cityPop < deaths {
			deaths = cityPop
		}

		t, _ := m.Get(c)
		t.Population = satSub32(t.Population, deaths)
		result.TotalDeaths += deaths

		if t.Population > 0 {
			rebellionChance := float64(deficit) / float64(t.Population)
			if rebellionChance > 1.0 {
				rebellionChance = 1.0
			}
			roll := float64(simpleHash(rngSeed, uint64(i))) / 0x1p64
			if roll < rebellionChance {
				t.Owner = 0
				t.Army = 0
				result.Rebellions++
			}
		}
		m.Set(c, t)
	}

	return result
}

func ownedCities(m *Map, player PlayerID) []Coord {
	var out []Coord
	m.Iterate(func(c Coord, t Tile) bool {
		if t.Owner == player && t.Type == City {
			out = append(out, c)
		}
		return true
	})
	return out
}

// simpleHash is the fixed 64-bit mixing function used for rebellion rolls:
// two rounds of xor-shift then multiply (the MurmurHash3 fmix64 finalizer
// applied to seed+index). The exact constants are part of the determinism
// contract and must never be substituted.
func simpleHash(seed, index uint64) uint64 {
	x := seed + index
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}
