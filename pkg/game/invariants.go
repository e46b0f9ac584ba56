package game

// MaxSanePopulation bounds a city's population for bug detection only; it
// is never used to clamp gameplay values. A tile crossing this threshold
// indicates an implementation bug upstream (e.g. a growth or combat
// arithmetic error), not a legitimate game outcome.
const MaxSanePopulation = 1_000_000

// InvariantViolation describes one debug-only sanity-check failure: a
// symptom of an implementation bug, never a condition raised to callers in
// release builds.
type InvariantViolation struct {
	Coord  Coord
	Reason string
}

// CheckInvariants walks the map once and reports every tile that violates
// one of the structural tile invariants: a Mountain with an owner, army,
// or population; a non-City tile with population; or a city above the
// sanity cap. Callers in debug/test builds should treat a non-empty result
// as a bug; production code never calls this on the hot path.
func CheckInvariants(m *Map) []InvariantViolation {
	var violations []InvariantViolation

	m.Iterate(func(c Coord, t Tile) bool {
		if t.Type == Mountain {
			if t.Owner != 0 || t.Army != 0 || t.Population != 0 {
				violations = append(violations, InvariantViolation{c, "mountain tile has owner, army, or population"})
			}
			return true
		}
		if t.Type != City && t.Population != 0 {
			violations = append(violations, InvariantViolation{c, "non-city tile has population"})
		}
		if t.Type == City && t.Population > MaxSanePopulation {
			violations = append(violations, InvariantViolation{c, "city population exceeds sanity cap"})
		}
		return true
	})

	return violations
}

// CheckPlayerInvariants reports players that violate the "!alive owns
// nothing" invariant: a player marked not-alive must own zero tiles and
// zero population.
func CheckPlayerInvariants(m *Map, players []*Player) []InvariantViolation {
	var violations []InvariantViolation
	for _, p := range players {
		if p.Alive {
			continue
		}
		if m.TotalPopulation(p.ID) != 0 || len(m.TilesOwnedBy(p.ID)) != 0 {
			violations = append(violations, InvariantViolation{p.Capital, "eliminated player still owns tiles or population"})
		}
	}
	return violations
}
