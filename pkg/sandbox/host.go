package sandbox

import (
	"github.com/bytecodealliance/wasmtime-go/v25"
	"github.com/ensigame/ensi/pkg/game"
)

// registerHostFunctions binds the full host-function surface under the
// "env" module. Every function reads from the given BotState, which the
// Bot rebinds at the top of every RunTurn call.
func registerHostFunctions(linker *wasmtime.Linker, store *wasmtime.Store, state *BotState) error {
	funcs := map[string]interface{}{
		"get_turn":          func() int32 { return int32(state.Turn) },
		"get_player_id":     func() int32 { return int32(state.PlayerID) },
		"get_my_capital":    func() int32 { return getMyCapital(state) },
		"get_tile":          func(x, y int32) int32 { return getTile(state, x, y) },
		"get_my_food":       func() int32 { return state.cachedStats().FoodBalance },
		"get_my_population": func() int32 { return int32(state.cachedStats().Population) },
		"get_my_army":       func() int32 { return int32(state.cachedStats().Army) },
		"get_map_width":     func() int32 { return int32(state.MapWidth) },
		"get_map_height":    func() int32 { return int32(state.MapHeight) },
		"move":              func(fromX, fromY, toX, toY, count int32) int32 { return hostMove(state, fromX, fromY, toX, toY, count) },
		"convert":           func(cityX, cityY, count int32) int32 { return hostConvert(state, cityX, cityY, count) },
		"move_capital":      func(cityX, cityY int32) int32 { return hostMoveCapital(state, cityX, cityY) },
		"abandon":           func(x, y int32) int32 { return hostAbandon(state, x, y) },
		"yield":             func() { state.Yielded = true },
	}

	for name, fn := range funcs {
		if err := linker.DefineFunc(store, "env", name, fn); err != nil {
			return err
		}
	}
	return nil
}

func getMyCapital(state *BotState) int32 {
	if !state.CapitalValid {
		return -1
	}
	return (int32(state.Capital.X) << 16) | int32(state.Capital.Y)
}

func getTile(state *BotState, x, y int32) int32 {
	c := game.Coord{X: uint16(x), Y: uint16(y)}
	if !state.canSeeTile(c) {
		return fogPackedU32
	}
	t, ok := state.getTile(c)
	if !ok {
		return fogPackedU32
	}
	return int32(packTile(t))
}

func hostMove(state *BotState, fromX, fromY, toX, toY, count int32) int32 {
	from := game.Coord{X: uint16(fromX), Y: uint16(fromY)}
	to := game.Coord{X: uint16(toX), Y: uint16(toY)}
	n := uint32(count)

	if !validateMove(state, from, to, n) {
		return 1
	}
	if state.pushCommand(game.Move(from, to, n)) {
		return 0
	}
	return 1
}

func hostConvert(state *BotState, cityX, cityY, count int32) int32 {
	city := game.Coord{X: uint16(cityX), Y: uint16(cityY)}
	n := uint32(count)

	if !validateConvert(state, city, n) {
		return 1
	}
	if state.pushCommand(game.Convert(city, n)) {
		return 0
	}
	return 1
}

func hostMoveCapital(state *BotState, cityX, cityY int32) int32 {
	newCapital := game.Coord{X: uint16(cityX), Y: uint16(cityY)}

	if !validateMoveCapital(state, newCapital) {
		return 1
	}
	if state.pushCommand(game.MoveCapitalCommand(newCapital)) {
		return 0
	}
	return 1
}

func hostAbandon(state *BotState, x, y int32) int32 {
	coord := game.Coord{X: uint16(x), Y: uint16(y)}

	if !validateAbandon(state, coord) {
		return 1
	}
	if state.pushCommand(game.Abandon(coord)) {
		return 0
	}
	return 1
}

func validateMove(state *BotState, from, to game.Coord, count uint32) bool {
	if count == 0 {
		return false
	}
	fromTile, ok := state.getTile(from)
	if !ok || fromTile.Owner != state.PlayerID || fromTile.Army < count {
		return false
	}
	toTile, ok := state.getTile(to)
	if !ok || !toTile.Type.IsPassable() {
		return false
	}
	neighbors, n := from.Adjacent(state.MapWidth, state.MapHeight)
	adjacent := false
	for i := uint8(0); i < n; i++ {
		if neighbors[i] == to {
			adjacent = true
			break
		}
	}
	return adjacent
}

func validateConvert(state *BotState, city game.Coord, count uint32) bool {
	if count == 0 {
		return false
	}
	t, ok := state.getTile(city)
	if !ok || t.Owner != state.PlayerID || t.Type != game.City {
		return false
	}
	return t.Population >= count
}

func validateMoveCapital(state *BotState, newCapital game.Coord) bool {
	if !state.CapitalValid {
		return false
	}
	current, ok := state.getTile(state.Capital)
	if !ok {
		return false
	}
	target, ok := state.getTile(newCapital)
	if !ok || target.Type != game.City || target.Owner != state.PlayerID {
		return false
	}
	return target.Population > current.Population
}

func validateAbandon(state *BotState, coord game.Coord) bool {
	t, ok := state.getTile(coord)
	if !ok || t.Owner != state.PlayerID {
		return false
	}
	if state.CapitalValid && coord == state.Capital {
		return false
	}
	return true
}
