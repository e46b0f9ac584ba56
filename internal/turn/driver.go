// Package turn implements the per-turn cycle: observation push and bot
// execution (via pkg/sandbox), command re-validation and ordered
// application, combat cleanup, economy, stats recompute, and elimination
// checks. This is the only package that drives pkg/game and pkg/sandbox
// together; it never itself performs I/O.
package turn

import (
	"github.com/ensigame/ensi/pkg/game"
	"github.com/ensigame/ensi/pkg/sandbox"
)

// Bot is the subset of *sandbox.Bot the driver needs, so tests can supply a
// fake without instantiating a real WASM module.
type Bot interface {
	RunTurn(fuelBudget uint64, gs *game.GameState, stats *game.AllPlayerStats) (sandbox.TurnReport, error)
}

// PlayerOutcome records what happened when one player's bot ran this turn.
type PlayerOutcome struct {
	PlayerID     game.PlayerID
	Outcome      sandbox.Outcome
	Trapped      bool
	FuelConsumed uint64
}

// Result summarizes one completed turn cycle.
type Result struct {
	Stats              *game.AllPlayerStats
	Outcomes           []PlayerOutcome
	EliminatedThisTurn []game.PlayerID
	// TerminalScores holds, for each player eliminated this turn, their
	// score at the moment of elimination, captured before their territory
	// reverts to neutral.
	TerminalScores map[game.PlayerID]float64
	Economy        map[game.PlayerID]game.EconomyResult
}

type orderedCommand struct {
	player game.PlayerID
	cmd    game.Command
}

// RunTurn executes exactly one turn cycle of gs, driving bots in
// player-id order, and returns the stats cache for the following turn.
// prevStats is the cache from the end of the previous turn (or nil on turn
// zero, in which case it is computed fresh).
func RunTurn(gs *game.GameState, bots map[game.PlayerID]Bot, fuelBudget uint64, prevStats *game.AllPlayerStats) Result {
	stats := prevStats
	if stats == nil {
		stats = gs.ComputeAllPlayerStats()
	}

	var outcomes []PlayerOutcome
	var ordered []orderedCommand

	for _, p := range gs.AlivePlayers() {
		bot, ok := bots[p.ID]
		if !ok {
			continue
		}
		gs.UpdateVisibility(p.ID)

		report, err := bot.RunTurn(fuelBudget, gs, stats)
		trapped := err != nil && report.Outcome == sandbox.OutcomeTrapped
		outcomes = append(outcomes, PlayerOutcome{
			PlayerID:     p.ID,
			Outcome:      report.Outcome,
			Trapped:      trapped,
			FuelConsumed: report.FuelConsumed,
		})

		if trapped {
			continue // no commands emitted this turn for a crashed bot
		}
		for _, cmd := range report.Commands {
			ordered = append(ordered, orderedCommand{player: p.ID, cmd: cmd})
		}
	}

	for _, oc := range ordered {
		applyCommand(gs, oc.player, oc.cmd)
	}

	gs.ProcessCombatCleanup()

	economyResults := make(map[game.PlayerID]game.EconomyResult)
	for _, p := range gs.AlivePlayers() {
		rngSeed := uint64(gs.Turn)*1_000_000 + uint64(p.ID)
		economyResults[p.ID] = game.ApplyEconomy(gs.Map, p.ID, rngSeed)
	}

	newStats := gs.ComputeAllPlayerStats()

	aliveBefore := make(map[game.PlayerID]bool)
	for _, p := range gs.Players {
		aliveBefore[p.ID] = p.Alive
	}

	gs.CheckEliminations(newStats)

	var eliminated []game.PlayerID
	terminalScores := make(map[game.PlayerID]float64)
	for _, p := range gs.Players {
		if aliveBefore[p.ID] && !p.Alive {
			eliminated = append(eliminated, p.ID)
			terminalScores[p.ID] = gs.CalculateScore(p.ID)
		}
	}
	for _, id := range eliminated {
		releaseTerritory(gs.Map, id)
	}

	gs.AdvanceTurn()

	return Result{
		Stats:              newStats,
		Outcomes:           outcomes,
		EliminatedThisTurn: eliminated,
		TerminalScores:     terminalScores,
		Economy:            economyResults,
	}
}

// releaseTerritory reverts every tile owned by a freshly eliminated player
// to neutral. Army is cleared the way a rebellion clears it; city
// population stays, the way neutral cities keep theirs.
func releaseTerritory(m *game.Map, id game.PlayerID) {
	for i := range m.Tiles {
		t := &m.Tiles[i]
		if t.Owner == id {
			t.Owner = 0
			t.Army = 0
		}
	}
}

// applyCommand re-validates and applies a single command under the map
// state as it stands at this point in the ordered sequence. Bot-side
// validation (pkg/sandbox) is advisory only; this is the authority.
func applyCommand(gs *game.GameState, player game.PlayerID, cmd game.Command) {
	switch cmd.Kind {
	case game.CmdMove:
		applyMove(gs, player, cmd)
	case game.CmdConvert:
		applyConvert(gs, player, cmd)
	case game.CmdMoveCapital:
		gs.TryMoveCapital(player, cmd.NewCapital)
	case game.CmdAbandon:
		applyAbandon(gs, player, cmd)
	case game.CmdYield:
		// no state change
	}
}

func applyMove(gs *game.GameState, player game.PlayerID, cmd game.Command) {
	from, ok := gs.Map.Get(cmd.From)
	if !ok || from.Owner != player || from.Army < cmd.Count {
		return
	}
	to, ok := gs.Map.Get(cmd.To)
	if !ok || !to.Type.IsPassable() {
		return
	}
	neighbors, n := cmd.From.Adjacent(gs.Map.Width, gs.Map.Height)
	adjacent := false
	for i := uint8(0); i < n; i++ {
		if neighbors[i] == cmd.To {
			adjacent = true
			break
		}
	}
	if !adjacent {
		return
	}
	game.ResolveAttack(gs.Map, cmd.From, cmd.To, cmd.Count)
}

func applyConvert(gs *game.GameState, player game.PlayerID, cmd game.Command) {
	t, ok := gs.Map.Get(cmd.City)
	if !ok || t.Owner != player || t.Type != game.City || t.Population < cmd.Count {
		return
	}
	t.Population -= cmd.Count
	t.Army += cmd.Count
	gs.Map.Set(cmd.City, t)
}

func applyAbandon(gs *game.GameState, player game.PlayerID, cmd game.Command) {
	t, ok := gs.Map.Get(cmd.Tile)
	if !ok || t.Owner != player {
		return
	}
	p := gs.GetPlayer(player)
	if p != nil && p.Alive && p.Capital == cmd.Tile {
		return // cannot abandon the capital
	}
	t.Owner = 0
	t.Army = 0
	gs.Map.Set(cmd.Tile, t)
}
