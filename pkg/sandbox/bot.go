package sandbox

import (
	"github.com/bytecodealliance/wasmtime-go/v25"
	"github.com/ensigame/ensi/pkg/game"
)

// BotState holds one bot's per-turn scratch state: its cached stats, the
// command buffer a single run_turn call fills, and, strictly for the
// duration of that one call, a non-aliased borrow of the live map and
// game state so host queries can read current data without re-walking the
// map. The borrow is cleared immediately after the call returns.
type BotState struct {
	PlayerID game.PlayerID

	Turn      uint32
	MapWidth  uint16
	MapHeight uint16

	CapitalValid bool
	Capital      game.Coord

	Commands []game.Command
	Yielded  bool

	stats *game.AllPlayerStats
	gs    *game.GameState
}

func (s *BotState) pushCommand(cmd game.Command) bool {
	if len(s.Commands) >= MaxCommandsPerTurn {
		return false
	}
	s.Commands = append(s.Commands, cmd)
	return true
}

func (s *BotState) canSeeTile(c game.Coord) bool {
	if s.gs == nil {
		return false
	}
	return s.gs.CanSeeTile(s.PlayerID, c)
}

func (s *BotState) getTile(c game.Coord) (game.Tile, bool) {
	if s.gs == nil {
		return game.Tile{}, false
	}
	return s.gs.Map.Get(c)
}

func (s *BotState) cachedStats() game.CachedPlayerStats {
	if s.stats == nil {
		return game.CachedPlayerStats{}
	}
	return s.stats.Get(s.PlayerID)
}

// TurnReport is the result of one run_turn call: how it ended, the commands
// the bot buffered (empty on a true trap), and how much fuel it burned.
type TurnReport struct {
	Outcome      Outcome
	Commands     []game.Command
	FuelConsumed uint64
}

// Bot is one module instantiated for one player within one game. It is not
// safe for concurrent use; the turn driver runs bots one at a time.
type Bot struct {
	store     *wasmtime.Store
	memory    *wasmtime.Memory
	runTurnFn *wasmtime.Func
	state     *BotState
}

// NewBot instantiates module for playerID with the given memory cap in
// bytes, registering the full host-function surface.
func NewBot(engine *Engine, module *wasmtime.Module, playerID game.PlayerID, memoryLimitBytes int64) (*Bot, error) {
	store := wasmtime.NewStore(engine.inner)
	store.Limiter(memoryLimitBytes, -1, -1, -1, -1)

	state := &BotState{PlayerID: playerID}

	linker := wasmtime.NewLinker(engine.inner)
	if err := registerHostFunctions(linker, store, state); err != nil {
		return nil, &ModuleLoadError{Reason: err.Error()}
	}

	instance, err := linker.Instantiate(store, module)
	if err != nil {
		return nil, &ModuleLoadError{Reason: err.Error()}
	}

	memExport := instance.GetExport(store, "memory")
	if memExport == nil || memExport.Memory() == nil {
		return nil, &ModuleLoadError{Reason: "module does not export linear memory"}
	}

	runTurnExport := instance.GetExport(store, "run_turn")
	if runTurnExport == nil || runTurnExport.Func() == nil {
		return nil, &ModuleLoadError{Reason: "module does not export run_turn"}
	}

	return &Bot{
		store:     store,
		memory:    memExport.Memory(),
		runTurnFn: runTurnExport.Func(),
		state:     state,
	}, nil
}

// Close releases the bot's underlying store and everything instantiated in
// it. The turn driver calls this once a player is eliminated; the Bot must
// not be used afterwards.
func (b *Bot) Close() {
	b.store.Close()
}

// RunTurn pushes the observation, meters fuel, and invokes run_turn.
func (b *Bot) RunTurn(fuelBudget uint64, gs *game.GameState, stats *game.AllPlayerStats) (TurnReport, error) {
	b.state.Commands = b.state.Commands[:0]
	b.state.Yielded = false
	b.state.Turn = gs.Turn
	b.state.MapWidth = gs.Map.Width
	b.state.MapHeight = gs.Map.Height
	b.state.stats = stats
	b.state.gs = gs

	if p := gs.GetPlayer(b.state.PlayerID); p != nil && p.Alive {
		b.state.CapitalValid = true
		b.state.Capital = p.Capital
	} else {
		b.state.CapitalValid = false
	}

	defer func() {
		b.state.gs = nil
		b.state.stats = nil
	}()

	data := b.memory.UnsafeData(b.store)
	obsLen := ObservationSize(gs.Map.Width, gs.Map.Height)
	if TileMapBase+obsLen > len(data) {
		return TurnReport{Outcome: OutcomeTrapped}, &ModuleLoadError{Reason: "bot memory too small for observation push"}
	}
	writeObservation(data[TileMapBase:], gs.Map.Width, gs.Map.Height, gs.Turn, b.state.PlayerID, gs.Map, func(c game.Coord) bool {
		return gs.CanSeeTile(b.state.PlayerID, c)
	})

	if err := b.store.SetFuel(fuelBudget); err != nil {
		return TurnReport{Outcome: OutcomeTrapped}, err
	}

	_, callErr := b.runTurnFn.Call(b.store, int32(fuelBudget))

	remaining, fuelErr := b.store.GetFuel()
	if fuelErr != nil {
		remaining = 0
	}
	consumed := fuelBudget
	if remaining <= fuelBudget {
		consumed = fuelBudget - remaining
	}

	if callErr == nil {
		return TurnReport{Outcome: OutcomeReturned, Commands: b.state.Commands, FuelConsumed: consumed}, nil
	}
	if remaining == 0 {
		// Trap with nothing left in the tank: budget exhaustion, not a
		// crash. Commands buffered before exhaustion are kept.
		return TurnReport{Outcome: OutcomeBudgetExhausted, Commands: b.state.Commands, FuelConsumed: consumed}, nil
	}
	return TurnReport{Outcome: OutcomeTrapped, FuelConsumed: consumed}, &TrapError{Cause: callErr.Error()}
}
