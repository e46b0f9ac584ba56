// Package replay implements C9: deterministic time travel over a recorded
// match. Because a match is a pure function of (seed, modules, config),
// replay needs no state deltas: stepping to turn N just re-simulates from
// turn 0, the way internal/match's RunGame does, but stopping early.
package replay

import (
	"fmt"

	"github.com/ensigame/ensi/internal/match"
	"github.com/ensigame/ensi/internal/turn"
	"github.com/ensigame/ensi/pkg/game"
	"github.com/ensigame/ensi/pkg/mapgen"
)

// ErrorKind classifies a replay-level failure.
type ErrorKind int

const (
	KindModuleLoad ErrorKind = iota
	KindMapGeneration
	KindTurnOutOfBounds
	KindGameOver
)

// Error is the typed error surfaced by replay operations.
type Error struct {
	Kind        ErrorKind
	PlayerIndex int
	Requested   uint32
	MaxTurn     uint32
	Err         error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindModuleLoad:
		return fmt.Sprintf("module load failed for player index %d: %v", e.PlayerIndex, e.Err)
	case KindMapGeneration:
		return fmt.Sprintf("map generation failed: %v", e.Err)
	case KindTurnOutOfBounds:
		return fmt.Sprintf("turn %d out of bounds (max: %d)", e.Requested, e.MaxTurn)
	case KindGameOver:
		return "game is already over"
	}
	return "replay error"
}

func (e *Error) Unwrap() error { return e.Err }

// Recording is the minimal input needed to reproduce a match: the seed, one
// bot module's bytes per player, and the match configuration.
type Recording struct {
	Seed    uint64
	Modules [][]byte
	Config  match.Config
}

// Engine steps through a recorded match deterministically, re-simulating
// from turn 0 whenever it needs to move to an earlier or arbitrary turn.
type Engine struct {
	recording   Recording
	factories   []match.BotFactory
	gameState   *game.GameState
	bots        map[game.PlayerID]turn.Bot
	stats       *game.AllPlayerStats
	currentTurn uint32
}

// New builds a replay engine from recording, positioned at turn 0.
func New(recording Recording, factories []match.BotFactory) (*Engine, error) {
	return NewAtTurn(recording, factories, 0)
}

// NewAtTurn builds a replay engine positioned at targetTurn, replaying from
// turn 0 as needed.
func NewAtTurn(recording Recording, factories []match.BotFactory, targetTurn uint32) (*Engine, error) {
	numPlayers := len(recording.Modules)
	if numPlayers != len(factories) {
		return nil, &Error{Kind: KindModuleLoad, Err: fmt.Errorf("module count %d does not match factory count %d", numPlayers, len(factories))}
	}

	gen, err := mapgen.Generate(recording.Seed, recording.Config.MapWidth, recording.Config.MapHeight, numPlayers)
	if err != nil {
		return nil, &Error{Kind: KindMapGeneration, Err: err}
	}

	gs := game.NewGameState(gen.Map, gen.Players, recording.Config.MaxTurns)

	bots := make(map[game.PlayerID]turn.Bot, numPlayers)
	for i, factory := range factories {
		playerID := gen.Players[i].ID
		bot, err := factory.NewBot(playerID)
		if err != nil {
			return nil, &Error{Kind: KindModuleLoad, PlayerIndex: i, Err: err}
		}
		bots[playerID] = bot
	}

	e := &Engine{
		recording: recording,
		factories: factories,
		gameState: gs,
		bots:      bots,
	}

	for i := uint32(0); i < targetTurn; i++ {
		if e.gameState.IsGameOver() {
			break
		}
		e.executeTurnInternal()
	}

	return e, nil
}

// Turn returns the current turn number.
func (e *Engine) Turn() uint32 { return e.currentTurn }

// State returns the current game state. Callers must not mutate it.
func (e *Engine) State() *game.GameState { return e.gameState }

// IsGameOver reports whether the replay has reached a terminal state.
func (e *Engine) IsGameOver() bool { return e.gameState.IsGameOver() }

// StepForward advances the replay by exactly one turn.
func (e *Engine) StepForward() error {
	if e.gameState.IsGameOver() {
		return &Error{Kind: KindGameOver}
	}
	e.executeTurnInternal()
	return nil
}

// StepBackward moves the replay back to current_turn-1 by re-simulating
// from turn 0.
func (e *Engine) StepBackward() error {
	if e.currentTurn == 0 {
		return &Error{Kind: KindTurnOutOfBounds, Requested: 0, MaxTurn: 0}
	}
	return e.GotoTurn(e.currentTurn - 1)
}

// GotoTurn jumps to targetTurn, re-simulating from turn 0. If the game
// reaches a terminal state before targetTurn, the replay stops there and
// Turn reports the turn actually reached.
func (e *Engine) GotoTurn(targetTurn uint32) error {
	if targetTurn > e.recording.Config.MaxTurns {
		return &Error{Kind: KindTurnOutOfBounds, Requested: targetTurn, MaxTurn: e.recording.Config.MaxTurns}
	}
	fresh, err := NewAtTurn(e.recording, e.factories, targetTurn)
	if err != nil {
		return err
	}
	for _, b := range e.bots {
		if c, ok := b.(interface{ Close() }); ok {
			c.Close()
		}
	}
	*e = *fresh
	return nil
}

func (e *Engine) executeTurnInternal() {
	stats := e.stats
	if stats == nil {
		stats = e.gameState.ComputeAllPlayerStats()
	}
	result := turn.RunTurn(e.gameState, e.bots, e.recording.Config.FuelBudget, stats)
	e.stats = result.Stats
	e.currentTurn++
}
