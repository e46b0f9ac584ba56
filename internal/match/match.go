// Package match implements the end-to-end deterministic game: C8's public
// contract, RunGame(seed, modules, config) -> GameResult. Same inputs
// always produce a bit-identical result; the only side channel is debug
// logging, which never feeds back into the simulation.
package match

import (
	"context"
	"fmt"

	"github.com/ensigame/ensi/internal/logger"
	"github.com/ensigame/ensi/internal/turn"
	"github.com/ensigame/ensi/pkg/game"
	"github.com/ensigame/ensi/pkg/mapgen"
)

// Config mirrors the tournament configuration surface.
type Config struct {
	MaxTurns   uint32
	FuelBudget uint64
	MapWidth   uint16
	MapHeight  uint16
}

// DefaultConfig returns the documented configuration defaults.
func DefaultConfig() Config {
	return Config{MaxTurns: 1000, FuelBudget: 50_000, MapWidth: 64, MapHeight: 64}
}

// ErrorKind classifies a match-level failure.
type ErrorKind int

const (
	// KindInputValidation covers a bad player count or invalid config.
	KindInputValidation ErrorKind = iota
	// KindModuleLoad covers a sandbox rejecting a bot module.
	KindModuleLoad
	// KindMapGeneration covers not enough starting positions for the
	// requested player count.
	KindMapGeneration
	// KindCancelled covers the caller's context being cancelled mid-game.
	KindCancelled
)

// Error is the typed error surfaced at the match-engine boundary.
type Error struct {
	Kind        ErrorKind
	PlayerIndex int // meaningful only for KindModuleLoad
	Err         error
}

func (e *Error) Error() string {
	if e.Kind == KindModuleLoad {
		return fmt.Sprintf("module load failed for player index %d: %v", e.PlayerIndex, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// BotFactory instantiates a fresh sandbox for one player within one game.
// The production implementation wraps pkg/sandbox around a pre-compiled
// module; tests can supply a fake that never touches WASM.
type BotFactory interface {
	NewBot(playerID game.PlayerID) (turn.Bot, error)
}

// PlayerStats reports one player's per-match outcome.
type PlayerStats struct {
	PlayerID       game.PlayerID
	FuelConsumed   uint64
	TrapCount      int
	EliminatedTurn *uint32
	FinalScore     float64
}

// GameResult is the pure output of RunGame. Same (seed, modules, config)
// always yields a bit-identical GameResult.
type GameResult struct {
	Winner           *game.PlayerID
	Scores           []float64
	TurnsPlayed      uint32
	PlayerStats      []PlayerStats
	EliminationOrder []game.PlayerID
	Seed             uint64
}

// RunGame runs one complete match from seed, one BotFactory per player (in
// player-id order), and a configuration, returning the terminal result.
func RunGame(ctx context.Context, seed uint64, factories []BotFactory, cfg Config) (*GameResult, error) {
	numPlayers := len(factories)
	if numPlayers < 2 || numPlayers > game.MaxPlayers {
		return nil, &Error{Kind: KindInputValidation, Err: fmt.Errorf("num_players must be in [2,8], got %d", numPlayers)}
	}
	if cfg.MapWidth == 0 || cfg.MapHeight == 0 {
		return nil, &Error{Kind: KindInputValidation, Err: fmt.Errorf("map dimensions must be non-zero, got %dx%d", cfg.MapWidth, cfg.MapHeight)}
	}

	gen, err := mapgen.Generate(seed, cfg.MapWidth, cfg.MapHeight, numPlayers)
	if err != nil {
		return nil, &Error{Kind: KindMapGeneration, Err: err}
	}

	gs := game.NewGameState(gen.Map, gen.Players, cfg.MaxTurns)

	bots := make(map[game.PlayerID]turn.Bot, numPlayers)
	for i, factory := range factories {
		playerID := gen.Players[i].ID
		bot, err := factory.NewBot(playerID)
		if err != nil {
			releaseBots(bots)
			return nil, &Error{Kind: KindModuleLoad, PlayerIndex: i, Err: err}
		}
		bots[playerID] = bot
	}
	defer releaseBots(bots)

	fuelConsumed := make(map[game.PlayerID]uint64, numPlayers)
	trapCounts := make(map[game.PlayerID]int, numPlayers)
	eliminatedTurn := make(map[game.PlayerID]uint32, numPlayers)
	terminalScores := make(map[game.PlayerID]float64, numPlayers)
	var eliminationOrder []game.PlayerID

	log := logger.ForGame(ctx)

	var stats *game.AllPlayerStats
	for !gs.IsGameOver() {
		select {
		case <-ctx.Done():
			return nil, &Error{Kind: KindCancelled, Err: ctx.Err()}
		default:
		}

		currentTurn := gs.Turn
		result := turn.RunTurn(gs, bots, cfg.FuelBudget, stats)
		stats = result.Stats

		for _, o := range result.Outcomes {
			fuelConsumed[o.PlayerID] += o.FuelConsumed
			if o.Trapped {
				trapCounts[o.PlayerID]++
			}
		}
		for _, id := range result.EliminatedThisTurn {
			eliminatedTurn[id] = currentTurn
			terminalScores[id] = result.TerminalScores[id]
			eliminationOrder = append(eliminationOrder, id)
			releaseBot(bots, id)
			log.Debug().
				Uint64("seed", seed).
				Uint32("turn", currentTurn).
				Uint8("player", uint8(id)).
				Float64("terminalScore", result.TerminalScores[id]).
				Msg("player eliminated")
		}
	}

	result := buildResult(gs, gen, fuelConsumed, trapCounts, eliminatedTurn, terminalScores, eliminationOrder, seed)
	log.Debug().
		Uint64("seed", seed).
		Uint32("turns", result.TurnsPlayed).
		Msg("game finished")
	return result, nil
}

// releaseBot frees one player's sandbox and drops it from the turn driver's
// view. Eliminated players never run again, so their execution resources go
// back at end-of-turn.
func releaseBot(bots map[game.PlayerID]turn.Bot, id game.PlayerID) {
	if b, ok := bots[id]; ok {
		if c, ok := b.(interface{ Close() }); ok {
			c.Close()
		}
		delete(bots, id)
	}
}

func releaseBots(bots map[game.PlayerID]turn.Bot) {
	for id := range bots {
		releaseBot(bots, id)
	}
}

func buildResult(gs *game.GameState, gen *mapgen.Result, fuelConsumed map[game.PlayerID]uint64, trapCounts map[game.PlayerID]int, eliminatedTurn map[game.PlayerID]uint32, terminalScores map[game.PlayerID]float64, eliminationOrder []game.PlayerID, seed uint64) *GameResult {
	scores := make([]float64, len(gen.Players))
	playerStats := make([]PlayerStats, len(gen.Players))

	var winner *game.PlayerID
	var winnerScore float64

	for i, p := range gen.Players {
		var score float64
		if p.Alive {
			score = gs.CalculateScore(p.ID)
		} else {
			// Eliminated players keep the score they died with.
			score = terminalScores[p.ID]
		}
		scores[i] = score

		var turnPtr *uint32
		if t, ok := eliminatedTurn[p.ID]; ok {
			tCopy := t
			turnPtr = &tCopy
		}
		playerStats[i] = PlayerStats{
			PlayerID:       p.ID,
			FuelConsumed:   fuelConsumed[p.ID],
			TrapCount:      trapCounts[p.ID],
			EliminatedTurn: turnPtr,
			FinalScore:     score,
		}

		if !p.Alive {
			continue
		}
		// Lower player_id wins ties: only replace the incumbent on a
		// strictly greater score, and players are iterated in ascending
		// id order.
		if winner == nil || score > winnerScore {
			id := p.ID
			winner = &id
			winnerScore = score
		}
	}

	return &GameResult{
		Winner:           winner,
		Scores:           scores,
		TurnsPlayed:      gs.Turn,
		PlayerStats:      playerStats,
		EliminationOrder: eliminationOrder,
		Seed:             seed,
	}
}
