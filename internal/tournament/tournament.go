// Package tournament implements C10: running many independent matches in
// parallel against a shared, pre-compiled bot module cache and folding the
// per-game results into running statistics, the way cmd/botmatch runs many
// Diplomacy games concurrently and aggregates their outcomes.
package tournament

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/bytecodealliance/wasmtime-go/v25"
	"github.com/rs/zerolog/log"

	"github.com/ensigame/ensi/internal/logger"
	"github.com/ensigame/ensi/internal/match"
	"github.com/ensigame/ensi/pkg/game"
	"github.com/ensigame/ensi/pkg/sandbox"
)

// Config describes one tournament run: a base seed, one bot module's bytes
// per player slot, how many games to play, and how many to run at once.
type Config struct {
	BaseSeed    uint64
	Modules     [][]byte
	NumGames    int
	Workers     int
	MatchConfig match.Config
}

// GameOutcome pairs one game's index with its result (or error).
type GameOutcome struct {
	Index  int
	Seed   uint64
	Result *match.GameResult
	Err    error
}

// PlayerSummary accumulates running statistics for one player slot across
// every completed game: sample count, wins, and enough moments to derive
// mean and standard deviation of final score without retaining every
// sample.
type PlayerSummary struct {
	PlayerID game.PlayerID
	Games    int
	Wins     int
	SumScore float64
	SumSq    float64
}

// Merge folds other's accumulators into s. Both must describe the same
// player slot; merging is associative and commutative, so worker-local
// summaries can be combined in any order.
func (s *PlayerSummary) Merge(other PlayerSummary) {
	s.Games += other.Games
	s.Wins += other.Wins
	s.SumScore += other.SumScore
	s.SumSq += other.SumSq
}

// Mean returns the average final score, or 0 if no games were recorded.
func (s *PlayerSummary) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumScore / float64(s.Games)
}

// StdDev returns the population standard deviation of final score.
func (s *PlayerSummary) StdDev() float64 {
	if s.Games == 0 {
		return 0
	}
	mean := s.Mean()
	variance := s.SumSq/float64(s.Games) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Result is the full output of a tournament run.
type Result struct {
	Outcomes []GameOutcome
	Summary  []PlayerSummary // indexed by player slot (0-based)
	Failures int
}

// Run compiles every module once, then plays cfg.NumGames independent games
// concurrently across up to cfg.Workers goroutines, seed_i = base_seed + i.
// A per-game module-instantiation or map-generation failure is recorded in
// that game's GameOutcome and does not abort the tournament.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	numPlayers := len(cfg.Modules)
	if numPlayers < 2 || numPlayers > game.MaxPlayers {
		return nil, fmt.Errorf("num_players must be in [2,8], got %d", numPlayers)
	}
	if cfg.NumGames < 1 {
		return nil, fmt.Errorf("num_games must be >= 1, got %d", cfg.NumGames)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	engine := sandbox.NewEngine()
	compiled := make([]*wasmtime.Module, numPlayers)
	for i, bytes := range cfg.Modules {
		mod, err := engine.Compile(bytes)
		if err != nil {
			return nil, fmt.Errorf("compiling module for player index %d: %w", i, err)
		}
		compiled[i] = mod
	}

	outcomes := make([]GameOutcome, cfg.NumGames)
	summaries := make([]PlayerSummary, numPlayers)
	for p := range summaries {
		summaries[p].PlayerID = game.PlayerID(p + 1)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, workers)
	failures := 0

	for i := 0; i < cfg.NumGames; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			seed := cfg.BaseSeed + uint64(idx)
			factories := make([]match.BotFactory, numPlayers)
			for p, mod := range compiled {
				factories[p] = match.NewSandboxFactory(engine, mod)
			}

			gameCtx := logger.WithGameIndex(ctx, idx)
			result, err := match.RunGame(gameCtx, seed, factories, cfg.MatchConfig)
			if err != nil {
				log.Warn().Err(err).Int("game", idx).Uint64("seed", seed).Msg("game failed")
			}

			local := make([]PlayerSummary, numPlayers)
			if err == nil {
				for p, ps := range result.PlayerStats {
					local[p].PlayerID = ps.PlayerID
					local[p].Games = 1
					local[p].SumScore = ps.FinalScore
					local[p].SumSq = ps.FinalScore * ps.FinalScore
					if result.Winner != nil && *result.Winner == ps.PlayerID {
						local[p].Wins = 1
					}
				}
			}

			mu.Lock()
			outcomes[idx] = GameOutcome{Index: idx, Seed: seed, Result: result, Err: err}
			if err != nil {
				failures++
			} else {
				for p := range summaries {
					summaries[p].Merge(local[p])
				}
			}
			mu.Unlock()
		}(i)
	}

	wg.Wait()

	log.Info().
		Int("games", cfg.NumGames).
		Int("failures", failures).
		Int("players", numPlayers).
		Msg("tournament complete")

	return &Result{Outcomes: outcomes, Summary: summaries, Failures: failures}, nil
}
