// Command ensitournament runs a tournament of bot modules against each
// other and prints the aggregate results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ensigame/ensi/internal/config"
	"github.com/ensigame/ensi/internal/logger"
	"github.com/ensigame/ensi/internal/match"
	"github.com/ensigame/ensi/internal/store"
	"github.com/ensigame/ensi/internal/tournament"
)

func main() {
	logger.Init()

	var (
		numGames int
		workers  int
		dbURL    string
		seed     uint64
		dryRun   bool
	)

	flag.IntVar(&numGames, "n", 1, "Number of games to run")
	flag.IntVar(&workers, "workers", 0, "Concurrency (0 = use config default)")
	flag.StringVar(&dbURL, "db", "", "Database URL (or use ENSI_DATABASE_URL env)")
	flag.Uint64Var(&seed, "seed", 1, "Base seed")
	flag.BoolVar(&dryRun, "dry-run", false, "Skip database writes")
	flag.Parse()

	modulePaths := flag.Args()
	if len(modulePaths) < 2 {
		log.Fatal().Msg("ensitournament requires at least two bot module paths")
	}

	cfg := config.Load()
	if workers <= 0 {
		workers = cfg.Workers
	}
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}

	modules := make([][]byte, len(modulePaths))
	for i, path := range modulePaths {
		bytes, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to read bot module")
		}
		modules[i] = bytes
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("shutting down...")
		cancel()
	}()

	tCfg := tournament.Config{
		BaseSeed: seed,
		Modules:  modules,
		NumGames: numGames,
		Workers:  workers,
		MatchConfig: match.Config{
			MaxTurns:   cfg.MaxTurns,
			FuelBudget: cfg.FuelBudget,
			MapWidth:   cfg.MapWidth,
			MapHeight:  cfg.MapHeight,
		},
	}

	result, err := tournament.Run(ctx, tCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("tournament run failed")
	}

	if !dryRun {
		db, err := store.Connect(dbURL)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed, continuing without persistence")
		} else {
			defer db.Close()
			repo := store.NewTournamentRepo(db)
			persistResults(ctx, repo, seed, len(modules), result)
		}
	}

	printSummary(result, numGames)
}

func persistResults(ctx context.Context, repo *store.TournamentRepo, seed uint64, numPlayers int, result *tournament.Result) {
	id, err := repo.CreateTournament(ctx, seed, len(result.Outcomes), numPlayers)
	if err != nil {
		log.Error().Err(err).Msg("failed to create tournament record")
		return
	}
	for _, outcome := range result.Outcomes {
		if err := repo.RecordGame(ctx, id, outcome); err != nil {
			log.Error().Err(err).Int("game", outcome.Index).Msg("failed to record game")
		}
	}
	if err := repo.RecordSummary(ctx, id, result.Summary); err != nil {
		log.Error().Err(err).Msg("failed to record tournament summary")
	}
}

func printSummary(result *tournament.Result, numGames int) {
	fmt.Printf("\nResults (%d games, %d failed):\n", numGames, result.Failures)
	for _, s := range result.Summary {
		if s.Games == 0 {
			continue
		}
		winRate := float64(s.Wins) / float64(s.Games) * 100
		fmt.Printf("  player %d: %d games, %.1f%% win rate, mean score %.2f (stddev %.2f)\n",
			s.PlayerID, s.Games, winRate, s.Mean(), s.StdDev())
	}
}
