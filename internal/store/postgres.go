// Package store persists tournament results. This is optional
// infrastructure: neither pkg/game, pkg/mapgen, pkg/sandbox, nor
// internal/match, internal/replay, or internal/tournament import it, so a
// tournament can be run and scored without ever touching a database.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/ensigame/ensi/internal/match"
	"github.com/ensigame/ensi/internal/tournament"
	"github.com/ensigame/ensi/pkg/game"
)

// Connect opens a connection pool to PostgreSQL.
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// TournamentRepo records tournament runs and their per-game outcomes.
type TournamentRepo struct {
	db *sql.DB
}

// NewTournamentRepo creates a TournamentRepo.
func NewTournamentRepo(db *sql.DB) *TournamentRepo {
	return &TournamentRepo{db: db}
}

// CreateTournament inserts a row for a tournament run and returns its id.
func (r *TournamentRepo) CreateTournament(ctx context.Context, baseSeed uint64, numGames, numPlayers int) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tournaments (base_seed, num_games, num_players)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		baseSeed, numGames, numPlayers,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create tournament: %w", err)
	}
	return id, nil
}

// RecordGame inserts one game's outcome under tournamentID.
func (r *TournamentRepo) RecordGame(ctx context.Context, tournamentID string, outcome tournament.GameOutcome) error {
	if outcome.Err != nil {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO tournament_games (tournament_id, game_index, seed, error)
			 VALUES ($1, $2, $3, $4)`,
			tournamentID, outcome.Index, outcome.Seed, outcome.Err.Error(),
		)
		if err != nil {
			return fmt.Errorf("record failed game: %w", err)
		}
		return nil
	}

	var winner sql.NullInt32
	if outcome.Result.Winner != nil {
		winner = sql.NullInt32{Int32: int32(*outcome.Result.Winner), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tournament_games (tournament_id, game_index, seed, winner, turns_played)
		 VALUES ($1, $2, $3, $4, $5)`,
		tournamentID, outcome.Index, outcome.Seed, winner, outcome.Result.TurnsPlayed,
	)
	if err != nil {
		return fmt.Errorf("record game: %w", err)
	}

	for _, ps := range outcome.Result.PlayerStats {
		if err := r.recordPlayerStats(ctx, tournamentID, outcome.Index, ps); err != nil {
			return err
		}
	}
	return nil
}

func (r *TournamentRepo) recordPlayerStats(ctx context.Context, tournamentID string, gameIndex int, ps match.PlayerStats) error {
	var eliminatedTurn sql.NullInt64
	if ps.EliminatedTurn != nil {
		eliminatedTurn = sql.NullInt64{Int64: int64(*ps.EliminatedTurn), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tournament_player_stats (tournament_id, game_index, player_id, fuel_consumed, trap_count, eliminated_turn, final_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tournamentID, gameIndex, ps.PlayerID, int64(ps.FuelConsumed), ps.TrapCount, eliminatedTurn, ps.FinalScore,
	)
	if err != nil {
		return fmt.Errorf("record player stats: %w", err)
	}
	return nil
}

// SummaryRow is one player slot's aggregate row, ready for display or
// persistence.
type SummaryRow struct {
	PlayerID game.PlayerID
	Games    int
	Wins     int
	Mean     float64
	StdDev   float64
}

// RecordSummary persists the final per-player aggregates for a tournament.
func (r *TournamentRepo) RecordSummary(ctx context.Context, tournamentID string, summary []tournament.PlayerSummary) error {
	for _, s := range summary {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO tournament_summary (tournament_id, player_id, games, wins, mean_score, stddev_score)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			tournamentID, s.PlayerID, s.Games, s.Wins, s.Mean(), s.StdDev(),
		)
		if err != nil {
			return fmt.Errorf("record summary: %w", err)
		}
	}
	return nil
}
