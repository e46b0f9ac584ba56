// Package logger configures the process-wide zerolog logger and tags
// per-game log lines with the tournament game index that produced them.
// Together with the seed the match engine attaches to its own events, a
// tagged line is a repro pointer: the same (seed, modules, config) re-runs
// the exact game bit for bit, so no random correlation IDs are needed.
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const gameIndexKey contextKey = "game_index"

// Init configures the global logger. The level comes from ENSI_LOG_LEVEL
// (default info). Development runs (ENSI_DEV=true) get a human-readable
// console writer; everything else emits JSON for ingestion.
func Init() {
	levelName := strings.ToLower(os.Getenv("ENSI_LOG_LEVEL"))
	if levelName == "" {
		levelName = "info"
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if developmentMode() {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	log.Debug().
		Str("level", level.String()).
		Bool("dev", developmentMode()).
		Msg("logger ready")
}

func developmentMode() bool {
	v := os.Getenv("ENSI_DEV")
	return v == "true" || v == "1"
}

// Get returns the global logger instance.
func Get() zerolog.Logger {
	return log.Logger
}

// WithGameIndex returns a context carrying the tournament's game index, so
// the match engine's log lines can be attributed to the game that emitted
// them even when many games run concurrently.
func WithGameIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, gameIndexKey, index)
}

// ForGame returns a logger tagged with the game index stored in ctx, or the
// plain global logger for a match run outside a tournament.
func ForGame(ctx context.Context) zerolog.Logger {
	index, ok := ctx.Value(gameIndexKey).(int)
	if !ok {
		return log.Logger
	}
	return log.Logger.With().Int("game", index).Logger()
}
