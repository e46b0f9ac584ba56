package tournament

import (
	"context"
	"testing"

	"github.com/bytecodealliance/wasmtime-go/v25"
	"github.com/ensigame/ensi/internal/match"
)

const noopBotWat = `
(module
  (memory (export "memory") 2)
  (func (export "run_turn") (param i32) (result i32)
    i32.const 0))
`

func compileNoopBot(t *testing.T) []byte {
	t.Helper()
	wasmBytes, err := wasmtime.Wat2Wasm(noopBotWat)
	if err != nil {
		t.Fatalf("wat2wasm: %v", err)
	}
	return wasmBytes
}

func TestRunAggregatesAcrossGames(t *testing.T) {
	bot := compileNoopBot(t)
	cfg := Config{
		BaseSeed: 1,
		Modules:  [][]byte{bot, bot},
		NumGames: 6,
		Workers:  3,
		MatchConfig: match.Config{
			MaxTurns:   5,
			FuelBudget: 50_000,
			MapWidth:   16,
			MapHeight:  16,
		},
	}

	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Failures != 0 {
		t.Fatalf("want no failures, got %d", result.Failures)
	}
	if len(result.Outcomes) != cfg.NumGames {
		t.Fatalf("want %d outcomes, got %d", cfg.NumGames, len(result.Outcomes))
	}
	for i, o := range result.Outcomes {
		if o.Err != nil {
			t.Fatalf("game %d failed: %v", i, o.Err)
		}
		if o.Seed != cfg.BaseSeed+uint64(i) {
			t.Fatalf("game %d: want seed %d, got %d", i, cfg.BaseSeed+uint64(i), o.Seed)
		}
	}

	for p, summary := range result.Summary {
		if summary.Games != cfg.NumGames {
			t.Fatalf("player slot %d: want %d games recorded, got %d", p, cfg.NumGames, summary.Games)
		}
	}
}

func TestRunRejectsTooFewGames(t *testing.T) {
	bot := compileNoopBot(t)
	cfg := Config{BaseSeed: 1, Modules: [][]byte{bot, bot}, NumGames: 0}
	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatal("want an error for num_games < 1")
	}
}

func TestPlayerSummaryMergeIsAssociative(t *testing.T) {
	a := PlayerSummary{PlayerID: 1, Games: 2, Wins: 1, SumScore: 10, SumSq: 60}
	b := PlayerSummary{PlayerID: 1, Games: 3, Wins: 2, SumScore: 20, SumSq: 150}
	c := PlayerSummary{PlayerID: 1, Games: 1, Wins: 0, SumScore: 5, SumSq: 25}

	left := a
	left.Merge(b)
	left.Merge(c)

	right := a
	bc := b
	bc.Merge(c)
	right.Merge(bc)

	if left != right {
		t.Fatalf("merge must be associative: %+v vs %+v", left, right)
	}
}
