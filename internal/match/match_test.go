package match

import (
	"context"
	"testing"

	"github.com/ensigame/ensi/internal/turn"
	"github.com/ensigame/ensi/pkg/game"
	"github.com/ensigame/ensi/pkg/sandbox"
)

// yieldBot never emits a command, matching the simplest legal bot: it
// returns normally every turn having done nothing.
type yieldBot struct{}

func (yieldBot) RunTurn(uint64, *game.GameState, *game.AllPlayerStats) (sandbox.TurnReport, error) {
	return sandbox.TurnReport{Outcome: sandbox.OutcomeReturned}, nil
}

type yieldFactory struct{}

func (yieldFactory) NewBot(game.PlayerID) (turn.Bot, error) { return yieldBot{}, nil }

type failingFactory struct{ err error }

func (f failingFactory) NewBot(game.PlayerID) (turn.Bot, error) { return nil, f.err }

func testConfig() Config {
	return Config{MaxTurns: 20, FuelBudget: 50_000, MapWidth: 16, MapHeight: 16}
}

func TestRunGameDeterministic(t *testing.T) {
	factories := []BotFactory{yieldFactory{}, yieldFactory{}, yieldFactory{}}

	r1, err := RunGame(context.Background(), 42, factories, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := RunGame(context.Background(), 42, factories, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r1.TurnsPlayed != r2.TurnsPlayed {
		t.Fatalf("turns played differ: %d vs %d", r1.TurnsPlayed, r2.TurnsPlayed)
	}
	for i := range r1.Scores {
		if r1.Scores[i] != r2.Scores[i] {
			t.Fatalf("score %d differs between runs: %v vs %v", i, r1.Scores[i], r2.Scores[i])
		}
	}
	if (r1.Winner == nil) != (r2.Winner == nil) {
		t.Fatal("winner presence differs between identical runs")
	}
	if r1.Winner != nil && *r1.Winner != *r2.Winner {
		t.Fatalf("winner differs: %d vs %d", *r1.Winner, *r2.Winner)
	}
}

func TestRunGameRecordsSeed(t *testing.T) {
	factories := []BotFactory{yieldFactory{}, yieldFactory{}}

	r, err := RunGame(context.Background(), 42, factories, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Seed != 42 {
		t.Fatalf("result must carry the seed it was produced from, got %d", r.Seed)
	}
}

func TestRunGameRejectsBadPlayerCount(t *testing.T) {
	_, err := RunGame(context.Background(), 1, []BotFactory{yieldFactory{}}, testConfig())
	if err == nil {
		t.Fatal("want error for a single-player game")
	}
	matchErr, ok := err.(*Error)
	if !ok || matchErr.Kind != KindInputValidation {
		t.Fatalf("want KindInputValidation, got %#v", err)
	}
}

func TestRunGameSurfacesModuleLoadFailure(t *testing.T) {
	factories := []BotFactory{yieldFactory{}, failingFactory{err: &sandbox.ModuleLoadError{Reason: "missing run_turn export"}}}

	_, err := RunGame(context.Background(), 1, factories, testConfig())
	matchErr, ok := err.(*Error)
	if !ok || matchErr.Kind != KindModuleLoad || matchErr.PlayerIndex != 1 {
		t.Fatalf("want KindModuleLoad at index 1, got %#v", err)
	}
}

func TestRunGameSurfacesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factories := []BotFactory{yieldFactory{}, yieldFactory{}}
	_, err := RunGame(ctx, 42, factories, testConfig())
	matchErr, ok := err.(*Error)
	if !ok || matchErr.Kind != KindCancelled {
		t.Fatalf("want KindCancelled for a cancelled context, got %#v", err)
	}
}

func TestRunGameIdleBotsAllStarveOut(t *testing.T) {
	// A bot that never acts cannot feed an isolated capital: production 30
	// against consumption 110 starves the city and the rebellion roll is
	// certain once the deficit exceeds the surviving population. Every
	// player is eliminated, so there is no winner and each player carries
	// an elimination turn.
	factories := []BotFactory{yieldFactory{}, yieldFactory{}}
	result, err := RunGame(context.Background(), 7, factories, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Winner != nil {
		t.Fatalf("want no winner when every player is eliminated, got %d", *result.Winner)
	}
	if len(result.EliminationOrder) != len(factories) {
		t.Fatalf("want every player in the elimination order, got %v", result.EliminationOrder)
	}
	for i, ps := range result.PlayerStats {
		if ps.EliminatedTurn == nil {
			t.Fatalf("player slot %d missing an elimination turn", i)
		}
	}
	if result.TurnsPlayed == 0 {
		t.Fatal("at least one turn must have been played")
	}
}
