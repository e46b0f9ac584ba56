package replay

import (
	"testing"

	"github.com/ensigame/ensi/internal/match"
	"github.com/ensigame/ensi/internal/turn"
	"github.com/ensigame/ensi/pkg/game"
	"github.com/ensigame/ensi/pkg/sandbox"
)

type yieldBot struct{}

func (yieldBot) RunTurn(uint64, *game.GameState, *game.AllPlayerStats) (sandbox.TurnReport, error) {
	return sandbox.TurnReport{Outcome: sandbox.OutcomeReturned}, nil
}

type yieldFactory struct{}

func (yieldFactory) NewBot(game.PlayerID) (turn.Bot, error) { return yieldBot{}, nil }

func testRecording() Recording {
	return Recording{
		Seed:    99,
		Modules: [][]byte{{}, {}},
		Config:  match.Config{MaxTurns: 10, FuelBudget: 50_000, MapWidth: 16, MapHeight: 16},
	}
}

func factories() []match.BotFactory {
	return []match.BotFactory{yieldFactory{}, yieldFactory{}}
}

func TestStepForwardAdvancesTurnCounter(t *testing.T) {
	e, err := New(testRecording(), factories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Turn() != 0 {
		t.Fatalf("want turn 0 at start, got %d", e.Turn())
	}
	if err := e.StepForward(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Turn() != 1 {
		t.Fatalf("want turn 1 after one step, got %d", e.Turn())
	}
}

// stepUpTo advances e by at most max turns, stopping at game over, and
// returns how many steps were actually taken.
func stepUpTo(t *testing.T, e *Engine, max int) int {
	t.Helper()
	steps := 0
	for i := 0; i < max && !e.IsGameOver(); i++ {
		if err := e.StepForward(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		steps++
	}
	if steps == 0 {
		t.Fatal("fixture produced no playable turns")
	}
	return steps
}

// TestGotoTurnMatchesSequentialSteps checks that jumping
// straight to turn N must leave the replay in exactly the state reached by
// stepping forward N times from scratch.
func TestGotoTurnMatchesSequentialSteps(t *testing.T) {
	stepped, err := New(testRecording(), factories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	k := stepUpTo(t, stepped, 5)

	jumped, err := New(testRecording(), factories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := jumped.GotoTurn(uint32(k)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertStatesEqual(t, stepped.State(), jumped.State())
}

// TestStepBackwardEqualsReplayMinusOne: stepping forward k times
// then step_backward once must equal replaying k-1 steps from scratch.
func TestStepBackwardEqualsReplayMinusOne(t *testing.T) {
	e, err := New(testRecording(), factories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	k := stepUpTo(t, e, 4)
	if err := e.StepBackward(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fresh, err := NewAtTurn(testRecording(), factories(), uint32(k-1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.Turn() != fresh.Turn() {
		t.Fatalf("turn mismatch: %d vs %d", e.Turn(), fresh.Turn())
	}
	assertStatesEqual(t, e.State(), fresh.State())
}

func TestGotoTurnRejectsBeyondMaxTurns(t *testing.T) {
	e, err := New(testRecording(), factories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.GotoTurn(testRecording().Config.MaxTurns + 1); err == nil {
		t.Fatal("want error jumping past max_turns")
	}
}

func TestStepBackwardAtTurnZeroFails(t *testing.T) {
	e, err := New(testRecording(), factories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.StepBackward(); err == nil {
		t.Fatal("want error stepping backward from turn 0")
	}
}

func assertStatesEqual(t *testing.T, a, b *game.GameState) {
	t.Helper()
	if a.Turn != b.Turn {
		t.Fatalf("turn mismatch: %d vs %d", a.Turn, b.Turn)
	}
	if len(a.Map.Tiles) != len(b.Map.Tiles) {
		t.Fatalf("map size mismatch: %d vs %d", len(a.Map.Tiles), len(b.Map.Tiles))
	}
	for i := range a.Map.Tiles {
		if a.Map.Tiles[i] != b.Map.Tiles[i] {
			t.Fatalf("tile %d mismatch: %+v vs %+v", i, a.Map.Tiles[i], b.Map.Tiles[i])
		}
	}
	if len(a.Players) != len(b.Players) {
		t.Fatalf("player count mismatch: %d vs %d", len(a.Players), len(b.Players))
	}
	for i := range a.Players {
		pa, pb := a.Players[i], b.Players[i]
		if pa.ID != pb.ID || pa.Alive != pb.Alive || pa.Capital != pb.Capital {
			t.Fatalf("player %d mismatch: %+v vs %+v", i, pa, pb)
		}
	}
}
