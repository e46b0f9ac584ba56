package replay

import (
	"bytes"
	"testing"

	"github.com/ensigame/ensi/internal/match"
)

func TestRecordingRoundTrip(t *testing.T) {
	rec := Recording{
		Seed:    0xDEADBEEF,
		Modules: [][]byte{{0x00, 0x61, 0x73, 0x6d}, {0x01, 0x02}},
		Config:  match.Config{MaxTurns: 500, FuelBudget: 75_000, MapWidth: 48, MapHeight: 32},
	}

	var buf bytes.Buffer
	if err := rec.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadRecording(&buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Seed != rec.Seed {
		t.Fatalf("seed mismatch: %#x vs %#x", loaded.Seed, rec.Seed)
	}
	if loaded.Config != rec.Config {
		t.Fatalf("config mismatch: %+v vs %+v", loaded.Config, rec.Config)
	}
	if len(loaded.Modules) != len(rec.Modules) {
		t.Fatalf("module count mismatch: %d vs %d", len(loaded.Modules), len(rec.Modules))
	}
	for i := range rec.Modules {
		if !bytes.Equal(loaded.Modules[i], rec.Modules[i]) {
			t.Fatalf("module %d bytes mismatch", i)
		}
	}
}

func TestLoadRecordingRejectsTrailingData(t *testing.T) {
	rec := Recording{
		Seed:    1,
		Modules: [][]byte{{}, {}},
		Config:  match.Config{MaxTurns: 10, FuelBudget: 50_000, MapWidth: 16, MapHeight: 16},
	}

	var buf bytes.Buffer
	if err := rec.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	buf.WriteByte(0x01) // a field this reader does not understand

	if _, err := LoadRecording(&buf); err == nil {
		t.Fatal("want an error loading a recording with unrecognized trailing data")
	}
}

func TestLoadRecordingRejectsTruncation(t *testing.T) {
	rec := Recording{
		Seed:    1,
		Modules: [][]byte{{0xAA}, {0xBB}},
		Config:  match.Config{MaxTurns: 10, FuelBudget: 50_000, MapWidth: 16, MapHeight: 16},
	}

	var buf bytes.Buffer
	if err := rec.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-3])

	if _, err := LoadRecording(truncated); err == nil {
		t.Fatal("want an error loading a truncated recording")
	}
}
