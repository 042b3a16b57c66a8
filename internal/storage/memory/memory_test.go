package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stridelands/engine/internal/config"
	"github.com/stridelands/engine/pkg/core"
)

func testTerritory(owner string) core.Territory {
	return core.Territory{
		OwnerID: owner,
		Name:    "Test Loop",
		Ring: []core.Point{
			{Latitude: 39.9, Longitude: 116.4},
			{Latitude: 39.9004, Longitude: 116.4},
			{Latitude: 39.9004, Longitude: 116.4005},
		},
		AreaM2:    1500,
		ClaimedAt: time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC),
	}
}

func TestNew(t *testing.T) {
	cfg := config.MemoryConfig{
		OutputDir:      "/tmp/test",
		CompressOutput: true,
	}
	b := New(cfg)

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if !b.cfg.CompressOutput {
		t.Error("expected CompressOutput=true")
	}
	if b.territories == nil {
		t.Error("territories map not initialized")
	}
}

func TestSaveTerritory_AssignsIDs(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})

	first := testTerritory("player-1")
	second := testTerritory("player-2")

	if err := b.SaveTerritory(&first); err != nil {
		t.Fatalf("SaveTerritory failed: %v", err)
	}
	if err := b.SaveTerritory(&second); err != nil {
		t.Fatalf("SaveTerritory failed: %v", err)
	}

	if first.ID != 1 {
		t.Errorf("expected first ID=1, got %d", first.ID)
	}
	if second.ID != 2 {
		t.Errorf("expected second ID=2, got %d", second.ID)
	}

	all, err := b.Territories()
	if err != nil {
		t.Fatalf("Territories failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 territories, got %d", len(all))
	}
}

func TestSaveTerritory_KeepsExistingID(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})

	seeded := testTerritory("player-1")
	seeded.ID = 40
	if err := b.SaveTerritory(&seeded); err != nil {
		t.Fatalf("SaveTerritory failed: %v", err)
	}
	if seeded.ID != 40 {
		t.Errorf("expected seeded ID preserved, got %d", seeded.ID)
	}

	// Next assigned ID continues past the seeded one.
	next := testTerritory("player-2")
	if err := b.SaveTerritory(&next); err != nil {
		t.Fatalf("SaveTerritory failed: %v", err)
	}
	if next.ID != 41 {
		t.Errorf("expected next ID=41, got %d", next.ID)
	}
}

func TestExplorationRuns_FilterByOwner(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})

	for _, owner := range []string{"player-1", "player-2", "player-1"} {
		run := core.ExplorationRun{OwnerID: owner, DistanceMeters: 500}
		if err := b.SaveExplorationRun(&run); err != nil {
			t.Fatalf("SaveExplorationRun failed: %v", err)
		}
		if run.ID == 0 {
			t.Error("expected run ID to be assigned")
		}
	}

	runs, err := b.ExplorationRuns("player-1")
	if err != nil {
		t.Fatalf("ExplorationRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs for player-1, got %d", len(runs))
	}

	runs, err = b.ExplorationRuns("player-3")
	if err != nil {
		t.Fatalf("ExplorationRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs for player-3, got %d", len(runs))
	}
}

func TestRecordPerformance(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})

	if err := b.RecordPerformance("claim", 3, 1, 2.5); err != nil {
		t.Fatalf("RecordPerformance failed: %v", err)
	}
	if len(b.performance) != 1 {
		t.Fatalf("expected 1 performance sample, got %d", len(b.performance))
	}
	if b.performance[0].TerritoriesQueued != 3 {
		t.Errorf("expected 3 territories queued, got %d", b.performance[0].TerritoriesQueued)
	}
}

func TestExport_PlainJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: false})

	territory := testTerritory("player-1")
	if err := b.SaveTerritory(&territory); err != nil {
		t.Fatalf("SaveTerritory failed: %v", err)
	}

	if err := b.Export(); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	path := b.GetExportedFilePath()
	if path == "" {
		t.Fatal("expected export path to be set")
	}
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("expected .json suffix, got %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer f.Close()

	var export territoryExport
	if err := json.NewDecoder(f).Decode(&export); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	if len(export.Territories) != 1 {
		t.Errorf("expected 1 exported territory, got %d", len(export.Territories))
	}
	if export.Territories[0].OwnerID != "player-1" {
		t.Errorf("unexpected owner: %s", export.Territories[0].OwnerID)
	}
}

func TestExport_Gzip(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})

	territory := testTerritory("player-1")
	if err := b.SaveTerritory(&territory); err != nil {
		t.Fatalf("SaveTerritory failed: %v", err)
	}
	run := core.ExplorationRun{OwnerID: "player-1", DistanceMeters: 1200}
	if err := b.SaveExplorationRun(&run); err != nil {
		t.Fatalf("SaveExplorationRun failed: %v", err)
	}

	// Close exports as a side effect.
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	path := b.GetExportedFilePath()
	if !strings.HasSuffix(path, ".json.gz") {
		t.Fatalf("expected .json.gz suffix, got %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("failed to open gzip reader: %v", err)
	}
	defer gz.Close()

	var export territoryExport
	if err := json.NewDecoder(gz).Decode(&export); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	if len(export.Territories) != 1 || len(export.Runs) != 1 {
		t.Errorf("expected 1 territory and 1 run, got %d and %d",
			len(export.Territories), len(export.Runs))
	}
}

func TestExport_SortedByID(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})

	for i := 0; i < 5; i++ {
		territory := testTerritory("player-1")
		if err := b.SaveTerritory(&territory); err != nil {
			t.Fatalf("SaveTerritory failed: %v", err)
		}
	}

	b.mu.RLock()
	export := b.buildExport()
	b.mu.RUnlock()

	for i := 1; i < len(export.Territories); i++ {
		if export.Territories[i].ID < export.Territories[i-1].ID {
			t.Fatal("expected territories sorted by ID")
		}
	}
}
