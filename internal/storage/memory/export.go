package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/stridelands/engine/pkg/core"
)

// territoryExport is the root JSON structure read by the map frontend.
type territoryExport struct {
	ExportedAt  time.Time             `json:"exportedAt"`
	Territories []core.Territory      `json:"territories"`
	Runs        []core.ExplorationRun `json:"runs"`
}

// Export writes the stored territories and runs to a JSON file, gzipped when
// configured. Safe to call more than once; each call writes a fresh file.
func (b *Backend) Export() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	export := b.buildExport()

	timestamp := export.ExportedAt.Format("20060102_150405")
	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("territories_%s.json.gz", timestamp)
	} else {
		filename = fmt.Sprintf("territories_%s.json", timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() territoryExport {
	export := territoryExport{
		ExportedAt:  time.Now().UTC(),
		Territories: make([]core.Territory, 0, len(b.territories)),
		Runs:        make([]core.ExplorationRun, 0, len(b.runs)),
	}

	for _, t := range b.territories {
		export.Territories = append(export.Territories, t)
	}
	// Map iteration order is random; exports should be diffable.
	sort.Slice(export.Territories, func(i, j int) bool {
		return export.Territories[i].ID < export.Territories[j].ID
	})

	export.Runs = append(export.Runs, b.runs...)

	return export
}

func writeJSON(path string, data territoryExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data territoryExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
