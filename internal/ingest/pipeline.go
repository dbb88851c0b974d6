package ingest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrange/mcq-bot/internal/services"
)

type FileSummary struct {
	Total     int
	Added     int
	Duplicate int
	Rejected  int
}

// Pipeline walks an input folder, normalizes each file into records and adds
// them to the store under the file's label. A failing file is logged and
// skipped; the rest of the folder is still processed.
type Pipeline struct {
	ingest    *services.IngestService
	csvParser Parser
}

func NewPipeline(ingest *services.IngestService, csvParser Parser) *Pipeline {
	return &Pipeline{ingest: ingest, csvParser: csvParser}
}

// ProcessFolder ingests all .json and .csv files under folder, recursively.
// JSON files hold pre-normalized records and are labeled by their stem; CSV
// files go through the configured parser first and, when saveDir is set,
// their normalized output is saved there as <name>.json for reuse.
func (p *Pipeline) ProcessFolder(folder, saveDir string) (map[string]FileSummary, error) {
	summaries := make(map[string]FileSummary)

	if saveDir != "" {
		if err := os.MkdirAll(saveDir, 0o755); err != nil {
			return nil, fmt.Errorf("create save dir: %w", err)
		}
	}

	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			label := stem(path)
			rows, err := (JSONParser{}).Parse(path)
			if err != nil {
				log.Printf("failed to parse %s: %v", path, err)
				return nil
			}
			summaries[label] = p.addRows(rows, label)
		case ".csv":
			if p.csvParser == nil {
				log.Printf("skipping %s: no CSV parser configured", path)
				return nil
			}
			label := filepath.Base(path)
			rows, err := p.csvParser.Parse(path)
			if err != nil {
				log.Printf("failed to parse %s: %v", path, err)
				return nil
			}
			if saveDir != "" {
				if err := saveNormalized(rows, saveDir, label); err != nil {
					log.Printf("failed to save normalized %s: %v", label, err)
				}
			}
			summaries[label] = p.addRows(rows, label)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", folder, err)
	}

	return summaries, nil
}

func (p *Pipeline) addRows(rows []services.ProcessedRow, label string) FileSummary {
	summary := FileSummary{Total: len(rows)}

	result, err := p.ingest.BulkAdd(rows, label)
	if err != nil {
		log.Printf("failed to add questions for %s: %v", label, err)
	}
	if result != nil {
		summary.Added = len(result.Added)
		summary.Duplicate = len(result.Duplicates)
		summary.Rejected = len(result.Rejected)
	}
	return summary
}

func saveNormalized(rows []services.ProcessedRow, saveDir, label string) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(saveDir, label+".json"), data, 0o644)
}

// LogSummaries reports per-file ingestion results in the batch job's log.
func LogSummaries(summaries map[string]FileSummary) {
	for label, s := range summaries {
		log.Printf("processed %s with %d expected questions", label, s.Total)
		log.Printf("%d added, %d duplicates, %d rejected - total processed: %d",
			s.Added, s.Duplicate, s.Rejected, s.Added+s.Duplicate+s.Rejected)
	}
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
