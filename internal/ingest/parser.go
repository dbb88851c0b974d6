package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/extrange/mcq-bot/internal/services"
)

// Parser normalizes one raw file into ingestion records.
type Parser interface {
	Parse(path string) ([]services.ProcessedRow, error)
}

// JSONParser reads files whose contents are an already-normalized
// []services.ProcessedRow, e.g. the saved output of a previous LLM run.
type JSONParser struct{}

func (JSONParser) Parse(path string) ([]services.ProcessedRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var rows []services.ProcessedRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for i := range rows {
		trimRow(&rows[i])
	}
	return rows, nil
}

func trimRow(row *services.ProcessedRow) {
	row.Question.Text = strings.TrimSpace(row.Question.Text)
	row.Question.Explanation = strings.TrimSpace(row.Question.Explanation)
	for i := range row.Answers {
		row.Answers[i].Text = strings.TrimSpace(row.Answers[i].Text)
	}
}
