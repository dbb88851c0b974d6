package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/extrange/mcq-bot/internal/models"

	"gorm.io/gorm"
)

// ProcessedRow is the normalized record shape produced by the ingestion
// parsers: one question plus its answer options.
type ProcessedRow struct {
	Question QuestionInput `json:"question"`
	Answers  []AnswerInput `json:"answers"`
}

type QuestionInput struct {
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
}

type AnswerInput struct {
	Text      string `json:"text"`
	Key       int    `json:"key"`
	IsCorrect bool   `json:"is_correct"`
}

// RejectedRow pairs an input record with the reason it was not persisted.
type RejectedRow struct {
	Row ProcessedRow
	Err error
}

// BulkSummary partitions an ingested batch, preserving original record
// identity for caller-side reconciliation.
type BulkSummary struct {
	Added      []ProcessedRow
	Duplicates []ProcessedRow
	Rejected   []RejectedRow
}

type IngestService struct {
	db        *gorm.DB
	questions *QuestionService
}

func NewIngestService(db *gorm.DB, questions *QuestionService) *IngestService {
	return &IngestService{db: db, questions: questions}
}

// BulkAdd inserts a batch of records under the given source-file label.
// The source file is created lazily and unconditionally, even for batches
// that turn out to be all duplicates. Each record commits independently:
// duplicates (same text and explanation) and invalid records are classified
// and skipped without aborting the rest of the batch.
func (s *IngestService) BulkAdd(rows []ProcessedRow, sourceFile string) (*BulkSummary, error) {
	file, err := s.ensureSourceFile(sourceFile)
	if err != nil {
		return nil, err
	}

	summary := &BulkSummary{}
	for _, row := range rows {
		if err := validateAnswers(row); err != nil {
			log.Printf("rejected question %.40q in %q: %v", row.Question.Text, sourceFile, err)
			summary.Rejected = append(summary.Rejected, RejectedRow{Row: row, Err: err})
			continue
		}

		err := s.addRow(row, file.ID)
		switch {
		case err == nil:
			summary.Added = append(summary.Added, row)
		case errors.Is(err, gorm.ErrDuplicatedKey):
			existing, lookupErr := s.questions.GetByText(row.Question.Text)
			if lookupErr != nil {
				return summary, lookupErr
			}
			if existing == nil {
				// Not a duplicate question after all; don't swallow it.
				return summary, fmt.Errorf("insert question %.40q: %w", row.Question.Text, err)
			}
			log.Printf("skipped question %.40q in %q - already exists in %q",
				row.Question.Text, sourceFile, existing.SourceFile.Path)
			summary.Duplicates = append(summary.Duplicates, row)
		default:
			return summary, fmt.Errorf("insert question %.40q: %w", row.Question.Text, err)
		}
	}
	return summary, nil
}

// addRow inserts one question and its answers in a single transaction, so a
// failed record is never partially persisted.
func (s *IngestService) addRow(row ProcessedRow, sourceFileID uint) error {
	question := models.Question{
		Text:         row.Question.Text,
		Explanation:  row.Question.Explanation,
		SourceFileID: sourceFileID,
	}
	for _, a := range row.Answers {
		question.Answers = append(question.Answers, models.Answer{
			Key:       a.Key,
			Text:      a.Text,
			IsCorrect: a.IsCorrect,
		})
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&question).Error
	})
}

func (s *IngestService) ensureSourceFile(path string) (*models.SourceFile, error) {
	var file models.SourceFile
	err := s.db.Where(models.SourceFile{Path: path}).FirstOrCreate(&file).Error
	if err != nil {
		return nil, fmt.Errorf("ensure source file %q: %w", path, err)
	}
	return &file, nil
}

// validateAnswers enforces exactly one correct answer and sane keys before
// anything touches the store.
func validateAnswers(row ProcessedRow) error {
	if len(row.Answers) == 0 {
		return &CorrectAnswerCountError{QuestionText: row.Question.Text, Count: 0}
	}

	correct := 0
	seenKeys := make(map[int]bool)
	for _, a := range row.Answers {
		if a.Key < 0 || a.Key > models.MaxAnswerKey {
			return fmt.Errorf("question %q: answer key %d out of range", row.Question.Text, a.Key)
		}
		if seenKeys[a.Key] {
			return fmt.Errorf("question %q: duplicate answer key %d", row.Question.Text, a.Key)
		}
		seenKeys[a.Key] = true
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return &CorrectAnswerCountError{QuestionText: row.Question.Text, Count: correct}
	}
	return nil
}
