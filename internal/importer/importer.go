// Package importer loads the card catalog from Excel or CSV files
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/example/flashbot/pkg/models"
)

// cardStore is the slice of the card repository the importer needs
type cardStore interface {
	GetByQuestion(question string) (*models.Card, error)
	Create(card *models.Card) error
	Update(card *models.Card) error
}

// Config defines the import configuration
type Config struct {
	FilePath       string // Path to the Excel or CSV file
	QuestionColumn string // Column with the question
	AnswerColumn   string // Column with the answer
	TagsColumn     string // Column with comma-separated tags
	LinkColumn     string // Column with the question text of a linked card
	SheetName      string // Name of the sheet to import
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultConfig returns the default import configuration
func DefaultConfig(filePath string) Config {
	return Config{
		FilePath:       filePath,
		QuestionColumn: "A",
		AnswerColumn:   "B",
		TagsColumn:     "C",
		LinkColumn:     "D",
		SheetName:      "Sheet1",
		StartRow:       2, // By default, start from the second row (skip header)
	}
}

// Result holds the result of an import operation
type Result struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Importer writes imported cards through the card repository
type Importer struct {
	store cardStore
}

// New creates an importer over the given card store
func New(store cardStore) *Importer {
	return &Importer{store: store}
}

// ImportCards imports cards from an Excel or CSV file, creating new
// cards and updating existing ones matched by question text
func (im *Importer) ImportCards(config Config) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return im.importFromCSV(config)
	}
	return im.importFromExcel(config)
}

// importFromExcel imports cards from an Excel file
func (im *Importer) importFromExcel(config Config) (*Result, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		if err := im.processRow(row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// importFromCSV imports cards from a CSV file using the same column layout
func (im *Importer) importFromCSV(config Config) (*Result, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &Result{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++

		if err := im.processRow(row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

// processRow upserts a single imported row
func (im *Importer) processRow(row []string, config Config, result *Result) error {
	question := cell(row, config.QuestionColumn)
	answer := cell(row, config.AnswerColumn)
	tagsRaw := cell(row, config.TagsColumn)
	linkQuestion := cell(row, config.LinkColumn)

	if question == "" || answer == "" {
		result.Skipped++
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(tagsRaw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	// Resolve the linked card by its question text, if any
	var linkedID string
	if linkQuestion != "" {
		linked, err := im.store.GetByQuestion(linkQuestion)
		if err != nil {
			return err
		}
		if linked != nil {
			linkedID = linked.ID
		}
	}

	existing, err := im.store.GetByQuestion(question)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.Answer = answer
		existing.Tags = tags
		if linkedID != "" {
			existing.LinkedID = linkedID
		}
		if err := im.store.Update(existing); err != nil {
			return err
		}
		result.Updated++
		return nil
	}

	card := &models.Card{
		ID:       uuid.New().String(),
		Question: question,
		Answer:   answer,
		Tags:     tags,
		LinkedID: linkedID,
	}
	if err := im.store.Create(card); err != nil {
		return err
	}
	result.Created++
	return nil
}

// cell returns the trimmed value of a lettered column in a row
func cell(row []string, column string) string {
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnToIndex converts a column letter (A, B, ... AA, AB) to a 0-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	idx := 0
	for _, ch := range column {
		if ch < 'A' || ch > 'Z' {
			return -1
		}
		idx = idx*26 + int(ch-'A') + 1
	}
	return idx - 1
}
