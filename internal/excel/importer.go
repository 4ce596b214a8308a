package excel

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/example/wordcards/pkg/models"
)

var errSkipRow = errors.New("skipping row")

// ImportConfig defines how a spreadsheet maps onto word-book entries
type ImportConfig struct {
	FilePath          string // Path to the .xlsx, .csv or .json file
	WordColumn        string // Column with the word
	TranslationColumn string // Column with "type. translation; ..." items
	PhrasesColumn     string // Column with "phrase - translation | ..." items
	SheetName         string // Sheet to read; the first sheet when empty
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:        "A",
		TranslationColumn: "B",
		PhrasesColumn:     "C",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

// ReadBook reads word-book entries from an Excel, CSV or JSON file.
// Rows that cannot be turned into an entry are reported in the result
// rather than failing the whole file.
func ReadBook(config ImportConfig) ([]models.Entry, *ImportResult, error) {
	switch strings.ToLower(filepath.Ext(config.FilePath)) {
	case ".json":
		return readJSON(config)
	case ".csv":
		return readCSV(config)
	case ".xlsx", ".xlsm":
		return readExcel(config)
	}
	return nil, nil, fmt.Errorf("read word book (path: %s): unsupported file type", config.FilePath)
}

func readJSON(config ImportConfig) ([]models.Entry, *ImportResult, error) {
	data, err := os.ReadFile(config.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("read JSON file (path: %s): %w", config.FilePath, err)
	}

	var raw []models.Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode JSON file (path: %s): %w", config.FilePath, err)
	}

	b := newBuilder()
	for i, e := range raw {
		b.result.TotalProcessed++
		b.add(e, i+1)
	}
	return b.entries, b.result, nil
}

// readExcel imports words from the configured sheet of a workbook
func readExcel(config ImportConfig) ([]models.Entry, *ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open Excel file (path: %s): %w", config.FilePath, err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("get rows (sheet: %s): %w", sheet, err)
	}

	b := newBuilder()
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		b.processRow(row, config, i+1)
	}
	return b.entries, b.result, nil
}

// readCSV imports words from a CSV file. A row with only its first cell
// filled is a section title and is skipped.
func readCSV(config ImportConfig) ([]models.Entry, *ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open CSV file (path: %s): %w", config.FilePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	b := newBuilder()
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read CSV (path: %s, row: %d): %w", config.FilePath, rowNum+1, err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		if isSectionRow(row) {
			continue
		}
		b.processRow(row, config, rowNum)
	}
	return b.entries, b.result, nil
}

func isSectionRow(row []string) bool {
	if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
		return false
	}
	for _, cell := range row[1:] {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

type builder struct {
	entries []models.Entry
	seen    map[string]bool
	result  *ImportResult
}

func newBuilder() *builder {
	return &builder{
		seen:   make(map[string]bool),
		result: &ImportResult{Errors: make([]string, 0)},
	}
}

func (b *builder) processRow(row []string, config ImportConfig, rowNum int) {
	b.result.TotalProcessed++

	entry, err := parseRow(row, config)
	if err != nil {
		b.result.Skipped++
		if !errors.Is(err, errSkipRow) {
			b.result.Errors = append(b.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
		return
	}
	b.add(entry, rowNum)
}

func (b *builder) add(e models.Entry, rowNum int) {
	e.Word = cleanWord(e.Word)
	if e.Word == "" {
		b.result.Skipped++
		b.result.Errors = append(b.result.Errors, fmt.Sprintf("Row %d: word cannot be empty", rowNum))
		return
	}
	if b.seen[e.Key()] {
		b.result.Skipped++
		b.result.Errors = append(b.result.Errors, fmt.Sprintf("Row %d: duplicate word %q", rowNum, e.Word))
		return
	}
	if e.Translations == nil {
		e.Translations = []models.Translation{}
	}
	if e.Phrases == nil {
		e.Phrases = []models.Phrase{}
	}

	b.seen[e.Key()] = true
	b.entries = append(b.entries, e)
	b.result.Imported++
}

// parseRow processes a single spreadsheet row
func parseRow(row []string, config ImportConfig) (models.Entry, error) {
	word := cell(row, config.WordColumn)
	translation := cell(row, config.TranslationColumn)
	if word == "" && translation == "" {
		return models.Entry{}, errSkipRow
	}
	if translation == "" {
		return models.Entry{}, fmt.Errorf("translation cannot be empty")
	}

	return models.Entry{
		Word:         word,
		Translations: parseTranslations(translation),
		Phrases:      parsePhrases(cell(row, config.PhrasesColumn)),
	}, nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if colIdx := columnToIndex(column); colIdx >= 0 && colIdx < len(row) {
		return strings.TrimSpace(row[colIdx])
	}
	return ""
}

// parseTranslations splits "n. кошка; v. ловить" into typed translations
func parseTranslations(s string) []models.Translation {
	var out []models.Translation
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t := models.Translation{Translation: part}
		if typ, rest, ok := strings.Cut(part, ". "); ok && isPartOfSpeech(typ) {
			t.Type = typ
			t.Translation = strings.TrimSpace(rest)
		}
		out = append(out, t)
	}
	return out
}

// isPartOfSpeech matches short latin tags such as "n", "v", "adj", "phr.v"
func isPartOfSpeech(s string) bool {
	if s == "" || len(s) > 6 {
		return false
	}
	for _, r := range s {
		if r != '.' && (r > unicode.MaxASCII || !unicode.IsLetter(r)) {
			return false
		}
	}
	return true
}

// parsePhrases splits "phrase - translation | phrase - translation"
func parsePhrases(s string) []models.Phrase {
	var out []models.Phrase
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		phrase, translation, _ := strings.Cut(part, " - ")
		out = append(out, models.Phrase{
			Phrase:      strings.TrimSpace(phrase),
			Translation: strings.TrimSpace(translation),
		})
	}
	return out
}

// cleanWord removes trailing notes in parentheses, e.g. "go (went, gone)"
func cleanWord(word string) string {
	indexOpenParen := strings.Index(word, "(")
	if indexOpenParen > 0 {
		return strings.TrimSpace(word[:indexOpenParen])
	}
	return strings.TrimSpace(word)
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
