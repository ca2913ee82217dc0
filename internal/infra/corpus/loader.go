// Package corpus reads the FAQ table from its tabular source.
package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yanqian/ai-faqbot/internal/domain/retrieval"
	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

// Columns names the required header labels. Matching is exact.
type Columns struct {
	Question string
	Answer   string
	Category string
}

// Loader implements retrieval.CorpusLoader for XLSX and CSV files.
type Loader struct {
	columns         Columns
	defaultCategory string
}

// NewLoader constructs the loader.
func NewLoader(columns Columns, defaultCategory string) *Loader {
	return &Loader{columns: columns, defaultCategory: defaultCategory}
}

// Load reads the file, validates the schema and normalizes categories.
func (l *Loader) Load(ctx context.Context, path string) ([]retrieval.Entry, []string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("corpus file not found at %s", path), err)
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, nil, apperrors.Wrap(apperrors.CodeSchemaError, fmt.Sprintf("unsupported corpus format %q", filepath.Ext(path)), nil)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return l.parse(rows)
}

func (l *Loader) parse(rows [][]string) ([]retrieval.Entry, []string, error) {
	if len(rows) == 0 {
		return nil, nil, apperrors.Wrap(apperrors.CodeSchemaError, "corpus has no header row", nil)
	}

	header := rows[0]
	qCol, aCol, cCol := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case l.columns.Question:
			qCol = i
		case l.columns.Answer:
			aCol = i
		case l.columns.Category:
			cCol = i
		}
	}
	if qCol < 0 || aCol < 0 || cCol < 0 {
		return nil, nil, apperrors.Wrap(apperrors.CodeSchemaError,
			fmt.Sprintf("corpus must contain %q, %q and %q columns", l.columns.Question, l.columns.Answer, l.columns.Category), nil)
	}

	var (
		entries    []retrieval.Entry
		categories []string
		seen       = make(map[string]struct{})
	)
	for _, row := range rows[1:] {
		entry := retrieval.Entry{
			Question: cell(row, qCol),
			Answer:   cell(row, aCol),
			Category: cell(row, cCol),
		}
		if entry.Question == "" && entry.Answer == "" {
			continue
		}
		if entry.Category == "" {
			entry.Category = l.defaultCategory
		}
		if _, ok := seen[entry.Category]; !ok {
			seen[entry.Category] = struct{}{}
			categories = append(categories, entry.Category)
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, nil, apperrors.Wrap(apperrors.CodeSchemaError, "corpus contains no entries", nil)
	}
	return entries, categories, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

var _ retrieval.CorpusLoader = (*Loader)(nil)
