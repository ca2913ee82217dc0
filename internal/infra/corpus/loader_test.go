package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

var testColumns = Columns{Question: "question", Answer: "answer", Category: "category"}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faq.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "question,answer,category\n"+
		"How do I reset my password?,Use the reset link.,Account\n"+
		"What are your hours?,9 to 5.,General\n"+
		"How do I close my account?,Contact support.,Account\n")

	loader := NewLoader(testColumns, "General")
	entries, categories, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "How do I reset my password?", entries[0].Question)
	require.Equal(t, "Use the reset link.", entries[0].Answer)
	require.Equal(t, "Account", entries[0].Category)
	require.Equal(t, []string{"Account", "General"}, categories)
}

func TestLoadCSVDefaultCategoryAndBlankRows(t *testing.T) {
	path := writeCSV(t, "question,answer,category\n"+
		"q1,a1,\n"+
		",,\n"+
		"q2,a2,Billing\n")

	loader := NewLoader(testColumns, "General")
	entries, categories, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "General", entries[0].Category)
	require.Equal(t, []string{"General", "Billing"}, categories)
}

func TestLoadMissingColumn(t *testing.T) {
	path := writeCSV(t, "question,reply,category\nq1,a1,c1\n")

	loader := NewLoader(testColumns, "General")
	_, _, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeSchemaError))
}

func TestLoadEmptyCorpus(t *testing.T) {
	path := writeCSV(t, "question,answer,category\n")

	loader := NewLoader(testColumns, "General")
	_, _, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeSchemaError))
}

func TestLoadMissingFile(t *testing.T) {
	loader := NewLoader(testColumns, "General")
	_, _, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.txt")
	require.NoError(t, os.WriteFile(path, []byte("whatever"), 0o644))

	loader := NewLoader(testColumns, "General")
	_, _, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeSchemaError))
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]string{
		{"question", "answer", "category"},
		{"q1", "a1", "Account"},
		{"q2", "a2", ""},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	loader := NewLoader(testColumns, "General")
	entries, categories, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Account", entries[0].Category)
	require.Equal(t, "General", entries[1].Category)
	require.Equal(t, []string{"Account", "General"}, categories)
}
