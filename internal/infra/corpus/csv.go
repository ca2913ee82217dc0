package corpus

import (
	"encoding/csv"
	"os"

	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "opening csv failed", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSchemaError, "parsing csv failed", err)
	}
	return rows, nil
}
