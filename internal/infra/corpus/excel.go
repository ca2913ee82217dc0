package corpus

import (
	"github.com/xuri/excelize/v2"

	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

// readWorkbook returns the cell grid of the first sheet.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSchemaError, "opening workbook failed", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeSchemaError, "workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSchemaError, "reading workbook rows failed", err)
	}
	return rows, nil
}
