// Package importer читает входные таблицы из файлов: CSV как текст,
// XLSX через excelize. Оба источника приводятся к одной форме
// (заголовки + записи), чтобы конвейер не различал происхождение данных.
package importer

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"addresscleaner/csvcodec"
)

// ReadTable читает таблицу из файла, выбирая ридер по расширению.
func ReadTable(filePath string) ([]string, []map[string]string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		return ReadXLSXTable(filePath)
	default:
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read input file: %w", err)
		}
		return csvcodec.Parse(string(data))
	}
}

// ReadXLSXTable читает первый лист XLSX-файла. Первая строка листа —
// заголовки; дальше применяются те же правила нормализации таблицы,
// что и для CSV.
func ReadXLSXTable(filePath string) ([]string, []map[string]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}

	log.Printf("[Importer] Read %d rows from sheet %q of %s", len(rows), sheetName, filepath.Base(filePath))
	return csvcodec.NormalizeTable(rows)
}
