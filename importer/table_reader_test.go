package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}
	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadXLSXTable(t *testing.T) {
	path := writeTestXLSX(t, [][]string{
		{"direccion", "ciudad", "telefono"},
		{"Palma 950", "Asunción", "0981 123456"},
		{"Av. España 123", "Luque", ""},
	})

	headers, records, err := ReadXLSXTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"direccion", "ciudad", "telefono"}, headers)
	require.Len(t, records, 2)
	assert.Equal(t, "Palma 950", records[0]["direccion"])
	assert.Equal(t, "Asunción", records[0]["ciudad"])
	assert.Equal(t, "", records[1]["telefono"])
}

func TestReadTableDispatchesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte("direccion,ciudad\nPalma 950,Asunción\n"), 0o644))

	headers, records, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"direccion", "ciudad"}, headers)
	require.Len(t, records, 1)
	assert.Equal(t, "Asunción", records[0]["ciudad"])
}

func TestReadTableMissingFile(t *testing.T) {
	_, _, err := ReadTable(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
