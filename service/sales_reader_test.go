package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildSalesWorkbook writes an in-memory export: boilerplate rows above the
// header, the header at row 6, then data rows.
func buildSalesWorkbook(t *testing.T, sheet string, headers []string, rows [][]string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Relatório de vendas"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Conta: loja-teste"))

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRowNumber)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for rIdx, row := range rows {
		for cIdx, v := range row {
			cell, err := excelize.CoordinatesToCellName(cIdx+1, headerRowNumber+1+rIdx)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestSalesReaderRead(t *testing.T) {
	headers := []string{"N.º de venda", "SKU", "Total (BRL)"}
	buf := buildSalesWorkbook(t, salesSheetName, headers, [][]string{
		{"1001", "123", "80,00"},
		{"1002", "456", "120,00"},
	})

	table, err := NewSalesReader().Read(buf)
	require.NoError(t, err)
	assert.Equal(t, headers, table.Headers)
	require.Len(t, table.Cells, 2)
	assert.Equal(t, "1001", table.Cells[0][0])
	assert.Equal(t, "120,00", table.Cells[1][2])
}

func TestSalesReaderSkipsEmptyRows(t *testing.T) {
	buf := buildSalesWorkbook(t, salesSheetName, []string{"N.º de venda"}, [][]string{
		{"1001"},
		{""},
		{"1002"},
	})

	table, err := NewSalesReader().Read(buf)
	require.NoError(t, err)
	assert.Len(t, table.Cells, 2)
}

func TestSalesReaderWrongSheetName(t *testing.T) {
	buf := buildSalesWorkbook(t, "Planilha Errada", []string{"N.º de venda"}, nil)

	_, err := NewSalesReader().Read(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), salesSheetName)
}

func TestSalesReaderMissingHeaderRow(t *testing.T) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", salesSheetName)
	require.NoError(t, f.SetCellValue(salesSheetName, "A1", "só boilerplate"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := NewSalesReader().Read(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cabeçalho")
}

func TestSalesReaderNotAnXlsx(t *testing.T) {
	_, err := NewSalesReader().Read(strings.NewReader("isto não é uma planilha"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx")
}

func TestIsEmptyRow(t *testing.T) {
	assert.True(t, isEmptyRow(nil))
	assert.True(t, isEmptyRow([]string{"", "  ", "\t"}))
	assert.False(t, isEmptyRow([]string{"", "x"}))
}
