package service

import (
	"fmt"
	"io"
	"log"
	"strings"

	"auditoria-ml/audit"

	"github.com/xuri/excelize/v2"
)

const (
	// The marketplace export always carries the sales table in this sheet,
	// with five rows of account boilerplate above the header.
	salesSheetName  = "Vendas BR"
	headerRowNumber = 6
)

// SalesReader parses the marketplace sales export (.xlsx) into a raw table.
type SalesReader struct{}

// NewSalesReader creates a new SalesReader
func NewSalesReader() *SalesReader {
	return &SalesReader{}
}

// Read opens the uploaded workbook and extracts the raw sales table. A
// missing sheet or header row is an explicit error: no partial table is ever
// produced from a malformed upload.
func (s *SalesReader) Read(r io.Reader) (*audit.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir o arquivo xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(salesSheetName)
	if err != nil {
		return nil, fmt.Errorf("aba %q não encontrada na planilha: %w", salesSheetName, err)
	}
	if len(rows) < headerRowNumber {
		return nil, fmt.Errorf("aba %q não contém a linha de cabeçalho esperada na posição %d", salesSheetName, headerRowNumber)
	}

	headers := rows[headerRowNumber-1]
	if isEmptyRow(headers) {
		return nil, fmt.Errorf("aba %q com cabeçalho vazio na posição %d", salesSheetName, headerRowNumber)
	}

	table := &audit.RawTable{Headers: headers}
	for _, row := range rows[headerRowNumber:] {
		if isEmptyRow(row) {
			continue
		}
		table.Cells = append(table.Cells, row)
	}

	log.Printf("📄 SalesReader: %d linha(s) lidas da aba %q", len(table.Cells), salesSheetName)
	return table, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
