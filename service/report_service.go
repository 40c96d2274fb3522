package service

import (
	"fmt"
	"log"

	"auditoria-ml/models"

	"github.com/xuri/excelize/v2"
)

const (
	auditSheetName   = "Auditoria"
	summarySheetName = "Resumo"
)

// reportColumn describes one column of the exported audit sheet. Columns with
// a comment get it attached to the header cell so the operator can see how
// each derived value was produced.
type reportColumn struct {
	header  string
	comment string
}

var reportColumns = []reportColumn{
	{"Venda", ""},
	{"Data", ""},
	{"Estado", ""},
	{"Produto", ""},
	{"SKU", ""},
	{"Anúncio", ""},
	{"Tipo de Anúncio", ""},
	{"Unidades", "Quantidade de unidades da linha; 1 quando o export não traz a coluna."},
	{"Preço Unitário", ""},
	{"Valor da Venda", "Receita por produtos reportada; em pacotes, rateada por proporção de preço."},
	{"Valor Recebido", "Total reportado; em pacotes, rateado por proporção de preço."},
	{"Receita de Envio", ""},
	{"Tarifa (%)", "12% para anúncio clássico, 17% para premium."},
	{"Tarifa Fixa", "Tabela por faixa de preço unitário do conjunto de regras configurado."},
	{"Tarifa Total", "Valor do item × tarifa % + tarifa fixa × unidades."},
	{"Tarifa de Envio", "Em pacotes, rateada por proporção de unidades."},
	{"Cancelamentos", ""},
	{"Pacote", "Origem do rateio: <venda>-BUNDLE para itens de pacote."},
	{"Custo Embalagem", "Custo fixo configurado; em pacotes, dividido igualmente entre os itens."},
	{"Custo Fiscal", "Valor da venda × alíquota configurada."},
	{"Lucro Bruto", "Valor da venda + receita de envio − tarifa total − tarifa de envio."},
	{"Lucro Real", "Lucro bruto − embalagem − custo fiscal."},
	{"Margem Líquida (%)", "Lucro real ÷ valor da venda × 100."},
	{"Custo Produto", "Custo unitário da planilha de custos; 0 quando o SKU não tem custo cadastrado."},
	{"Custo Produto Total", "Custo unitário × unidades."},
	{"Lucro Líquido", "Lucro real − custo do produto."},
	{"Margem Final (%)", "Lucro líquido ÷ valor da venda × 100."},
	{"Markup (%)", "Lucro líquido ÷ custo do produto × 100; 0 sem custo."},
	{"Diferença (R$)", "Valor da venda − valor recebido."},
	{"%Diferença", "(1 − valor recebido ÷ valor da venda) × 100."},
	{"Status", ""},
}

// ReportService renders an audit run as a downloadable xlsx workbook.
type ReportService struct{}

// NewReportService creates a new ReportService
func NewReportService() *ReportService {
	return &ReportService{}
}

// Build renders the full report: one "Auditoria" sheet with every audited row
// (formulas on the profit columns so the numbers are re-derivable in the
// spreadsheet itself) and a "Resumo" sheet with the run statistics. Returns
// the workbook and a deterministic filename carrying the detected period or
// the run timestamp.
func (s *ReportService) Build(result *models.AuditResult) (*excelize.File, string, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", auditSheetName)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, "", fmt.Errorf("falha ao criar estilo de cabeçalho: %w", err)
	}
	overMarginStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})
	if err != nil {
		return nil, "", err
	}
	cancellationStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"BDD7EE"}, Pattern: 1},
	})
	if err != nil {
		return nil, "", err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(reportColumns))

	for i, col := range reportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(auditSheetName, cell, col.header); err != nil {
			return nil, "", err
		}
		if col.comment != "" {
			_ = f.AddComment(auditSheetName, excelize.Comment{
				Cell:      cell,
				Author:    "Auditoria ML",
				Paragraph: []excelize.RichTextRun{{Text: col.comment}},
			})
		}
	}
	f.SetCellStyle(auditSheetName, "A1", lastCol+"1", headerStyle)

	for i := range result.Rows {
		rowNum := i + 2
		r := &result.Rows[i]
		if err := s.writeRow(f, rowNum, r); err != nil {
			return nil, "", err
		}
		switch r.Status {
		case models.StatusOverMargin:
			f.SetCellStyle(auditSheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("%s%d", lastCol, rowNum), overMarginStyle)
		case models.StatusCancellation:
			f.SetCellStyle(auditSheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("%s%d", lastCol, rowNum), cancellationStyle)
		}
	}

	_ = f.SetColWidth(auditSheetName, "A", lastCol, 16)
	_ = f.SetPanes(auditSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if err := s.writeSummary(f, result); err != nil {
		return nil, "", err
	}

	name := reportFilename(result)
	log.Printf("📊 ReportService: relatório gerado com %d linha(s): %s", len(result.Rows), name)
	return f, name, nil
}

func (s *ReportService) writeRow(f *excelize.File, rowNum int, r *models.OrderLine) error {
	date := r.RawDate
	if !r.Date.IsZero() {
		date = r.Date.Format("02/01/2006 15:04")
	}

	values := []interface{}{
		r.OrderID, date, r.State, r.Title, r.SKU, r.ListingID, r.AdType,
		r.UnitCount, r.UnitPrice, r.GrossSaleValue, r.NetReceivedValue,
		r.ShippingRevenue, r.FeePercent, r.FixedFee, r.TotalFee,
		r.ShippingFee, r.RefundAmount, r.BundleOrigin, r.PackagingCost,
		r.TaxCost, r.GrossProfit, r.NetProfit, r.NetMarginPct,
		r.UnitProductCost, r.TotalProductCost, r.FinalProfit,
		r.FinalMarginPct, r.MarkupPct, r.DifferenceValue, r.PctDifference,
		r.Status,
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
		if err := f.SetCellValue(auditSheetName, cell, v); err != nil {
			return err
		}
	}

	// Re-derivable formulas on the profit columns; the computed values stay
	// cached so the cells read correctly without a recalculation. Bundle
	// parents keep plain zeros.
	if r.IsBundleParent() {
		return nil
	}
	grossCol := columnOf("Valor da Venda")
	shipRevCol := columnOf("Receita de Envio")
	feeCol := columnOf("Tarifa Total")
	shipFeeCol := columnOf("Tarifa de Envio")
	packCol := columnOf("Custo Embalagem")
	taxCol := columnOf("Custo Fiscal")
	grossProfitCol := columnOf("Lucro Bruto")
	netProfitCol := columnOf("Lucro Real")

	_ = f.SetCellFormula(auditSheetName, fmt.Sprintf("%s%d", grossProfitCol, rowNum),
		fmt.Sprintf("%s%d+%s%d-%s%d-%s%d", grossCol, rowNum, shipRevCol, rowNum, feeCol, rowNum, shipFeeCol, rowNum))
	_ = f.SetCellFormula(auditSheetName, fmt.Sprintf("%s%d", netProfitCol, rowNum),
		fmt.Sprintf("%s%d-%s%d-%s%d", grossProfitCol, rowNum, packCol, rowNum, taxCol, rowNum))
	return nil
}

func (s *ReportService) writeSummary(f *excelize.File, result *models.AuditResult) error {
	if _, err := f.NewSheet(summarySheetName); err != nil {
		return err
	}

	sum := result.Summary
	profitLabel := "Lucro Total (líquido)"
	if !sum.CostDataLoaded {
		profitLabel = "Lucro Total (sem custo de produto)"
	}
	period := "não identificado"
	if sum.PeriodStart != "" {
		period = fmt.Sprintf("%s → %s", sum.PeriodStart, sum.PeriodEnd)
	}

	lines := [][2]interface{}{
		{"Período de vendas", period},
		{"Total de vendas", sum.TotalRows},
		{"Fora da margem", sum.OverMargin},
		{"Cancelamentos corretos", sum.CorrectCancellations},
		{profitLabel, sum.TotalProfit},
		{"Prejuízo total", sum.TotalLoss},
		{"Margem média (%)", sum.MeanMarginPct},
		{"Receita total", sum.TotalRevenue},
		{"Conjunto de regras de tarifa fixa", sum.FeeRuleSet},
		{"Margem limite (%)", result.Config.MarginLimitPct},
		{"Custo de embalagem", result.Config.PackagingCost},
		{"Custo fiscal (%)", result.Config.TaxRatePct},
	}
	for i, l := range lines {
		_ = f.SetCellValue(summarySheetName, fmt.Sprintf("A%d", i+1), l[0])
		_ = f.SetCellValue(summarySheetName, fmt.Sprintf("B%d", i+1), l[1])
	}

	if result.Critical != nil {
		base := len(lines) + 2
		_ = f.SetCellValue(summarySheetName, fmt.Sprintf("A%d", base), "Produto com mais vendas fora da margem")
		_ = f.SetCellValue(summarySheetName, fmt.Sprintf("A%d", base+1), "SKU")
		_ = f.SetCellValue(summarySheetName, fmt.Sprintf("B%d", base+1), result.Critical.SKU)
		_ = f.SetCellValue(summarySheetName, fmt.Sprintf("A%d", base+2), "Anúncio")
		_ = f.SetCellValue(summarySheetName, fmt.Sprintf("B%d", base+2), result.Critical.ListingID)
		_ = f.SetCellValue(summarySheetName, fmt.Sprintf("A%d", base+3), "Produto")
		_ = f.SetCellValue(summarySheetName, fmt.Sprintf("B%d", base+3), result.Critical.Title)
		_ = f.SetCellValue(summarySheetName, fmt.Sprintf("A%d", base+4), "Ocorrências")
		_ = f.SetCellValue(summarySheetName, fmt.Sprintf("B%d", base+4), result.Critical.Occurrences)
	}

	_ = f.SetColWidth(summarySheetName, "A", "A", 36)
	_ = f.SetColWidth(summarySheetName, "B", "B", 24)
	return nil
}

// columnOf resolves a report header to its spreadsheet column letter.
func columnOf(header string) string {
	for i, col := range reportColumns {
		if col.header == header {
			name, _ := excelize.ColumnNumberToName(i + 1)
			return name
		}
	}
	return "A"
}

// reportFilename builds a deterministic name from the detected sales period,
// falling back to the run timestamp.
func reportFilename(result *models.AuditResult) string {
	if !result.PeriodStart.IsZero() {
		return fmt.Sprintf("Auditoria_ML_%s_a_%s.xlsx",
			result.PeriodStart.Format("02-01-2006"),
			result.PeriodEnd.Format("02-01-2006"))
	}
	return fmt.Sprintf("Auditoria_ML_%s.xlsx", result.CreatedAt.Format("02-01-2006_15-04-05"))
}
