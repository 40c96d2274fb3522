package audit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"auditoria-ml/models"
	"auditoria-ml/utils"
)

// RawTable is the uncoerced sheet contents: the header row and the cell grid
// below it, exactly as read from the upload.
type RawTable struct {
	Headers []string
	Cells   [][]string
}

// headerAliases maps the marketplace export phrasing to canonical field names.
// Unmapped columns pass through untouched (they are simply not read).
var headerAliases = map[string]string{
	"N.º de venda":                             "orderId",
	"Data da venda":                            "date",
	"Estado":                                   "state",
	"Receita por produtos (BRL)":               "grossSaleValue",
	"Receita por envio (BRL)":                  "shippingRevenue",
	"Total (BRL)":                              "netReceivedValue",
	"Tarifa de venda e impostos (BRL)":         "marketplaceFee",
	"Tarifas de envio (BRL)":                   "shippingFee",
	"Cancelamentos e reembolsos (BRL)":         "refundAmount",
	"Preço unitário de venda do anúncio (BRL)": "unitPrice",
	"SKU":                                      "sku",
	"# de anúncio":                             "listingId",
	"Título do anúncio":                        "title",
	"Tipo de anúncio":                          "adType",
}

// unitCountCandidates is the priority-ordered list of quantity column names
// seen across export revisions.
var unitCountCandidates = []string{"Unidades", "Quantidade", "Qtde", "Qtd"}

var (
	spaceRun = regexp.MustCompile(`\s+`)
	digitRun = regexp.MustCompile(`\d+`)
)

func canonicalHeader(h string) string {
	return spaceRun.ReplaceAllString(strings.TrimSpace(h), " ")
}

// Normalize maps export headers to canonical fields and coerces every cell
// into a typed OrderLine. Malformed numeric cells become 0, unparseable dates
// stay zero-valued; a bad row never aborts the run.
func Normalize(t *RawTable) ([]models.OrderLine, []string) {
	var warnings []string

	cols := make(map[string]int, len(headerAliases))
	for i, h := range t.Headers {
		if canon, ok := headerAliases[canonicalHeader(h)]; ok {
			cols[canon] = i
		}
	}

	unitsCol := -1
	for _, cand := range unitCountCandidates {
		for i, h := range t.Headers {
			if canonicalHeader(h) == cand {
				unitsCol = i
				break
			}
		}
		if unitsCol >= 0 {
			break
		}
	}
	if unitsCol < 0 {
		warnings = append(warnings, "nenhuma coluna de unidades encontrada; assumindo 1 unidade por linha")
	}

	cell := func(row []string, key string) string {
		idx, ok := cols[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	rows := make([]models.OrderLine, 0, len(t.Cells))
	for _, rc := range t.Cells {
		line := models.OrderLine{
			OrderID:          utils.CleanOrderID(cell(rc, "orderId")),
			RawDate:          strings.TrimSpace(cell(rc, "date")),
			State:            strings.TrimSpace(cell(rc, "state")),
			SKU:              utils.CleanSKU(cell(rc, "sku")),
			ListingID:        strings.TrimSpace(cell(rc, "listingId")),
			Title:            strings.TrimSpace(cell(rc, "title")),
			AdType:           strings.TrimSpace(cell(rc, "adType")),
			UnitPrice:        utils.ParseBRL(cell(rc, "unitPrice")),
			GrossSaleValue:   utils.ParseBRL(cell(rc, "grossSaleValue")),
			NetReceivedValue: utils.ParseBRL(cell(rc, "netReceivedValue")),
			ShippingRevenue:  utils.ParseBRL(cell(rc, "shippingRevenue")),
			MarketplaceFee:   utils.ParseBRL(cell(rc, "marketplaceFee")),
			ShippingFee:      utils.ParseBRL(cell(rc, "shippingFee")),
			RefundAmount:     utils.ParseBRL(cell(rc, "refundAmount")),
			UnitCount:        1,
		}
		if unitsCol >= 0 && unitsCol < len(rc) {
			line.UnitCount = parseUnitCount(rc[unitsCol])
		}
		if d, ok := ParsePortugueseDate(line.RawDate); ok {
			line.Date = d
		}
		rows = append(rows, line)
	}

	if len(rows) == 0 {
		warnings = append(warnings, "planilha sem linhas de venda")
	} else {
		withDate := 0
		for i := range rows {
			if !rows[i].Date.IsZero() {
				withDate++
			}
		}
		if withDate < len(rows) {
			warnings = append(warnings, fmt.Sprintf("%d linha(s) com data não reconhecida; fora do cálculo de período", len(rows)-withDate))
		}
	}

	return rows, warnings
}

// parseUnitCount extracts the first run of digits from a quantity cell.
// Empty and dash-like placeholders mean a single unit.
func parseUnitCount(raw string) int {
	s := strings.TrimSpace(raw)
	switch s {
	case "", "-", "–", "—", "nan":
		return 1
	}
	if m := digitRun.FindString(s); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
