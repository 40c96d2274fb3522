package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"auditoria-ml/models"
	"auditoria-ml/utils"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// costValueRange covers the whole cost table; the sheet never grows past a
// few hundred SKUs.
const costValueRange = "A1:Z10000"

// costColumnAliases are the cost-column spellings seen across revisions of
// the shared sheet, in priority order.
var costColumnAliases = []string{"CUSTO", "Custo", "Custo_Produto", "CUSTO UNITARIO", "Custo Unitário", "Custo Unitario"}

// CostSheetService reads and writes the per-SKU cost table kept in a shared
// Google Sheet.
type CostSheetService struct {
	client        *sheets.Service
	spreadsheetID string
}

// NewCostSheetService creates a new CostSheetService backed by a Service
// Account. Credentials come from GOOGLE_APPLICATION_CREDENTIALS_JSON (inline
// JSON) or GOOGLE_APPLICATION_CREDENTIALS (file path).
func NewCostSheetService(ctx context.Context, spreadsheetID string) (*CostSheetService, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("COST_SHEET_ID não configurado")
	}

	var credsOpt option.ClientOption
	if credsJSON := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"); credsJSON != "" {
		credsOpt = option.WithCredentialsJSON([]byte(credsJSON))
	} else if credsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsPath != "" {
		credsOpt = option.WithCredentialsFile(credsPath)
	} else {
		return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS ou GOOGLE_APPLICATION_CREDENTIALS_JSON não configurado")
	}

	client, err := sheets.NewService(ctx, credsOpt, option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("falha ao criar o cliente do Google Sheets: %w", err)
	}

	return &CostSheetService{
		client:        client,
		spreadsheetID: spreadsheetID,
	}, nil
}

// Load reads the whole cost table from the first sheet. Values in either
// "1.234,56" or "1234.56" notation are normalized; with rescaleSuspect set,
// values above 999 are divided by 100 (legacy heuristic for misscaled rows)
// and each application is surfaced as a warning.
func (s *CostSheetService) Load(ctx context.Context, rescaleSuspect bool) ([]models.CostRecord, []string, error) {
	resp, err := s.client.Spreadsheets.Values.Get(s.spreadsheetID, costValueRange).Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("falha ao ler a planilha de custos: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil, nil
	}

	headers := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		headers[i] = strings.TrimSpace(fmt.Sprint(v))
	}

	skuCol, costCol, productCol := locateCostColumns(headers)
	if skuCol < 0 || costCol < 0 {
		return nil, nil, fmt.Errorf("planilha de custos sem as colunas SKU e CUSTO")
	}

	var costs []models.CostRecord
	var warnings []string
	for _, row := range resp.Values[1:] {
		sku := strings.TrimSpace(cellString(row, skuCol))
		if sku == "" {
			continue
		}
		cost := utils.ParseBRL(cellString(row, costCol))
		if rescaleSuspect && cost > 999 {
			rescaled := utils.Round2(cost / 100)
			warnings = append(warnings, fmt.Sprintf(
				"custo do SKU %s reescalonado de %.2f para %.2f (heurística /100)", sku, cost, rescaled))
			cost = rescaled
		}
		rec := models.CostRecord{SKU: sku, UnitCost: cost}
		if productCol >= 0 {
			rec.Product = strings.TrimSpace(cellString(row, productCol))
		}
		costs = append(costs, rec)
	}

	log.Printf("💰 CostSheetService: %d custo(s) carregados da planilha", len(costs))
	return costs, warnings, nil
}

// Save replaces the whole cost table: clear first, then write header and
// rows. Two sessions saving concurrently race destructively, a known hazard
// of the shared sheet inherited from the legacy tooling.
func (s *CostSheetService) Save(ctx context.Context, costs []models.CostRecord) error {
	if _, err := s.client.Spreadsheets.Values.Clear(s.spreadsheetID, costValueRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("falha ao limpar a planilha de custos: %w", err)
	}

	values := [][]interface{}{{"SKU", "Produto", "Custo_Produto"}}
	for _, c := range costs {
		values = append(values, []interface{}{c.SKU, c.Product, c.UnitCost})
	}
	vr := &sheets.ValueRange{Values: values}
	if _, err := s.client.Spreadsheets.Values.Update(s.spreadsheetID, "A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("falha ao gravar a planilha de custos: %w", err)
	}

	log.Printf("💾 CostSheetService: %d custo(s) gravados na planilha", len(costs))
	return nil
}

// locateCostColumns finds the SKU, cost and optional product columns among
// the tolerated header spellings.
func locateCostColumns(headers []string) (skuCol, costCol, productCol int) {
	skuCol, costCol, productCol = -1, -1, -1
	for i, h := range headers {
		if strings.EqualFold(h, "SKU") && skuCol < 0 {
			skuCol = i
		}
		if strings.EqualFold(h, "PRODUTO") && productCol < 0 {
			productCol = i
		}
	}
	for _, alias := range costColumnAliases {
		for i, h := range headers {
			if h == alias {
				return skuCol, i, productCol
			}
		}
	}
	// Last resort: any header containing "custo", case-insensitive.
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), "custo") {
			return skuCol, i, productCol
		}
	}
	return skuCol, costCol, productCol
}

func cellString(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return fmt.Sprint(row[idx])
}
