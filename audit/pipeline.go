// Package audit implements the sales audit pipeline: column normalization,
// bundle detection and fee/revenue reallocation, profitability computation,
// the external cost join and per-row classification. Everything here is a
// pure, synchronous transformation of one working table; I/O lives in the
// service layer.
package audit

import (
	"fmt"
	"time"

	"auditoria-ml/models"
)

// Run executes the full pipeline over a raw sales table with the given
// configuration and cost table. Row-level problems degrade with safe
// defaults and accumulate as warnings; only a structurally unusable table
// fails the run.
func Run(cfg models.Config, table *RawTable, costs []models.CostRecord) (*models.AuditResult, error) {
	if table == nil || len(table.Headers) == 0 {
		return nil, fmt.Errorf("tabela de vendas vazia ou sem cabeçalho")
	}
	if cfg.FeeRuleSet == "" {
		cfg.FeeRuleSet = models.FeeRuleSet2024
	}

	rows, warnings := Normalize(table)
	warnings = append(warnings, ReallocateBundles(cfg, rows)...)
	ComputeItemFees(cfg, rows)
	ComputeProfitability(cfg, rows)
	costLoaded := JoinCosts(rows, costs)
	ClassifyRows(cfg, rows)
	summary, critical := Summarize(cfg, rows, costLoaded)

	result := &models.AuditResult{
		CreatedAt: time.Now(),
		Config:    cfg,
		Rows:      rows,
		Summary:   summary,
		Critical:  critical,
		Warnings:  warnings,
	}
	if start, end, ok := periodRange(rows); ok {
		result.PeriodStart = start
		result.PeriodEnd = end
		result.Summary.PeriodStart = start.Format("02/01/2006")
		result.Summary.PeriodEnd = end.Format("02/01/2006")
	}
	return result, nil
}

// periodRange returns the min and max parseable sale dates. Rows whose date
// failed to parse are retained elsewhere but excluded here.
func periodRange(rows []models.OrderLine) (time.Time, time.Time, bool) {
	var start, end time.Time
	for i := range rows {
		d := rows[i].Date
		if d.IsZero() {
			continue
		}
		if start.IsZero() || d.Before(start) {
			start = d
		}
		if end.IsZero() || d.After(end) {
			end = d
		}
	}
	return start, end, !start.IsZero()
}
