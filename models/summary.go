package models

import "time"

// Summary holds corpus-level statistics for one audit run. All profit figures
// exclude correct cancellations and bundle parent rows.
type Summary struct {
	TotalRows            int     `json:"totalRows"`
	OverMargin           int     `json:"overMargin"`
	CorrectCancellations int     `json:"correctCancellations"`
	TotalProfit          float64 `json:"totalProfit"`
	TotalLoss            float64 `json:"totalLoss"`
	MeanMarginPct        float64 `json:"meanMarginPct"`
	TotalRevenue         float64 `json:"totalRevenue"`
	CostDataLoaded       bool    `json:"costDataLoaded"`
	FeeRuleSet           string  `json:"feeRuleSet"`
	PeriodStart          string  `json:"periodStart,omitempty"`
	PeriodEnd            string  `json:"periodEnd,omitempty"`
}

// CriticalSKUReport surfaces the product with the most over-margin sales.
type CriticalSKUReport struct {
	SKU          string      `json:"sku"`
	ListingID    string      `json:"listingId,omitempty"`
	Title        string      `json:"title,omitempty"`
	Occurrences  int         `json:"occurrences"`
	Example      *OrderLine  `json:"example,omitempty"`
	AffectedRows []OrderLine `json:"affectedRows"`
}

// AuditResult is the outcome of one full pipeline pass.
type AuditResult struct {
	RunID       string             `json:"runId"`
	CreatedAt   time.Time          `json:"createdAt"`
	Config      Config             `json:"config"`
	Rows        []OrderLine        `json:"rows"`
	Summary     Summary            `json:"summary"`
	Critical    *CriticalSKUReport `json:"critical,omitempty"`
	Warnings    []string           `json:"warnings"`
	PeriodStart time.Time          `json:"-"`
	PeriodEnd   time.Time          `json:"-"`
}

// AuditRunResponse is the response for an audit upload or run lookup.
// Example response:
// {
//   "runId": "8c2f8e4e-...",
//   "summary": {"totalRows": 120, "overMargin": 7, ...},
//   "warnings": ["pacote na venda 2000001 incompleto: esperava 3 itens, restam 1"]
// }
type AuditRunResponse struct {
	RunID    string             `json:"runId"`
	Summary  Summary            `json:"summary"`
	Critical *CriticalSKUReport `json:"critical,omitempty"`
	Warnings []string           `json:"warnings"`
}

// AuditRowsResponse is the response for listing audited rows of a run.
type AuditRowsResponse struct {
	RunID string      `json:"runId"`
	Rows  []OrderLine `json:"rows"`
}
