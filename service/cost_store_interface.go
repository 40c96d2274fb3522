package service

import (
	"context"

	"auditoria-ml/models"
)

// CostStore abstracts the external per-SKU cost table so controllers can be
// tested without a live spreadsheet.
type CostStore interface {
	// Load reads the whole cost table. Returned warnings carry data-quality
	// signals (rescaled values, skipped rows) without failing the load.
	Load(ctx context.Context, rescaleSuspect bool) ([]models.CostRecord, []string, error)
	// Save replaces the whole cost table (clear-then-write).
	Save(ctx context.Context, costs []models.CostRecord) error
}
