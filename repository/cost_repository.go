package repository

import (
	"context"
	"fmt"
	"log"

	"auditoria-ml/db"
	"auditoria-ml/models"
)

// CostRepository keeps a local snapshot of the external cost sheet so audits
// can fall back to the last known table when the sheet is unreachable. It is
// a best-effort mirror, not the source of truth.
type CostRepository struct{}

// NewCostRepository creates a new CostRepository
func NewCostRepository() *CostRepository {
	return &CostRepository{}
}

// Ensure CostRepository implements CostRepositoryInterface
var _ CostRepositoryInterface = (*CostRepository)(nil)

// EnsureSchema creates the snapshot table if it doesn't exist
func (r *CostRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS product_costs (
			sku TEXT PRIMARY KEY,
			product TEXT NOT NULL DEFAULT '',
			unit_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := db.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create product_costs table: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole snapshot in one transaction, mirroring the
// clear-then-write semantics of the external sheet.
func (r *CostRepository) ReplaceAll(ctx context.Context, costs []models.CostRecord) error {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_costs`); err != nil {
		return fmt.Errorf("failed to clear product_costs: %w", err)
	}

	insert := `
		INSERT INTO product_costs (sku, product, unit_cost, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (sku) DO UPDATE SET product = $2, unit_cost = $3, updated_at = now()
	`
	for _, c := range costs {
		if c.SKU == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, insert, c.SKU, c.Product, c.UnitCost); err != nil {
			return fmt.Errorf("failed to insert cost for SKU %s: %w", c.SKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cost snapshot: %w", err)
	}

	log.Printf("✓ CostRepository: snapshot replaced with %d cost(s)", len(costs))
	return nil
}

// GetAll returns the snapshot ordered by SKU
func (r *CostRepository) GetAll(ctx context.Context) ([]models.CostRecord, error) {
	rows, err := db.DB.QueryContext(ctx, `SELECT sku, product, unit_cost FROM product_costs ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product_costs: %w", err)
	}
	defer rows.Close()

	var costs []models.CostRecord
	for rows.Next() {
		var c models.CostRecord
		if err := rows.Scan(&c.SKU, &c.Product, &c.UnitCost); err != nil {
			return nil, fmt.Errorf("failed to scan cost row: %w", err)
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}
