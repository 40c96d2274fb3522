package repository

import (
	"context"

	"auditoria-ml/models"
)

// CostRepositoryInterface defines the contract for the local cost snapshot
type CostRepositoryInterface interface {
	EnsureSchema(ctx context.Context) error
	ReplaceAll(ctx context.Context, costs []models.CostRecord) error
	GetAll(ctx context.Context) ([]models.CostRecord, error)
}
