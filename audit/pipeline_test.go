package audit

import (
	"testing"

	"auditoria-ml/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Full pipeline over a small export: one plain sale, one bundle of two, one
// correct cancellation.
func TestRun(t *testing.T) {
	table := &RawTable{
		Headers: exportHeaders,
		Cells: [][]string{
			exportRow("1001", "10 de março de 2024", "Entregue", "1", "123", "MLB1", "Coleira", "Clássico",
				"100,00", "100,00", "0,00", "18,75", "0,00", "0,00", "80,00"),
			exportRow("1002", "12 de março de 2024", "Pacote de 2 produtos", "1", "", "", "", "",
				"", "150,00", "0,00", "31,00", "10,00", "0,00", "120,00"),
			exportRow("1002", "12 de março de 2024", "Entregue", "1", "111", "MLB2", "Produto A", "Clássico",
				"50,00", "", "", "", "", "", ""),
			exportRow("1002", "12 de março de 2024", "Entregue", "1", "222", "MLB3", "Produto B", "Clássico",
				"100,00", "", "", "", "", "", ""),
			// Derived fee at price 50 is 12.75; refund balances the gross out.
			exportRow("1003", "15 de março de 2024", "Cancelada", "1", "123", "MLB1", "Coleira", "Clássico",
				"50,00", "100,00", "0,00", "12,75", "10,00", "77,25", "0,00"),
		},
	}
	costs := []models.CostRecord{
		{SKU: "123", UnitCost: 30},
		{SKU: "111", UnitCost: 10},
		{SKU: "222", UnitCost: 20},
	}

	result, err := Run(models.DefaultConfig(), table, costs)
	require.NoError(t, err)
	require.Len(t, result.Rows, 5)

	plain := result.Rows[0]
	assert.Equal(t, models.StatusNormal, plain.Status)
	assert.Equal(t, 18.75, plain.TotalFee)
	assert.Equal(t, 68.25, plain.NetProfit)
	assert.Equal(t, 38.25, plain.FinalProfit) // 68.25 - 30

	parent := result.Rows[1]
	assert.Equal(t, models.StatusBundleParent, parent.Status)
	assert.True(t, parent.FeeCheckOK)

	childA, childB := result.Rows[2], result.Rows[3]
	assert.Equal(t, 50.0, childA.GrossSaleValue)
	assert.Equal(t, 100.0, childB.GrossSaleValue)
	assert.Equal(t, "1002-BUNDLE", childA.BundleOrigin)
	assert.Equal(t, 10.0, childA.UnitProductCost)
	assert.Equal(t, 20.0, childB.UnitProductCost)

	cancelled := result.Rows[4]
	assert.Equal(t, models.StatusCancellation, cancelled.Status)

	sum := result.Summary
	assert.Equal(t, 4, sum.TotalRows)
	assert.Equal(t, 1, sum.CorrectCancellations)
	assert.True(t, sum.CostDataLoaded)
	assert.Equal(t, "10/03/2024", sum.PeriodStart)
	assert.Equal(t, "15/03/2024", sum.PeriodEnd)
}

func TestRunEmptyTable(t *testing.T) {
	_, err := Run(models.DefaultConfig(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vazia")

	_, err = Run(models.DefaultConfig(), &RawTable{}, nil)
	require.Error(t, err)
}

func TestRunDefaultsFeeRuleSet(t *testing.T) {
	table := &RawTable{
		Headers: exportHeaders,
		Cells: [][]string{
			exportRow("1", "1 de maio de 2024", "Entregue", "1", "123", "", "", "Clássico",
				"100,00", "100,00", "", "", "", "", "80,00"),
		},
	}

	cfg := models.DefaultConfig()
	cfg.FeeRuleSet = ""
	result, err := Run(cfg, table, nil)
	require.NoError(t, err)
	assert.Equal(t, models.FeeRuleSet2024, result.Summary.FeeRuleSet)
	assert.Equal(t, 18.75, result.Rows[0].TotalFee)
}

func TestRunWithoutCosts(t *testing.T) {
	table := &RawTable{
		Headers: exportHeaders,
		Cells: [][]string{
			exportRow("1", "1 de maio de 2024", "Entregue", "1", "123", "", "", "Clássico",
				"100,00", "100,00", "", "", "", "", "80,00"),
		},
	}

	result, err := Run(models.DefaultConfig(), table, nil)
	require.NoError(t, err)
	assert.False(t, result.Summary.CostDataLoaded)
	// Final chain mirrors the net chain without cost data.
	assert.Equal(t, result.Rows[0].NetProfit, result.Rows[0].FinalProfit)
}

// Running the pipeline twice over the same input yields identical row-level
// results.
func TestRunDeterministic(t *testing.T) {
	table := &RawTable{
		Headers: exportHeaders,
		Cells: [][]string{
			exportRow("1002", "12 de março de 2024", "Pacote de 2 produtos", "1", "", "", "", "",
				"", "150,00", "0,00", "31,00", "10,00", "0,00", "120,00"),
			exportRow("1002", "12 de março de 2024", "Entregue", "1", "111", "MLB2", "Produto A", "Clássico",
				"50,00", "", "", "", "", "", ""),
			exportRow("1002", "12 de março de 2024", "Entregue", "1", "222", "MLB3", "Produto B", "Clássico",
				"100,00", "", "", "", "", "", ""),
		},
	}

	first, err := Run(models.DefaultConfig(), table, nil)
	require.NoError(t, err)
	second, err := Run(models.DefaultConfig(), table, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, first.Summary, second.Summary)
}
