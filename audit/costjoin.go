package audit

import (
	"auditoria-ml/models"
	"auditoria-ml/utils"
)

// JoinCosts left-joins the external per-SKU unit-cost table onto the rows and
// recomputes the cost-dependent profitability fields. A missing SKU means
// "cost unknown, assume break-even on product cost", never an error.
// Returns whether cost data was present at all.
func JoinCosts(rows []models.OrderLine, costs []models.CostRecord) bool {
	if len(costs) == 0 {
		return false
	}

	costMap := make(map[string]float64, len(costs))
	for _, c := range costs {
		if sku := utils.CleanSKU(c.SKU); sku != "" {
			costMap[sku] = c.UnitCost
		}
	}

	for i := range rows {
		r := &rows[i]
		if r.IsBundleParent() {
			continue
		}

		count := r.UnitCount
		if count <= 0 {
			count = 1
		}

		r.UnitProductCost = lookupCost(r.SKU, costMap)
		r.TotalProductCost = utils.Round2(r.UnitProductCost * float64(count))
		r.FinalProfit = utils.Round2(r.NetProfit - r.TotalProductCost)
		r.FinalMarginPct = utils.Pct(r.FinalProfit, r.GrossSaleValue)
		r.MarkupPct = utils.Pct(r.FinalProfit, r.TotalProductCost)
	}

	return true
}

// lookupCost resolves a SKU to its unit cost. Direct hit first; composite
// SKUs that miss fall back to summing their constituent parts, retrying each
// part with leading zeros stripped (older cost sheets padded numeric SKUs).
func lookupCost(sku string, costMap map[string]float64) float64 {
	if sku == "" {
		return 0
	}
	if c, ok := costMap[sku]; ok {
		return utils.Round2(c)
	}

	parts := utils.SplitSKU(sku)
	if len(parts) <= 1 {
		return 0
	}
	total := 0.0
	for _, p := range parts {
		c, ok := costMap[p]
		if !ok {
			c = costMap[utils.StripLeadingZeros(p)]
		}
		total += c
	}
	return utils.Round2(total)
}
