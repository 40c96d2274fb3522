package audit

import (
	"auditoria-ml/models"
	"auditoria-ml/utils"
)

// ComputeProfitability derives the profit and margin chain for every row.
// Every currency and percentage output is rounded to 2 decimals at this
// stage so later sums are stable and reproducible. Bundle parents are zeroed
// and kept for control only.
func ComputeProfitability(cfg models.Config, rows []models.OrderLine) {
	for i := range rows {
		r := &rows[i]

		if r.IsBundleParent() {
			r.TaxCost = 0
			r.GrossProfit = 0
			r.NetProfit = 0
			r.NetMarginPct = 0
			r.FinalProfit = 0
			r.FinalMarginPct = 0
			r.MarkupPct = 0
			r.DifferenceValue = 0
			r.PctDifference = 0
			continue
		}

		// Bundle children already carry their split of the packaging cost.
		if !r.IsBundleChild() {
			r.PackagingCost = utils.Round2(cfg.PackagingCost)
		}

		r.TaxCost = utils.Round2(r.GrossSaleValue * cfg.TaxRatePct / 100)
		r.GrossProfit = utils.Round2(r.GrossSaleValue + r.ShippingRevenue - r.TotalFee - r.ShippingFee)
		r.NetProfit = utils.Round2(r.GrossProfit - r.PackagingCost - r.TaxCost)
		r.NetMarginPct = utils.Pct(r.NetProfit, r.GrossSaleValue)

		r.DifferenceValue = utils.Round2(r.GrossSaleValue - r.NetReceivedValue)
		if r.GrossSaleValue == 0 {
			r.PctDifference = 0
		} else {
			r.PctDifference = utils.Round2((1 - r.NetReceivedValue/r.GrossSaleValue) * 100)
		}

		// Without cost data the final chain mirrors the net chain; the cost
		// join recomputes these when a cost table is present.
		r.FinalProfit = r.NetProfit
		r.FinalMarginPct = r.NetMarginPct
		r.MarkupPct = 0
	}
}
