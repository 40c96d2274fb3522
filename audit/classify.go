package audit

import (
	"math"

	"auditoria-ml/models"
	"auditoria-ml/utils"
)

// cancellationTolerance is the allowed residue, in BRL, when checking whether
// a zero-payout sale balances out as a correct cancellation.
const cancellationTolerance = 0.1

// ClassifyRows assigns the terminal status of every row. Bundle parents keep
// the control-only status set at finalization regardless of their raw fields.
func ClassifyRows(cfg models.Config, rows []models.OrderLine) {
	for i := range rows {
		r := &rows[i]
		if r.IsBundleParent() {
			r.Status = models.StatusBundleParent
			continue
		}

		cancelResidue := r.GrossSaleValue - (r.TotalFee + r.ShippingFee + r.RefundAmount)
		switch {
		case math.Abs(r.NetReceivedValue) <= cancellationTolerance && math.Abs(cancelResidue) <= cancellationTolerance:
			r.Status = models.StatusCancellation
		case r.PctDifference > cfg.MarginLimitPct:
			r.Status = models.StatusOverMargin
		default:
			r.Status = models.StatusNormal
		}
	}
}

// Summarize computes the corpus-level statistics over rows excluding correct
// cancellations and bundle parents, plus the most-problematic-SKU report.
// With cost data loaded the profit figures use the final (net of product
// cost) chain, otherwise the net chain.
func Summarize(cfg models.Config, rows []models.OrderLine, costLoaded bool) (models.Summary, *models.CriticalSKUReport) {
	s := models.Summary{CostDataLoaded: costLoaded, FeeRuleSet: cfg.FeeRuleSet}

	marginSum := 0.0
	marginCount := 0
	for i := range rows {
		r := &rows[i]
		if r.IsBundleParent() {
			continue
		}
		s.TotalRows++
		switch r.Status {
		case models.StatusOverMargin:
			s.OverMargin++
		case models.StatusCancellation:
			s.CorrectCancellations++
			continue
		}

		profit := r.NetProfit
		margin := r.NetMarginPct
		if costLoaded {
			profit = r.FinalProfit
			margin = r.FinalMarginPct
		}
		s.TotalProfit += profit
		if profit < 0 {
			s.TotalLoss -= profit
		}
		marginSum += margin
		marginCount++
		s.TotalRevenue += r.GrossSaleValue
	}

	s.TotalProfit = utils.Round2(s.TotalProfit)
	s.TotalLoss = utils.Round2(s.TotalLoss)
	s.TotalRevenue = utils.Round2(s.TotalRevenue)
	if marginCount > 0 {
		s.MeanMarginPct = utils.Round2(marginSum / float64(marginCount))
	}

	return s, criticalSKU(rows)
}

type productKey struct {
	sku     string
	listing string
	title   string
}

func (k productKey) less(o productKey) bool {
	if k.sku != o.sku {
		return k.sku < o.sku
	}
	if k.listing != o.listing {
		return k.listing < o.listing
	}
	return k.title < o.title
}

// criticalSKU groups over-margin rows by (SKU, listing, title), ranks by
// occurrence count and surfaces the top entry. Ties break on the key so the
// output is deterministic. Nil when no row is over margin.
func criticalSKU(rows []models.OrderLine) *models.CriticalSKUReport {
	counts := make(map[productKey]int)
	for i := range rows {
		if rows[i].Status != models.StatusOverMargin {
			continue
		}
		counts[productKey{rows[i].SKU, rows[i].ListingID, rows[i].Title}]++
	}
	if len(counts) == 0 {
		return nil
	}

	var best productKey
	bestN := -1
	for k, n := range counts {
		if n > bestN || (n == bestN && k.less(best)) {
			best, bestN = k, n
		}
	}

	rep := &models.CriticalSKUReport{
		SKU:         best.sku,
		ListingID:   best.listing,
		Title:       best.title,
		Occurrences: bestN,
	}
	for i := range rows {
		r := rows[i]
		if r.Status != models.StatusOverMargin {
			continue
		}
		if r.SKU != best.sku || r.ListingID != best.listing || r.Title != best.title {
			continue
		}
		if rep.Example == nil {
			example := r
			rep.Example = &example
		}
		rep.AffectedRows = append(rep.AffectedRows, r)
	}
	return rep
}
