package audit

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"auditoria-ml/models"
	"auditoria-ml/utils"
)

// The export reports a multi-item order as one aggregate row whose state text
// reads "Pacote de N produtos", followed by N child rows with partial data.
var bundleStateRe = regexp.MustCompile(`(?i)pacote de\s*(\d+)\s*produtos?`)

// feeCheckTolerance is the allowed gap, in BRL, between the derived child
// fees and the marketplace-reported aggregate before the bundle is flagged.
const feeCheckTolerance = 1.0

type bundleGroup struct {
	parent   int
	children []int
}

// groupBundles builds an explicit parent to children index. Children are the
// N rows immediately following the parent in export order; this is the only
// place that relies on row adjacency, everything downstream works off the
// index. A trailing bundle with fewer rows than declared is skipped with a
// warning and left unprocessed.
func groupBundles(rows []models.OrderLine) ([]bundleGroup, []string) {
	var groups []bundleGroup
	var warnings []string

	for i := 0; i < len(rows); i++ {
		m := bundleStateRe.FindStringSubmatch(rows[i].State)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		if i+n > len(rows)-1 {
			warnings = append(warnings, fmt.Sprintf(
				"pacote na venda %s incompleto: esperava %d itens, restam %d; rateio ignorado",
				rows[i].OrderID, n, len(rows)-1-i))
			continue
		}
		g := bundleGroup{parent: i, children: make([]int, 0, n)}
		for j := i + 1; j <= i+n; j++ {
			g.children = append(g.children, j)
		}
		groups = append(groups, g)
		i += n
	}

	return groups, warnings
}

// ReallocateBundles detects aggregate bundle rows and rewrites parent and
// children commercial fields so per-item profitability is computable:
//   - each child's fee comes from its own unit price and ad type;
//   - the parent's net received value is split by unit-price proportion;
//   - the parent's shipping fee is split by unit-count proportion;
//   - the packaging cost is split evenly by child count.
//
// The last child takes the remainder of each split so the parent aggregate is
// conserved exactly. When every child price is zero the split degrades to an
// equal allocation by count.
func ReallocateBundles(cfg models.Config, rows []models.OrderLine) []string {
	groups, warnings := groupBundles(rows)

	for _, g := range groups {
		parent := &rows[g.parent]
		reportedFee := parent.MarketplaceFee
		reportedShipping := parent.ShippingFee
		n := len(g.children)

		priceSum := 0.0
		totalUnits := 0
		for _, ci := range g.children {
			c := &rows[ci]
			if c.UnitCount <= 0 {
				c.UnitCount = 1
			}
			priceSum += c.UnitPrice
			totalUnits += c.UnitCount
		}

		feeSum := 0.0
		for _, ci := range g.children {
			c := &rows[ci]
			c.FeePercent, c.FixedFee, c.TotalFee = ItemFees(c.UnitPrice, c.UnitCount, c.AdType, cfg.FeeRuleSet)
			feeSum += c.TotalFee
		}
		feeSum = utils.Round2(feeSum)

		var allocGross, allocNet, allocShipping, shippingSum float64
		for k, ci := range g.children {
			c := &rows[ci]

			priceShare := 1 / float64(n)
			if priceSum > 0 {
				priceShare = c.UnitPrice / priceSum
			}
			unitShare := 1 / float64(n)
			if totalUnits > 0 {
				unitShare = float64(c.UnitCount) / float64(totalUnits)
			}

			if k == n-1 {
				c.GrossSaleValue = utils.Round2(parent.GrossSaleValue - allocGross)
				c.NetReceivedValue = utils.Round2(parent.NetReceivedValue - allocNet)
				c.ShippingFee = utils.Round2(reportedShipping - allocShipping)
			} else {
				c.GrossSaleValue = utils.Round2(parent.GrossSaleValue * priceShare)
				c.NetReceivedValue = utils.Round2(parent.NetReceivedValue * priceShare)
				c.ShippingFee = utils.Round2(reportedShipping * unitShare)
				allocGross += c.GrossSaleValue
				allocNet += c.NetReceivedValue
				allocShipping += c.ShippingFee
			}
			c.PackagingCost = utils.Round2(cfg.PackagingCost / float64(n))
			c.BundleOrigin = parent.OrderID + "-BUNDLE"
			shippingSum += c.ShippingFee
		}

		// Parent finalization: derived fee sum kept for the audit
		// cross-check, profit fields zeroed downstream, excluded from every
		// aggregate. The full packaging cost stays for display only.
		parent.TotalFee = feeSum
		parent.PackagingCost = utils.Round2(cfg.PackagingCost)
		parent.BundleOrigin = models.BundleParentMarker
		parent.Status = models.StatusBundleParent

		derived := utils.Round2(feeSum + shippingSum)
		reported := utils.Round2(reportedFee + reportedShipping)
		parent.FeeChecked = true
		parent.FeeCheckOK = math.Abs(derived-reported) <= feeCheckTolerance
		if !parent.FeeCheckOK {
			warnings = append(warnings, fmt.Sprintf(
				"pacote na venda %s: tarifas derivadas (R$ %.2f) divergem do reportado (R$ %.2f)",
				parent.OrderID, derived, reported))
		}

		// Cosmetic aggregation for display; not used in any computation.
		parent.SKU = joinChildren(rows, g.children, func(c *models.OrderLine) string { return c.SKU }, "-")
		parent.Title = joinChildren(rows, g.children, func(c *models.OrderLine) string { return c.Title }, " + ")
	}

	return warnings
}

func joinChildren(rows []models.OrderLine, idx []int, get func(*models.OrderLine) string, sep string) string {
	parts := make([]string, 0, len(idx))
	for _, ci := range idx {
		if v := get(&rows[ci]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

// ComputeItemFees fills the derived fee breakdown on every row the bundle
// engine did not touch. Standalone items run the identical formula the
// children did; their reported values already apply to the single item.
func ComputeItemFees(cfg models.Config, rows []models.OrderLine) {
	for i := range rows {
		r := &rows[i]
		if r.BundleOrigin != "" {
			continue
		}
		if r.UnitCount <= 0 {
			r.UnitCount = 1
		}
		r.FeePercent, r.FixedFee, r.TotalFee = ItemFees(r.UnitPrice, r.UnitCount, r.AdType, cfg.FeeRuleSet)
	}
}
