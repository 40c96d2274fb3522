package audit

import (
	"strings"

	"auditoria-ml/models"
	"auditoria-ml/utils"
)

// halfPriceCeiling is the price below which the fixed fee is 50% of the unit
// price instead of a tier value.
const halfPriceCeiling = 12.50

// feeTier maps a price ceiling (exclusive) to a flat charge.
type feeTier struct {
	below float64
	fee   float64
}

// The marketplace revised its fixed-fee table more than once and the
// revisions disagree (second boundary 29 vs 30, and whether items at R$79+
// pay any fixed fee at all). No table is picked silently: each revision is
// pinned under a name and models.Config.FeeRuleSet selects one per run.
var feeRuleSets = map[string][]feeTier{
	models.FeeRuleSet2024: {
		{below: 29, fee: 6.25},
		{below: 50, fee: 6.50},
		{fee: 6.75},
	},
	models.FeeRuleSet2023: {
		{below: 30, fee: 6.25},
		{below: 50, fee: 6.50},
		{fee: 6.75},
	},
	models.FeeRuleSet2022: {
		{below: 30, fee: 6.25},
		{below: 50, fee: 6.50},
		{below: 79, fee: 6.75},
		{fee: 0},
	},
}

// FeePercent returns the commission percentage for a marketplace ad type.
// Case-insensitive substring match: "premium" listings pay 17%, "classic" /
// "clássico" (and anything unrecognized) pay 12%.
func FeePercent(adType string) float64 {
	t := strings.ToLower(adType)
	if strings.Contains(t, "premium") {
		return 17
	}
	return 12
}

// FixedFee returns the flat charge for a unit price under the given rule
// set. Below R$12.50 every revision charges half the unit price. Unknown
// rule sets fall back to the current table.
func FixedFee(unitPrice float64, ruleSet string) float64 {
	if unitPrice < halfPriceCeiling {
		return utils.Round2(unitPrice * 0.5)
	}

	tiers, ok := feeRuleSets[ruleSet]
	if !ok {
		tiers = feeRuleSets[models.FeeRuleSet2024]
	}
	for _, t := range tiers {
		if t.below == 0 || unitPrice < t.below {
			return t.fee
		}
	}
	return 0
}

// ItemFees computes the derived fee breakdown for a single line item from
// its own unit price, ad type and unit count. This is the one implementation
// of the fee formula; both the standalone path and the bundle reallocation
// engine go through it.
func ItemFees(unitPrice float64, unitCount int, adType, ruleSet string) (pct, fixed, total float64) {
	if unitCount <= 0 {
		unitCount = 1
	}
	pct = FeePercent(adType)
	fixed = FixedFee(unitPrice, ruleSet)
	itemTotal := unitPrice * float64(unitCount)
	total = utils.Round2(itemTotal*pct/100 + fixed*float64(unitCount))
	return pct, fixed, total
}
