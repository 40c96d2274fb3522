package models

// Fee rule set identifiers. The marketplace changed its fixed-fee table
// between revisions (second tier boundary 29 vs 30, and whether R$79+ items
// pay a fixed fee at all); every known table is shipped and the active one is
// pinned per run instead of silently picking one.
const (
	FeeRuleSet2024 = "2024"
	FeeRuleSet2023 = "2023"
	FeeRuleSet2022 = "2022"
)

// Config holds the operator-supplied audit parameters for one run. It is
// passed by value into the pipeline entry point; there is no global state.
type Config struct {
	// MarginLimitPct is the %difference threshold above which a sale is
	// classified as over margin.
	MarginLimitPct float64 `json:"marginLimitPct"`
	// PackagingCost is the fixed packaging cost per sale, in BRL.
	PackagingCost float64 `json:"packagingCost"`
	// TaxRatePct is the tax cost as a percentage of the gross sale value.
	TaxRatePct float64 `json:"taxRatePct"`
	// FeeRuleSet selects the fixed-fee tier table (FeeRuleSet2024,
	// FeeRuleSet2023 or FeeRuleSet2022).
	FeeRuleSet string `json:"feeRuleSet"`
	// RescaleSuspectCosts enables the legacy heuristic that divides cost
	// values above 999 by 100. Every application is surfaced as a warning.
	RescaleSuspectCosts bool `json:"rescaleSuspectCosts"`
}

// DefaultConfig returns the default audit parameters.
func DefaultConfig() Config {
	return Config{
		MarginLimitPct:      30,
		PackagingCost:       3.0,
		TaxRatePct:          10.0,
		FeeRuleSet:          FeeRuleSet2024,
		RescaleSuspectCosts: true,
	}
}
