package models

import "time"

// Row status values. Kept in Portuguese because they are shown verbatim in the
// exported report, matching the marketplace export language.
const (
	StatusNormal       = "Normal"
	StatusOverMargin   = "Acima da Margem"
	StatusCancellation = "Cancelamento Correto"
	StatusBundleParent = "Pacote (controle)"
)

// BundleParentMarker is the BundleOrigin sentinel placed on aggregate rows
// once their children have been reallocated.
const BundleParentMarker = "BUNDLE-PARENT"

// OrderLine is one row of the working table: a single marketplace order line
// with its reported values and every derived audit field.
type OrderLine struct {
	// Identity
	OrderID   string    `json:"orderId"`
	Date      time.Time `json:"date,omitempty"`
	RawDate   string    `json:"rawDate,omitempty"`
	State     string    `json:"state,omitempty"`
	SKU       string    `json:"sku"`
	ListingID string    `json:"listingId,omitempty"`
	Title     string    `json:"title,omitempty"`
	AdType    string    `json:"adType,omitempty"`
	UnitCount int       `json:"unitCount"`

	// Reported by the marketplace (absolute BRL values)
	UnitPrice        float64 `json:"unitPrice"`
	GrossSaleValue   float64 `json:"grossSaleValue"`
	NetReceivedValue float64 `json:"netReceivedValue"`
	ShippingRevenue  float64 `json:"shippingRevenue"`
	MarketplaceFee   float64 `json:"marketplaceFee"`
	ShippingFee      float64 `json:"shippingFee"`
	RefundAmount     float64 `json:"refundAmount"`

	// Derived fee breakdown
	FeePercent float64 `json:"feePercent"`
	FixedFee   float64 `json:"fixedFee"`
	TotalFee   float64 `json:"totalFee"`

	// Bundle linkage: "" for standalone items, "<orderId>-BUNDLE" for bundle
	// children, BundleParentMarker for the aggregate row.
	BundleOrigin string `json:"bundleOrigin,omitempty"`
	// FeeCheckOK is only meaningful on bundle parents when FeeChecked is set:
	// derived child fees vs. the marketplace-reported aggregate.
	FeeChecked bool `json:"feeChecked,omitempty"`
	FeeCheckOK bool `json:"feeCheckOk,omitempty"`

	// Costs and profitability
	PackagingCost    float64 `json:"packagingCost"`
	TaxCost          float64 `json:"taxCost"`
	GrossProfit      float64 `json:"grossProfit"`
	NetProfit        float64 `json:"netProfit"`
	NetMarginPct     float64 `json:"netMarginPct"`
	UnitProductCost  float64 `json:"unitProductCost"`
	TotalProductCost float64 `json:"totalProductCost"`
	FinalProfit      float64 `json:"finalProfit"`
	FinalMarginPct   float64 `json:"finalMarginPct"`
	MarkupPct        float64 `json:"markupPct"`

	// Audit outputs
	DifferenceValue float64 `json:"differenceValue"`
	PctDifference   float64 `json:"pctDifference"`
	Status          string  `json:"status"`
}

// IsBundleParent reports whether the row is an aggregate bundle row that has
// been finalized by the reallocation engine.
func (l *OrderLine) IsBundleParent() bool {
	return l.BundleOrigin == BundleParentMarker
}

// IsBundleChild reports whether the row was reallocated out of a bundle.
func (l *OrderLine) IsBundleChild() bool {
	return l.BundleOrigin != "" && l.BundleOrigin != BundleParentMarker
}
