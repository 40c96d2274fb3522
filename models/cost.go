package models

// CostRecord is one row of the external per-SKU cost table.
// Example: {"sku": "1234", "unitCost": 12.9}
type CostRecord struct {
	SKU      string  `json:"sku"`
	Product  string  `json:"product,omitempty"`
	UnitCost float64 `json:"unitCost"`
}

// CostTableResponse is the response for listing the cost table
// Example response:
// {
//   "source": "sheets",
//   "costs": [{"sku": "1234", "product": "Capa de celular", "unitCost": 12.9}]
// }
type CostTableResponse struct {
	Source string       `json:"source"`
	Costs  []CostRecord `json:"costs"`
}

// SaveCostsRequest is the request body for replacing the cost table
type SaveCostsRequest struct {
	Costs []CostRecord `json:"costs"`
}
