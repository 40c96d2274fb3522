package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"auditoria-ml/models"
	"auditoria-ml/repository"
	"auditoria-ml/service"
)

// CostController handles HTTP requests for the external cost table
type CostController struct {
	costStore service.CostStore                  // nil when the cost sheet isn't configured
	costRepo  repository.CostRepositoryInterface // nil without a database
}

// NewCostController creates a new CostController
func NewCostController(costStore service.CostStore, costRepo repository.CostRepositoryInterface) *CostController {
	return &CostController{
		costStore: costStore,
		costRepo:  costRepo,
	}
}

// GetCosts handles GET /admin/costs
// Example response:
//
//	{"source": "sheets", "costs": [{"sku": "1234", "unitCost": 12.9}]}
//
// "source" is "sheets" for the live sheet, "cache" for the local snapshot
// fallback, "none" when neither is available.
func (c *CostController) GetCosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if c.costStore != nil {
		// Reads never apply the rescale heuristic: the operator should see
		// the table exactly as stored.
		costs, _, err := c.costStore.Load(r.Context(), false)
		if err == nil {
			if c.costRepo != nil {
				if repoErr := c.costRepo.ReplaceAll(r.Context(), costs); repoErr != nil {
					log.Printf("⚠️ GetCosts: Failed to refresh cost snapshot: %v", repoErr)
				}
			}
			writeJSON(w, http.StatusOK, models.CostTableResponse{Source: "sheets", Costs: costs})
			return
		}
		log.Printf("⚠️ GetCosts: Cost sheet unavailable: %v", err)
	}

	if c.costRepo != nil {
		costs, err := c.costRepo.GetAll(r.Context())
		if err == nil && len(costs) > 0 {
			writeJSON(w, http.StatusOK, models.CostTableResponse{Source: "cache", Costs: costs})
			return
		}
		if err != nil {
			log.Printf("⚠️ GetCosts: Cost snapshot unavailable: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, models.CostTableResponse{Source: "none", Costs: []models.CostRecord{}})
}

// SaveCosts handles PUT /admin/costs
// Example request:
//
//	{"costs": [{"sku": "1234", "product": "Capa de celular", "unitCost": 12.9}]}
func (c *CostController) SaveCosts(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 SaveCosts: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if c.costStore == nil {
		http.Error(w, "cost sheet is not configured", http.StatusServiceUnavailable)
		return
	}

	var req models.SaveCostsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	for _, cost := range req.Costs {
		if strings.TrimSpace(cost.SKU) == "" {
			http.Error(w, "every cost entry needs a sku", http.StatusBadRequest)
			return
		}
		if cost.UnitCost < 0 {
			http.Error(w, fmt.Sprintf("unitCost for SKU %s must be non-negative", cost.SKU), http.StatusBadRequest)
			return
		}
	}

	if err := c.costStore.Save(r.Context(), req.Costs); err != nil {
		log.Printf("❌ SaveCosts: Failed to save cost sheet: %v", err)
		http.Error(w, "failed to save cost sheet", http.StatusBadGateway)
		return
	}
	if c.costRepo != nil {
		if err := c.costRepo.ReplaceAll(r.Context(), req.Costs); err != nil {
			log.Printf("⚠️ SaveCosts: Failed to refresh cost snapshot: %v", err)
		}
	}

	log.Printf("✅ SaveCosts: %d cost(s) saved", len(req.Costs))
	writeJSON(w, http.StatusOK, models.CostTableResponse{Source: "sheets", Costs: req.Costs})
}
