package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"auditoria-ml/audit"
	"auditoria-ml/models"
	"auditoria-ml/repository"
	"auditoria-ml/service"

	"github.com/google/uuid"
)

// maxStoredRuns bounds the in-memory run registry; the oldest run is evicted
// when a new upload would exceed it.
const maxStoredRuns = 16

// maxUploadBytes caps the multipart form memory for a sales export upload.
const maxUploadBytes = 32 << 20

// AuditController handles HTTP requests for audit runs
type AuditController struct {
	reader    *service.SalesReader
	reports   *service.ReportService
	costStore service.CostStore                  // nil when the cost sheet isn't configured
	costRepo  repository.CostRepositoryInterface // nil without a database

	mu       sync.Mutex
	runs     map[string]*models.AuditResult
	runOrder []string
}

// NewAuditController creates a new AuditController
func NewAuditController(reader *service.SalesReader, reports *service.ReportService, costStore service.CostStore, costRepo repository.CostRepositoryInterface) *AuditController {
	return &AuditController{
		reader:    reader,
		reports:   reports,
		costStore: costStore,
		costRepo:  costRepo,
		runs:      make(map[string]*models.AuditResult),
	}
}

// Upload handles POST /audit/upload
// Multipart form: "file" carries the sales export (.xlsx); optional fields
// override the default configuration.
// Example fields:
//
//	marginLimitPct=30&packagingCost=3.0&taxRatePct=10.0&feeRuleSet=2024
//
// Example response:
//
//	{
//	  "runId": "8c2f8e4e-...",
//	  "summary": {"totalRows": 120, "overMargin": 7, ...},
//	  "warnings": []
//	}
func (c *AuditController) Upload(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Upload: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Printf("❌ Upload: Failed to parse multipart form: %v", err)
		http.Error(w, fmt.Sprintf("Invalid multipart form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	cfg, err := configFromForm(r)
	if err != nil {
		log.Printf("❌ Upload: Invalid configuration: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	table, err := c.reader.Read(file)
	if err != nil {
		// A malformed upload fails this run only; nothing partial survives.
		log.Printf("❌ Upload: Failed to read sales export %q: %v", header.Filename, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	costs, costWarnings := c.loadCosts(r.Context(), cfg)

	result, err := audit.Run(cfg, table, costs)
	if err != nil {
		log.Printf("❌ Upload: Audit failed for %q: %v", header.Filename, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result.RunID = uuid.NewString()
	result.Warnings = append(costWarnings, result.Warnings...)

	c.storeRun(result)
	log.Printf("✅ Upload: Run %s completed: %d row(s), %d warning(s)", result.RunID, len(result.Rows), len(result.Warnings))

	writeJSON(w, http.StatusOK, models.AuditRunResponse{
		RunID:    result.RunID,
		Summary:  result.Summary,
		Critical: result.Critical,
		Warnings: result.Warnings,
	})
}

// GetRun handles GET /audit/runs/{id}
func (c *AuditController) GetRun(w http.ResponseWriter, r *http.Request, runID string) {
	result, ok := c.getRun(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, models.AuditRunResponse{
		RunID:    result.RunID,
		Summary:  result.Summary,
		Critical: result.Critical,
		Warnings: result.Warnings,
	})
}

// GetRunRows handles GET /audit/runs/{id}/rows?sku=123
// Without a sku filter every audited row is returned.
func (c *AuditController) GetRunRows(w http.ResponseWriter, r *http.Request, runID string) {
	result, ok := c.getRun(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	sku := strings.TrimSpace(r.URL.Query().Get("sku"))
	rows := result.Rows
	if sku != "" {
		filtered := make([]models.OrderLine, 0)
		for _, row := range result.Rows {
			if row.SKU == sku {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	writeJSON(w, http.StatusOK, models.AuditRowsResponse{RunID: result.RunID, Rows: rows})
}

// DownloadReport handles GET /audit/runs/{id}/report and streams the xlsx
func (c *AuditController) DownloadReport(w http.ResponseWriter, r *http.Request, runID string) {
	result, ok := c.getRun(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	f, name, err := c.reports.Build(result)
	if err != nil {
		log.Printf("❌ DownloadReport: Failed to build report for run %s: %v", runID, err)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := f.Write(w); err != nil {
		log.Printf("❌ DownloadReport: Failed to stream report for run %s: %v", runID, err)
	}
}

// loadCosts fetches the cost table with graceful degradation: live sheet
// first (mirrored into the local snapshot when available), then the last
// snapshot, then no costs at all. Failures become warnings, never errors.
func (c *AuditController) loadCosts(ctx context.Context, cfg models.Config) ([]models.CostRecord, []string) {
	if c.costStore == nil {
		return nil, []string{"planilha de custos não configurada; auditoria sem custo de produto"}
	}

	costs, warnings, err := c.costStore.Load(ctx, cfg.RescaleSuspectCosts)
	if err == nil {
		if c.costRepo != nil {
			if repoErr := c.costRepo.ReplaceAll(ctx, costs); repoErr != nil {
				log.Printf("⚠️ loadCosts: Failed to refresh cost snapshot: %v", repoErr)
			}
		}
		return costs, warnings
	}

	log.Printf("⚠️ loadCosts: Cost sheet unavailable: %v", err)
	warnings = append(warnings, fmt.Sprintf("planilha de custos indisponível: %v", err))

	if c.costRepo != nil {
		cached, cacheErr := c.costRepo.GetAll(ctx)
		if cacheErr == nil && len(cached) > 0 {
			warnings = append(warnings, fmt.Sprintf("usando snapshot local com %d custo(s)", len(cached)))
			return cached, warnings
		}
		if cacheErr != nil {
			log.Printf("⚠️ loadCosts: Cost snapshot unavailable: %v", cacheErr)
		}
	}

	warnings = append(warnings, "auditoria sem custo de produto")
	return nil, warnings
}

func (c *AuditController) storeRun(result *models.AuditResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.runs[result.RunID] = result
	c.runOrder = append(c.runOrder, result.RunID)
	for len(c.runOrder) > maxStoredRuns {
		oldest := c.runOrder[0]
		c.runOrder = c.runOrder[1:]
		delete(c.runs, oldest)
	}
}

func (c *AuditController) getRun(runID string) (*models.AuditResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.runs[runID]
	return result, ok
}

// configFromForm builds the run configuration from the upload form,
// starting at the defaults.
func configFromForm(r *http.Request) (models.Config, error) {
	cfg := models.DefaultConfig()

	if v := strings.TrimSpace(r.FormValue("marginLimitPct")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 100 {
			return cfg, fmt.Errorf("marginLimitPct must be a number between 0 and 100")
		}
		cfg.MarginLimitPct = f
	}
	if v := strings.TrimSpace(r.FormValue("packagingCost")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return cfg, fmt.Errorf("packagingCost must be a non-negative number")
		}
		cfg.PackagingCost = f
	}
	if v := strings.TrimSpace(r.FormValue("taxRatePct")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return cfg, fmt.Errorf("taxRatePct must be a non-negative number")
		}
		cfg.TaxRatePct = f
	}
	if v := strings.TrimSpace(r.FormValue("feeRuleSet")); v != "" {
		if v != models.FeeRuleSet2024 && v != models.FeeRuleSet2023 && v != models.FeeRuleSet2022 {
			return cfg, fmt.Errorf("feeRuleSet must be %q, %q or %q", models.FeeRuleSet2024, models.FeeRuleSet2023, models.FeeRuleSet2022)
		}
		cfg.FeeRuleSet = v
	}
	if v := strings.TrimSpace(r.FormValue("rescaleSuspectCosts")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("rescaleSuspectCosts must be a boolean")
		}
		cfg.RescaleSuspectCosts = b
	}

	return cfg, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ writeJSON: Failed to encode response: %v", err)
	}
}
