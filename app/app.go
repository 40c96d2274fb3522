package app

import (
	"context"
	"log"
	"os"

	"auditoria-ml/app/controller"
	"auditoria-ml/app/router"
	"auditoria-ml/db"
	"auditoria-ml/repository"
	"auditoria-ml/service"
)

// Initialize initializes the application. The database and the Google Sheets
// cost store are both optional collaborators: without them the audit runs
// with zero product costs and a warning, never a startup failure.
func Initialize() error {
	ctx := context.Background()

	// Optional: local cost snapshot database
	var costRepo repository.CostRepositoryInterface
	if db.Configured() {
		if err := db.InitDB(); err != nil {
			log.Printf("⚠️ Initialize: database unavailable, running without cost snapshot: %v", err)
		} else {
			repo := repository.NewCostRepository()
			if err := repo.EnsureSchema(ctx); err != nil {
				log.Printf("⚠️ Initialize: failed to prepare cost snapshot schema: %v", err)
			} else {
				costRepo = repo
			}
		}
	} else {
		log.Printf("ℹ️ Initialize: no database configured, running without cost snapshot")
	}

	// Optional: Google Sheets cost store
	var costStore service.CostStore
	if sheetID := os.Getenv("COST_SHEET_ID"); sheetID != "" {
		sheetService, err := service.NewCostSheetService(ctx, sheetID)
		if err != nil {
			log.Printf("⚠️ Initialize: cost sheet unavailable, audits will run without product costs: %v", err)
		} else {
			costStore = sheetService
		}
	} else {
		log.Printf("ℹ️ Initialize: COST_SHEET_ID not set, audits will run without product costs")
	}

	salesReader := service.NewSalesReader()
	reportService := service.NewReportService()

	// Create controllers
	controllers := &router.Controllers{
		Audit: controller.NewAuditController(salesReader, reportService, costStore, costRepo),
		Cost:  controller.NewCostController(costStore, costRepo),
	}

	// Setup routes using standard http router
	router.SetupRoutes(controllers)

	return nil
}
