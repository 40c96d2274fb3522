package router

import (
	"net/http"
	"strings"

	"auditoria-ml/app/controller"
)

type Controllers struct {
	Audit *controller.AuditController
	Cost  *controller.CostController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(controllers *Controllers) {
	// Ping endpoint
	http.HandleFunc("/ping", pingHandler)

	// Audit routes
	// Upload a sales export and run the full audit
	http.HandleFunc("/audit/upload", controllers.Audit.Upload)

	// Run lookups: /audit/runs/:id, /audit/runs/:id/rows, /audit/runs/:id/report
	http.HandleFunc("/audit/runs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/audit/runs/")
		if path == "" {
			http.Error(w, "run id parameter is required", http.StatusBadRequest)
			return
		}

		// Route to specific sub-resources first
		if runID := strings.TrimSuffix(path, "/report"); runID != path {
			controllers.Audit.DownloadReport(w, r, runID)
			return
		}
		if runID := strings.TrimSuffix(path, "/rows"); runID != path {
			controllers.Audit.GetRunRows(w, r, runID)
			return
		}
		if strings.Contains(path, "/") {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		// Otherwise, treat as GET /audit/runs/:id
		controllers.Audit.GetRun(w, r, path)
	})

	// Cost table routes - handles both GET (read) and PUT (replace)
	http.HandleFunc("/admin/costs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			controllers.Cost.GetCosts(w, r)
		} else if r.Method == http.MethodPut {
			controllers.Cost.SaveCosts(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}
