package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"auditoria-ml/models"
	"auditoria-ml/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// --- Mocks for Dependencies ---

type MockCostStore struct{ mock.Mock }

func (m *MockCostStore) Load(ctx context.Context, rescaleSuspect bool) ([]models.CostRecord, []string, error) {
	args := m.Called(ctx, rescaleSuspect)
	var costs []models.CostRecord
	if args.Get(0) != nil {
		costs = args.Get(0).([]models.CostRecord)
	}
	var warnings []string
	if args.Get(1) != nil {
		warnings = args.Get(1).([]string)
	}
	return costs, warnings, args.Error(2)
}

func (m *MockCostStore) Save(ctx context.Context, costs []models.CostRecord) error {
	args := m.Called(ctx, costs)
	return args.Error(0)
}

type MockCostRepository struct{ mock.Mock }

func (m *MockCostRepository) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCostRepository) ReplaceAll(ctx context.Context, costs []models.CostRecord) error {
	args := m.Called(ctx, costs)
	return args.Error(0)
}

func (m *MockCostRepository) GetAll(ctx context.Context) ([]models.CostRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CostRecord), args.Error(1)
}

// --- Helpers ---

func newTestController(store service.CostStore, repo *MockCostRepository) *AuditController {
	if repo == nil {
		return NewAuditController(service.NewSalesReader(), service.NewReportService(), store, nil)
	}
	return NewAuditController(service.NewSalesReader(), service.NewReportService(), store, repo)
}

// salesExport builds a minimal in-memory marketplace export with the header
// at row 6 of the "Vendas BR" sheet.
func salesExport(t *testing.T, dataRows [][]string) []byte {
	t.Helper()

	headers := []string{
		"N.º de venda", "Data da venda", "Estado", "Unidades", "SKU",
		"Tipo de anúncio", "Preço unitário de venda do anúncio (BRL)",
		"Receita por produtos (BRL)", "Total (BRL)",
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Vendas BR")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 6)
		require.NoError(t, f.SetCellValue("Vendas BR", cell, h))
	}
	for rIdx, row := range dataRows {
		for cIdx, v := range row {
			cell, _ := excelize.CoordinatesToCellName(cIdx+1, 7+rIdx)
			require.NoError(t, f.SetCellValue("Vendas BR", cell, v))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, export []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "vendas.xlsx")
	require.NoError(t, err)
	_, err = part.Write(export)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/audit/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var sampleSale = []string{"1001", "10 de março de 2024", "Entregue", "1", "123", "Clássico", "100,00", "100,00", "80,00"}

// --- Tests ---

func TestUpload(t *testing.T) {
	c := newTestController(nil, nil)

	rec := httptest.NewRecorder()
	c.Upload(rec, uploadRequest(t, salesExport(t, [][]string{sampleSale}), nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AuditRunResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 1, resp.Summary.TotalRows)
	assert.False(t, resp.Summary.CostDataLoaded)
	// Without a cost sheet the run carries an explicit warning.
	require.NotEmpty(t, resp.Warnings)
	assert.Contains(t, resp.Warnings[0], "custos não configurada")

	// The run is retrievable afterwards.
	rec2 := httptest.NewRecorder()
	c.GetRun(rec2, httptest.NewRequest(http.MethodGet, "/audit/runs/"+resp.RunID, nil), resp.RunID)
	assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestUploadWithCostStore(t *testing.T) {
	store := new(MockCostStore)
	store.On("Load", mock.Anything, true).
		Return([]models.CostRecord{{SKU: "123", UnitCost: 30}}, []string(nil), nil)
	repo := new(MockCostRepository)
	repo.On("ReplaceAll", mock.Anything, mock.Anything).Return(nil)

	c := newTestController(store, repo)
	rec := httptest.NewRecorder()
	c.Upload(rec, uploadRequest(t, salesExport(t, [][]string{sampleSale}), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.AuditRunResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Summary.CostDataLoaded)

	store.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestUploadConfigOverrides(t *testing.T) {
	c := newTestController(nil, nil)
	rec := httptest.NewRecorder()
	c.Upload(rec, uploadRequest(t, salesExport(t, [][]string{sampleSale}), map[string]string{
		"marginLimitPct": "10",
		"feeRuleSet":     models.FeeRuleSet2023,
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.AuditRunResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.FeeRuleSet2023, resp.Summary.FeeRuleSet)
	// 20% difference now exceeds the 10% limit.
	assert.Equal(t, 1, resp.Summary.OverMargin)
}

func TestUploadRejectsBadRequests(t *testing.T) {
	c := newTestController(nil, nil)

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c.Upload(rec, httptest.NewRequest(http.MethodGet, "/audit/upload", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("marginLimitPct", "30"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/audit/upload", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		c.Upload(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "file field")
	})

	t.Run("invalid config value", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c.Upload(rec, uploadRequest(t, salesExport(t, [][]string{sampleSale}), map[string]string{
			"marginLimitPct": "150",
		}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not an xlsx", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c.Upload(rec, uploadRequest(t, []byte("não é planilha"), nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetRunNotFound(t *testing.T) {
	c := newTestController(nil, nil)
	rec := httptest.NewRecorder()
	c.GetRun(rec, httptest.NewRequest(http.MethodGet, "/audit/runs/nope", nil), "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRunRowsSKUFilter(t *testing.T) {
	c := newTestController(nil, nil)

	other := []string{"1002", "11 de março de 2024", "Entregue", "1", "456", "Clássico", "50,00", "50,00", "40,00"}
	rec := httptest.NewRecorder()
	c.Upload(rec, uploadRequest(t, salesExport(t, [][]string{sampleSale, other}), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var up models.AuditRunResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&up))

	rec2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/audit/runs/"+up.RunID+"/rows?sku=456", nil)
	c.GetRunRows(rec2, req, up.RunID)
	require.Equal(t, http.StatusOK, rec2.Code)

	var rows models.AuditRowsResponse
	require.NoError(t, json.NewDecoder(rec2.Body).Decode(&rows))
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, "456", rows.Rows[0].SKU)

	// No filter returns everything.
	rec3 := httptest.NewRecorder()
	c.GetRunRows(rec3, httptest.NewRequest(http.MethodGet, "/audit/runs/"+up.RunID+"/rows", nil), up.RunID)
	var all models.AuditRowsResponse
	require.NoError(t, json.NewDecoder(rec3.Body).Decode(&all))
	assert.Len(t, all.Rows, 2)
}

func TestDownloadReport(t *testing.T) {
	c := newTestController(nil, nil)

	rec := httptest.NewRecorder()
	c.Upload(rec, uploadRequest(t, salesExport(t, [][]string{sampleSale}), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var up models.AuditRunResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&up))

	rec2 := httptest.NewRecorder()
	c.DownloadReport(rec2, httptest.NewRequest(http.MethodGet, "/audit/runs/"+up.RunID+"/report", nil), up.RunID)
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec2.Header().Get("Content-Type"))
	assert.Contains(t, rec2.Header().Get("Content-Disposition"), ".xlsx")

	// The streamed body is a readable workbook.
	f, err := excelize.OpenReader(bytes.NewReader(rec2.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Auditoria")
}

func TestStoreRunEviction(t *testing.T) {
	c := newTestController(nil, nil)

	var first string
	for i := 0; i < maxStoredRuns+1; i++ {
		result := &models.AuditResult{RunID: fmt.Sprintf("run-%d", i)}
		if i == 0 {
			first = result.RunID
		}
		c.storeRun(result)
	}

	_, ok := c.getRun(first)
	assert.False(t, ok, "oldest run should be evicted")
	_, ok = c.getRun(fmt.Sprintf("run-%d", maxStoredRuns))
	assert.True(t, ok)
	assert.Len(t, c.runs, maxStoredRuns)
}

func TestLoadCostsDegradation(t *testing.T) {
	cfg := models.DefaultConfig()

	t.Run("sheet failure falls back to snapshot", func(t *testing.T) {
		store := new(MockCostStore)
		store.On("Load", mock.Anything, true).Return(nil, nil, errors.New("quota exceeded"))
		repo := new(MockCostRepository)
		repo.On("GetAll", mock.Anything).Return([]models.CostRecord{{SKU: "123", UnitCost: 30}}, nil)

		c := newTestController(store, repo)
		costs, warnings := c.loadCosts(context.Background(), cfg)

		require.Len(t, costs, 1)
		assert.Contains(t, strings.Join(warnings, "\n"), "snapshot local")
	})

	t.Run("sheet and snapshot failure degrades to no costs", func(t *testing.T) {
		store := new(MockCostStore)
		store.On("Load", mock.Anything, true).Return(nil, nil, errors.New("quota exceeded"))
		repo := new(MockCostRepository)
		repo.On("GetAll", mock.Anything).Return(nil, errors.New("db down"))

		c := newTestController(store, repo)
		costs, warnings := c.loadCosts(context.Background(), cfg)

		assert.Empty(t, costs)
		assert.Contains(t, strings.Join(warnings, "\n"), "sem custo de produto")
	})
}

func TestConfigFromForm(t *testing.T) {
	form := func(values url.Values) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/audit/upload", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	t.Run("defaults", func(t *testing.T) {
		cfg, err := configFromForm(form(url.Values{}))
		require.NoError(t, err)
		assert.Equal(t, models.DefaultConfig(), cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := configFromForm(form(url.Values{
			"marginLimitPct":      {"25"},
			"packagingCost":       {"4.5"},
			"taxRatePct":          {"8"},
			"feeRuleSet":          {models.FeeRuleSet2022},
			"rescaleSuspectCosts": {"false"},
		}))
		require.NoError(t, err)
		assert.Equal(t, 25.0, cfg.MarginLimitPct)
		assert.Equal(t, 4.5, cfg.PackagingCost)
		assert.Equal(t, 8.0, cfg.TaxRatePct)
		assert.Equal(t, models.FeeRuleSet2022, cfg.FeeRuleSet)
		assert.False(t, cfg.RescaleSuspectCosts)
	})

	t.Run("invalid values", func(t *testing.T) {
		invalid := []url.Values{
			{"marginLimitPct": {"-1"}},
			{"marginLimitPct": {"101"}},
			{"marginLimitPct": {"abc"}},
			{"packagingCost": {"-3"}},
			{"taxRatePct": {"-10"}},
			{"feeRuleSet": {"2020"}},
			{"rescaleSuspectCosts": {"talvez"}},
		}
		for _, values := range invalid {
			_, err := configFromForm(form(values))
			assert.Error(t, err, "values=%v", values)
		}
	})
}
