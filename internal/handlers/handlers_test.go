package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/observability"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/services"
	"github.com/KarlaDampilag/dailysalesexpenses/pkg/lambda"
)

type fakeReportService struct {
	lastRequest *services.ReportRequest
	err         error
}

func (f *fakeReportService) Summary(ctx context.Context, req *services.ReportRequest) (*models.RangeSummary, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.RangeSummary{StartDate: req.Start.Unix(), EndDate: req.End.Unix(), Profit: 60, Expenses: 30, Net: 30, UnitsSold: 2}, nil
}

func (f *fakeReportService) MonthlyTrend(ctx context.Context, req *services.ReportRequest) ([]models.TrendBucket, error) {
	f.lastRequest = req
	return []models.TrendBucket{{DateName: "01-2023", Profit: 60}}, f.err
}

func (f *fakeReportService) TopProducts(ctx context.Context, req *services.ReportRequest) ([]models.ProductSales, error) {
	f.lastRequest = req
	return []models.ProductSales{}, f.err
}

func (f *fakeReportService) TopCategories(ctx context.Context, req *services.ReportRequest) ([]models.CategorySales, error) {
	f.lastRequest = req
	return []models.CategorySales{{Category: "Cakes", QuantitySold: 2, Revenue: 200}}, f.err
}

func (f *fakeReportService) TopCustomers(ctx context.Context, req *services.ReportRequest) ([]models.CustomerSales, error) {
	f.lastRequest = req
	return []models.CustomerSales{}, f.err
}

func (f *fakeReportService) Dashboard(ctx context.Context, req *services.ReportRequest) (*models.Dashboard, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Dashboard{}, nil
}

func (f *fakeReportService) SaleValuation(ctx context.Context, saleID string) (*models.SaleValuation, error) {
	if saleID != "sale-1" {
		return nil, fmt.Errorf("failed to get sale: %w", repositories.NotFoundError("sale", saleID))
	}
	return &models.SaleValuation{SaleID: saleID, Subtotal: 200, Total: 213, Profit: 60}, nil
}

func (f *fakeReportService) DefaultRange(now time.Time) (time.Time, time.Time) {
	return now, now
}

type fakeLedgerService struct {
	err error
}

func (f *fakeLedgerService) RecordSale(ctx context.Context, req *services.RecordSaleRequest) (*models.Sale, error) {
	if f.err != nil {
		return nil, f.err
	}
	sale := models.NewSale(time.Unix(req.Timestamp, 0))
	return sale, nil
}

func (f *fakeLedgerService) DeleteSale(ctx context.Context, id string) error {
	return f.err
}

func (f *fakeLedgerService) RecordExpense(ctx context.Context, req *services.RecordExpenseRequest) (*models.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	return models.NewExpense(req.Name, req.Cost, time.Unix(req.Timestamp, 0)), nil
}

func (f *fakeLedgerService) DeleteExpense(ctx context.Context, id string) error {
	return f.err
}

func (f *fakeLedgerService) RecordProduct(ctx context.Context, req *services.RecordProductRequest) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return models.NewProduct(req.Name, req.SalePrice, req.CostPrice, req.Categories...), nil
}

func (f *fakeLedgerService) RecordCustomer(ctx context.Context, req *services.RecordCustomerRequest) (*models.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return models.NewCustomer(req.Name), nil
}

type fakeHealth struct{ err error }

func (f *fakeHealth) CheckHealth(ctx context.Context) error { return f.err }

func (f *fakeHealth) GetHealthStatus(ctx context.Context) *repositories.HealthStatus {
	return &repositories.HealthStatus{Healthy: f.err == nil}
}

type fakeCache struct {
	enabled bool
	err     error
}

func (f *fakeCache) Enabled() bool                  { return f.enabled }
func (f *fakeCache) Ping(ctx context.Context) error { return f.err }

func setupRouter(reports *fakeReportService, ledger *fakeLedgerService, config *RouterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if config == nil {
		config = &RouterConfig{}
	}
	config.ReportService = reports
	config.LedgerService = ledger
	SetupRoutes(router, config)
	return router
}

func perform(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestReportQueryParsing(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	tests := []struct {
		name      string
		query     string
		location  *time.Location
		wantStart time.Time
		wantEnd   time.Time
		wantCount int
	}{
		{
			name:  "no parameters leave defaults to the service",
			query: "",
		},
		{
			name:      "unix seconds",
			query:     "?start=1672531200&end=1675209599",
			wantStart: time.Unix(1672531200, 0),
			wantEnd:   time.Unix(1675209599, 0),
		},
		{
			name:      "calendar dates cover the whole end day",
			query:     "?start=2023-01-01&end=2023-01-31&count=5",
			wantStart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2023, 1, 31, 23, 59, 59, 0, time.UTC),
			wantCount: 5,
		},
		{
			name:      "calendar dates read in the configured location",
			query:     "?start=2023-01-01&end=2023-01-01",
			location:  manila,
			wantStart: time.Date(2023, 1, 1, 0, 0, 0, 0, manila),
			wantEnd:   time.Date(2023, 1, 1, 23, 59, 59, 0, manila),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := &fakeReportService{}
			router := setupRouter(reports, &fakeLedgerService{}, &RouterConfig{Location: tt.location})

			w := perform(router, http.MethodGet, "/api/v1/reports/top-products"+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			require.NotNil(t, reports.lastRequest)

			assert.True(t, tt.wantStart.Equal(reports.lastRequest.Start), "start %v", reports.lastRequest.Start)
			assert.True(t, tt.wantEnd.Equal(reports.lastRequest.End), "end %v", reports.lastRequest.End)
			assert.Equal(t, tt.wantCount, reports.lastRequest.Count)
		})
	}
}

func TestReportErrors(t *testing.T) {
	validationErr := validator.New().Struct(&services.ReportRequest{Count: -1})
	require.Error(t, validationErr)

	tests := []struct {
		name       string
		target     string
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{name: "bad start", target: "/api/v1/reports/summary?start=yesterday", wantStatus: http.StatusBadRequest, wantError: "Validation failed"},
		{name: "bad count", target: "/api/v1/reports/top-customers?count=ten", wantStatus: http.StatusBadRequest, wantError: "Validation failed"},
		{name: "inverted range", target: "/api/v1/reports/monthly", serviceErr: services.ErrInvalidRange, wantStatus: http.StatusBadRequest, wantError: "Invalid date range"},
		{name: "validator error", target: "/api/v1/reports/top-categories", serviceErr: fmt.Errorf("validation failed: %w", validationErr), wantStatus: http.StatusBadRequest, wantError: "Validation failed"},
		{name: "internal error hides cause", target: "/api/v1/reports/dashboard", serviceErr: errors.New("disk on fire"), wantStatus: http.StatusInternalServerError, wantError: "Failed to compute report"},
		{name: "snapshot store unreachable", target: "/api/v1/reports/summary", serviceErr: fmt.Errorf("load snapshot: %w", repositories.ConnectionError(errors.New("disk on fire"))), wantStatus: http.StatusServiceUnavailable, wantError: "Service unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&fakeReportService{err: tt.serviceErr}, &fakeLedgerService{}, nil)

			w := perform(router, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantStatus, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.NotContains(t, body.Message, "disk on fire")
		})
	}
}

func TestReportEndpoints(t *testing.T) {
	router := setupRouter(&fakeReportService{}, &fakeLedgerService{}, nil)

	w := perform(router, http.MethodGet, "/api/v1/reports/summary?start=2023-01-01&end=2023-02-28", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary models.RangeSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 30.0, summary.Net)
	assert.Equal(t, 2, summary.UnitsSold)

	w = perform(router, http.MethodGet, "/api/v1/reports/monthly", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"dateName":"01-2023","profit":60,"expenses":0}]`, w.Body.String())

	w = perform(router, http.MethodGet, "/api/v1/reports/top-products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = perform(router, http.MethodGet, "/api/v1/sales/sale-1/valuation", "")
	require.Equal(t, http.StatusOK, w.Code)
	var valuation models.SaleValuation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &valuation))
	assert.Equal(t, 213.0, valuation.Total)

	w = perform(router, http.MethodGet, "/api/v1/sales/missing/valuation", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLambdaReportHandlers(t *testing.T) {
	reports := &fakeReportService{}
	handler := NewReportHandler(reports, nil)
	ctx := context.Background()

	resp, err := handler.HandleSummary(ctx, &lambda.Request{
		Method:      http.MethodGet,
		Path:        "/api/v1/reports/summary",
		QueryParams: map[string]string{"start": "2023-01-01", "end": "2023-01-31"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, time.Date(2023, 1, 31, 23, 59, 59, 0, time.UTC).Unix(), reports.lastRequest.End.Unix())

	resp, err = handler.HandleTopCategories(ctx, &lambda.Request{QueryParams: map[string]string{"count": "x"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = handler.HandleSaleValuation(ctx, &lambda.Request{PathParams: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = handler.HandleSaleValuation(ctx, &lambda.Request{PathParams: map[string]string{"id": "nope"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = handler.HandleDashboard(ctx, &lambda.Request{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"summary":{"start_date":0,"end_date":0,"profit":0,"expenses":0,"net":0,"units_sold":0},"monthly":null,"top_products":null,"top_categories":null,"top_customers":null}`, string(resp.Body))
}

func TestLedgerEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		serviceErr error
		wantStatus int
	}{
		{name: "record sale", method: http.MethodPost, target: "/api/v1/sales", body: `{"timestamp":1672531200,"saleItems":[{"productId":"p1","quantity":2}]}`, wantStatus: http.StatusCreated},
		{name: "malformed sale body", method: http.MethodPost, target: "/api/v1/sales", body: `{"timestamp":`, wantStatus: http.StatusBadRequest},
		{name: "sale for unknown product", method: http.MethodPost, target: "/api/v1/sales", body: `{"timestamp":1,"saleItems":[{"productId":"p9","quantity":1}]}`, serviceErr: repositories.NotFoundError("product", "p9"), wantStatus: http.StatusNotFound},
		{name: "delete sale", method: http.MethodDelete, target: "/api/v1/sales/s1", wantStatus: http.StatusNoContent},
		{name: "delete missing sale", method: http.MethodDelete, target: "/api/v1/sales/s1", serviceErr: repositories.NotFoundError("sale", "s1"), wantStatus: http.StatusNotFound},
		{name: "record expense", method: http.MethodPost, target: "/api/v1/expenses", body: `{"timestamp":1672531200,"name":"Flour","cost":"30"}`, wantStatus: http.StatusCreated},
		{name: "invalid expense", method: http.MethodPost, target: "/api/v1/expenses", body: `{"name":"Flour"}`, serviceErr: &models.ValidationError{Field: "cost", Message: "cost is required"}, wantStatus: http.StatusBadRequest},
		{name: "delete expense", method: http.MethodDelete, target: "/api/v1/expenses/e1", wantStatus: http.StatusNoContent},
		{name: "create product", method: http.MethodPost, target: "/api/v1/products", body: `{"name":"Ube Cake","salePrice":"100","costPrice":"60","categories":["Cakes"]}`, wantStatus: http.StatusCreated},
		{name: "duplicate product", method: http.MethodPost, target: "/api/v1/products", body: `{"name":"Ube Cake","salePrice":"100"}`, serviceErr: repositories.DuplicateError("product", "id", "p1"), wantStatus: http.StatusConflict},
		{name: "create customer", method: http.MethodPost, target: "/api/v1/customers", body: `{"name":"Maria Santos"}`, wantStatus: http.StatusCreated},
		{name: "database unreachable", method: http.MethodPost, target: "/api/v1/expenses", body: `{"timestamp":1672531200,"name":"Flour","cost":"30"}`, serviceErr: repositories.ConnectionError(errors.New("sql: database is closed")), wantStatus: http.StatusServiceUnavailable},
		{name: "customer store failure", method: http.MethodPost, target: "/api/v1/customers", body: `{"name":"Maria Santos"}`, serviceErr: errors.New("database is locked"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&fakeReportService{}, &fakeLedgerService{err: tt.serviceErr}, nil)
			w := perform(router, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		database   *fakeHealth
		cache      *fakeCache
		wantStatus int
		wantHealth string
		wantCache  string
	}{
		{name: "all healthy", database: &fakeHealth{}, cache: &fakeCache{enabled: true}, wantStatus: http.StatusOK, wantHealth: "healthy", wantCache: "healthy"},
		{name: "cache disabled", database: &fakeHealth{}, cache: &fakeCache{}, wantStatus: http.StatusOK, wantHealth: "healthy", wantCache: "disabled"},
		{name: "cache down degrades", database: &fakeHealth{}, cache: &fakeCache{enabled: true, err: errors.New("refused")}, wantStatus: http.StatusOK, wantHealth: "degraded", wantCache: "unhealthy"},
		{name: "database down", database: &fakeHealth{err: errors.New("closed")}, cache: &fakeCache{}, wantStatus: http.StatusServiceUnavailable, wantHealth: "unhealthy", wantCache: "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&fakeReportService{}, &fakeLedgerService{}, &RouterConfig{Database: tt.database, Cache: tt.cache})

			w := perform(router, http.MethodGet, "/health", "")
			assert.Equal(t, tt.wantStatus, w.Code)

			var health models.HealthCheck
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
			assert.Equal(t, tt.wantHealth, health.Status)
			assert.Equal(t, tt.wantCache, health.Services["cache"])
			assert.Equal(t, Version, health.Version)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := observability.NewMetrics()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupMiddleware(router, &MiddlewareConfig{Metrics: metrics})
	SetupRoutes(router, &RouterConfig{
		ReportService: &fakeReportService{},
		LedgerService: &fakeLedgerService{},
		Metrics:       metrics,
	})

	w := perform(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `dailysales_http_requests_total{code="200",method="GET",route="/health"} 1`)

	without := setupRouter(&fakeReportService{}, &fakeLedgerService{}, nil)
	assert.Equal(t, http.StatusNotFound, perform(without, http.MethodGet, "/metrics", "").Code)
}
