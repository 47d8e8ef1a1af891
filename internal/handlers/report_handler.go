package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/services"
	"github.com/KarlaDampilag/dailysalesexpenses/pkg/lambda"
)

// DateLayout is the calendar-date form accepted by start and end
const DateLayout = "2006-01-02"

type reportKind string

const (
	reportSummary       reportKind = "summary"
	reportMonthly       reportKind = "monthly"
	reportTopProducts   reportKind = "top-products"
	reportTopCategories reportKind = "top-categories"
	reportTopCustomers  reportKind = "top-customers"
	reportDashboard     reportKind = "dashboard"
)

// ReportHandler handles report HTTP requests
type ReportHandler struct {
	reportService services.ReportService
	location      *time.Location
}

// NewReportHandler creates a new report handler. Calendar dates in queries are read
// in location; nil means UTC.
func NewReportHandler(reportService services.ReportService, location *time.Location) *ReportHandler {
	if location == nil {
		location = time.UTC
	}
	return &ReportHandler{
		reportService: reportService,
		location:      location,
	}
}

// @Summary Range summary
// @Description Profit, expenses, net and units sold between start and end inclusive
// @Tags reports
// @Produce json
// @Param start query string false "Unix seconds or YYYY-MM-DD; defaults to the start of the current year"
// @Param end query string false "Unix seconds or YYYY-MM-DD (whole day); defaults to the end of the current month"
// @Success 200 {object} models.RangeSummary
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	h.serve(c, reportSummary)
}

// @Summary Monthly trend
// @Description One profit/expense bucket per calendar month, labelled MM-YYYY
// @Tags reports
// @Produce json
// @Param start query string false "Unix seconds or YYYY-MM-DD"
// @Param end query string false "Unix seconds or YYYY-MM-DD"
// @Success 200 {array} models.TrendBucket
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/monthly [get]
func (h *ReportHandler) GetMonthlyTrend(c *gin.Context) {
	h.serve(c, reportMonthly)
}

// @Summary Top products
// @Description Products ranked by revenue
// @Tags reports
// @Produce json
// @Param start query string false "Unix seconds or YYYY-MM-DD"
// @Param end query string false "Unix seconds or YYYY-MM-DD"
// @Param count query int false "Number of rows"
// @Success 200 {array} models.ProductSales
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/top-products [get]
func (h *ReportHandler) GetTopProducts(c *gin.Context) {
	h.serve(c, reportTopProducts)
}

// @Summary Top categories
// @Description Categories ranked by revenue
// @Tags reports
// @Produce json
// @Param start query string false "Unix seconds or YYYY-MM-DD"
// @Param end query string false "Unix seconds or YYYY-MM-DD"
// @Param count query int false "Number of rows"
// @Success 200 {array} models.CategorySales
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/top-categories [get]
func (h *ReportHandler) GetTopCategories(c *gin.Context) {
	h.serve(c, reportTopCategories)
}

// @Summary Top customers
// @Description Customers ranked by profit
// @Tags reports
// @Produce json
// @Param start query string false "Unix seconds or YYYY-MM-DD"
// @Param end query string false "Unix seconds or YYYY-MM-DD"
// @Param count query int false "Number of rows"
// @Success 200 {array} models.CustomerSales
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/top-customers [get]
func (h *ReportHandler) GetTopCustomers(c *gin.Context) {
	h.serve(c, reportTopCustomers)
}

// @Summary Reports dashboard
// @Description Summary, monthly trend and rankings computed from one snapshot
// @Tags reports
// @Produce json
// @Param start query string false "Unix seconds or YYYY-MM-DD"
// @Param end query string false "Unix seconds or YYYY-MM-DD"
// @Param count query int false "Number of rows per ranking"
// @Success 200 {object} models.Dashboard
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/dashboard [get]
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	h.serve(c, reportDashboard)
}

// @Summary Sale valuation
// @Description Subtotal, discount, tax, shipping, total and profit of one sale
// @Tags sales
// @Produce json
// @Param id path string true "Sale ID"
// @Success 200 {object} models.SaleValuation
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sales/{id}/valuation [get]
func (h *ReportHandler) GetSaleValuation(c *gin.Context) {
	valuation, err := h.valuation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "Failed to value sale")
		return
	}
	c.JSON(http.StatusOK, valuation)
}

// Lambda-compatible handlers

// HandleSummary handles summary requests for Lambda
func (h *ReportHandler) HandleSummary(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.handle(ctx, reportSummary, req)
}

// HandleMonthly handles monthly trend requests for Lambda
func (h *ReportHandler) HandleMonthly(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.handle(ctx, reportMonthly, req)
}

func (h *ReportHandler) HandleTopProducts(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.handle(ctx, reportTopProducts, req)
}

func (h *ReportHandler) HandleTopCategories(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.handle(ctx, reportTopCategories, req)
}

func (h *ReportHandler) HandleTopCustomers(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.handle(ctx, reportTopCustomers, req)
}

// HandleDashboard handles dashboard requests for Lambda
func (h *ReportHandler) HandleDashboard(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.handle(ctx, reportDashboard, req)
}

// HandleSaleValuation handles sale valuation requests for Lambda
func (h *ReportHandler) HandleSaleValuation(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	valuation, err := h.valuation(ctx, req.PathParams["id"])
	if err != nil {
		return jsonResponse(errorBody(err, "Failed to value sale"))
	}
	return jsonResponse(http.StatusOK, valuation)
}

func (h *ReportHandler) handle(ctx context.Context, kind reportKind, req *lambda.Request) (*lambda.Response, error) {
	result, err := h.report(ctx, kind, func(key string) string {
		return req.QueryParams[key]
	})
	if err != nil {
		return jsonResponse(errorBody(err, "Failed to compute report"))
	}
	return jsonResponse(http.StatusOK, result)
}

func (h *ReportHandler) serve(c *gin.Context, kind reportKind) {
	result, err := h.report(c.Request.Context(), kind, c.Query)
	if err != nil {
		writeError(c, err, "Failed to compute report")
		return
	}
	c.JSON(http.StatusOK, result)
}

// report parses the query and runs one report kind
func (h *ReportHandler) report(ctx context.Context, kind reportKind, query func(string) string) (interface{}, error) {
	req, err := h.parseReportRequest(query)
	if err != nil {
		return nil, err
	}

	switch kind {
	case reportSummary:
		return h.reportService.Summary(ctx, req)
	case reportMonthly:
		return h.reportService.MonthlyTrend(ctx, req)
	case reportTopProducts:
		return h.reportService.TopProducts(ctx, req)
	case reportTopCategories:
		return h.reportService.TopCategories(ctx, req)
	case reportTopCustomers:
		return h.reportService.TopCustomers(ctx, req)
	case reportDashboard:
		return h.reportService.Dashboard(ctx, req)
	default:
		return nil, fmt.Errorf("unknown report %q", kind)
	}
}

func (h *ReportHandler) valuation(ctx context.Context, id string) (*models.SaleValuation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &models.ValidationError{Field: "id", Message: "sale ID is required"}
	}
	return h.reportService.SaleValuation(ctx, id)
}

// parseReportRequest reads start, end and count. Missing values stay zero so the
// service applies its defaults.
func (h *ReportHandler) parseReportRequest(query func(string) string) (*services.ReportRequest, error) {
	req := &services.ReportRequest{}

	start, err := h.parseDate(query("start"), "start", false)
	if err != nil {
		return nil, err
	}
	end, err := h.parseDate(query("end"), "end", true)
	if err != nil {
		return nil, err
	}
	req.Start, req.End = start, end

	if raw := strings.TrimSpace(query("count")); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &models.ValidationError{
				Field:   "count",
				Message: "count must be an integer",
				Value:   raw,
			}
		}
		req.Count = count
	}

	return req, nil
}

// parseDate accepts unix seconds or a calendar date. A calendar date used as an end
// bound covers the whole day.
func (h *ReportHandler) parseDate(raw, field string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(seconds, 0).In(h.location), nil
	}

	day, err := time.ParseInLocation(DateLayout, raw, h.location)
	if err != nil {
		return time.Time{}, &models.ValidationError{
			Field:   field,
			Message: field + " must be unix seconds or YYYY-MM-DD",
			Value:   raw,
		}
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Second)
	}
	return day, nil
}

// jsonResponse encodes body into a Lambda response
func jsonResponse(status int, body interface{}) (*lambda.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return &lambda.Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       []byte(`{"error": "Failed to marshal response"}`),
		}, nil
	}

	return &lambda.Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       payload,
	}, nil
}
