package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/cache"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/observability"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/reports"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"
)

// ReportConfig holds report defaults
type ReportConfig struct {
	// TopCount is the ranking length used when a request gives none. Zero returns
	// every row.
	TopCount int

	// Location decides calendar months and the default range
	Location *time.Location

	// Metrics receives report build durations; nil records nothing
	Metrics *observability.Metrics
}

// reportService implements the ReportService interface
type reportService struct {
	snapshots repositories.SnapshotReader
	sales     repositories.SaleRepository
	cache     *cache.ReportCache
	validator *validator.Validate
	logger    *logrus.Logger
	config    ReportConfig
	now       func() time.Time
}

// reportWindow is a validated request
type reportWindow struct {
	start time.Time
	end   time.Time
	count int
}

// NewReportService creates a new report service instance. The cache may be nil.
func NewReportService(snapshots repositories.SnapshotReader, sales repositories.SaleRepository, reportCache *cache.ReportCache, config ReportConfig, logger *logrus.Logger) ReportService {
	if logger == nil {
		logger = logrus.New()
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &reportService{
		snapshots: snapshots,
		sales:     sales,
		cache:     reportCache,
		validator: validator.New(),
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// DefaultRange returns the start of now's year through the last second of now's month
func (s *reportService) DefaultRange(now time.Time) (time.Time, time.Time) {
	now = now.In(s.config.Location)
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, s.config.Location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.config.Location)
	end := monthStart.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// Summary returns profit, expenses, net and units sold for the range
func (s *reportService) Summary(ctx context.Context, req *ReportRequest) (*models.RangeSummary, error) {
	window, err := s.window(req)
	if err != nil {
		return nil, err
	}

	var summary models.RangeSummary
	err = s.fetch(ctx, "summary", window, &summary, func(snapshot *models.Snapshot) interface{} {
		return reports.Summarize(snapshot.Sales, snapshot.Expenses, window.start.Unix(), window.end.Unix())
	})
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// MonthlyTrend returns one profit/expense bucket per calendar month of the range
func (s *reportService) MonthlyTrend(ctx context.Context, req *ReportRequest) ([]models.TrendBucket, error) {
	window, err := s.window(req)
	if err != nil {
		return nil, err
	}

	var buckets []models.TrendBucket
	err = s.fetch(ctx, "monthly", window, &buckets, func(snapshot *models.Snapshot) interface{} {
		return reports.MonthlyProfitExpenses(snapshot.Sales, snapshot.Expenses, window.start, window.end)
	})
	if err != nil {
		return nil, err
	}

	return buckets, nil
}

// TopProducts ranks products by revenue
func (s *reportService) TopProducts(ctx context.Context, req *ReportRequest) ([]models.ProductSales, error) {
	window, err := s.window(req)
	if err != nil {
		return nil, err
	}

	var rows []models.ProductSales
	err = s.fetch(ctx, "top-products", window, &rows, func(snapshot *models.Snapshot) interface{} {
		return reports.TopProducts(snapshot.Sales, window.start.Unix(), window.end.Unix(), window.count)
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// TopCategories ranks categories by revenue
func (s *reportService) TopCategories(ctx context.Context, req *ReportRequest) ([]models.CategorySales, error) {
	window, err := s.window(req)
	if err != nil {
		return nil, err
	}

	var rows []models.CategorySales
	err = s.fetch(ctx, "top-categories", window, &rows, func(snapshot *models.Snapshot) interface{} {
		return reports.TopCategories(snapshot.Sales, window.start.Unix(), window.end.Unix(), window.count)
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// TopCustomers ranks customers by profit
func (s *reportService) TopCustomers(ctx context.Context, req *ReportRequest) ([]models.CustomerSales, error) {
	window, err := s.window(req)
	if err != nil {
		return nil, err
	}

	var rows []models.CustomerSales
	err = s.fetch(ctx, "top-customers", window, &rows, func(snapshot *models.Snapshot) interface{} {
		return reports.TopCustomers(snapshot.Sales, window.start.Unix(), window.end.Unix(), window.count)
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Dashboard computes every figure of the reports page from one snapshot
func (s *reportService) Dashboard(ctx context.Context, req *ReportRequest) (*models.Dashboard, error) {
	window, err := s.window(req)
	if err != nil {
		return nil, err
	}

	var dashboard models.Dashboard
	err = s.fetch(ctx, "dashboard", window, &dashboard, func(snapshot *models.Snapshot) interface{} {
		start, end := window.start.Unix(), window.end.Unix()
		return models.Dashboard{
			Summary:       reports.Summarize(snapshot.Sales, snapshot.Expenses, start, end),
			Monthly:       reports.MonthlyProfitExpenses(snapshot.Sales, snapshot.Expenses, window.start, window.end),
			TopProducts:   reports.TopProducts(snapshot.Sales, start, end, window.count),
			TopCategories: reports.TopCategories(snapshot.Sales, start, end, window.count),
			TopCustomers:  reports.TopCustomers(snapshot.Sales, start, end, window.count),
		}
	})
	if err != nil {
		return nil, err
	}

	return &dashboard, nil
}

// SaleValuation returns the subtotal/total/profit breakdown of one sale
func (s *reportService) SaleValuation(ctx context.Context, saleID string) (*models.SaleValuation, error) {
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	valuation := reports.Valuate(sale)
	return &valuation, nil
}

// window validates a request and fills in the default range and count
func (s *reportService) window(req *ReportRequest) (reportWindow, error) {
	if req == nil {
		req = &ReportRequest{}
	}

	if err := s.validator.Struct(req); err != nil {
		return reportWindow{}, fmt.Errorf("validation failed: %w", err)
	}

	defaultStart, defaultEnd := s.DefaultRange(s.now())
	window := reportWindow{
		start: defaultStart,
		end:   defaultEnd,
		count: req.Count,
	}
	if !req.Start.IsZero() {
		window.start = req.Start.In(s.config.Location)
	}
	if !req.End.IsZero() {
		window.end = req.End.In(s.config.Location)
	}
	if window.count == 0 {
		window.count = s.config.TopCount
	}

	if window.end.Before(window.start) {
		return reportWindow{}, ErrInvalidRange
	}

	return window, nil
}

// fetch serves a report from the cache, computing it from a fresh snapshot on a miss
func (s *reportService) fetch(ctx context.Context, kind string, window reportWindow, dest interface{}, compute func(*models.Snapshot) interface{}) error {
	loader := func(ctx context.Context) (interface{}, error) {
		start := time.Now()
		snapshot, err := s.snapshots.LoadSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}

		result := compute(snapshot)
		s.config.Metrics.ObserveReportBuild(kind, time.Since(start))

		s.logger.WithFields(logrus.Fields{
			"report":   kind,
			"start":    window.start.Unix(),
			"end":      window.end.Unix(),
			"count":    window.count,
			"sales":    len(snapshot.Sales),
			"expenses": len(snapshot.Expenses),
			"duration": time.Since(start),
		}).Debug("Report computed")

		return result, nil
	}

	key, err := s.cache.BuildKey(ctx,
		kind,
		strconv.FormatInt(window.start.Unix(), 10),
		strconv.FormatInt(window.end.Unix(), 10),
		strconv.Itoa(window.count),
		s.config.Location.String(),
	)
	if err != nil {
		s.logger.WithError(err).Warn("Report cache unavailable, computing directly")
		return cache.Load(ctx, dest, loader)
	}

	return s.cache.FetchJSON(ctx, key, dest, loader)
}
