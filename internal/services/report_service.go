package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"table_ordering/internal/models"
	"table_ordering/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	dateLayout     = "2006-01-02"
	rebuildWorkers = 4
	maxRebuildDays = 366
)

// Dashboard is the admin overview across every venue in scope.
type Dashboard struct {
	ActiveVenues int64                 `json:"active_venues"`
	TotalOrders  int64                 `json:"total_orders"`
	TotalRevenue decimal.Decimal       `json:"total_revenue"`
	TodayOrders  int64                 `json:"today_orders"`
	TodayRevenue decimal.Decimal       `json:"today_revenue"`
	RecentOrders []models.Order        `json:"recent_orders"`
	TopProducts  []models.ProductSales `json:"top_products"`
}

type DailySales struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type SalesSeries struct {
	From         string                `json:"from"`
	To           string                `json:"to"`
	Daily        []DailySales          `json:"daily"`
	Hourly       [24]int               `json:"hourly"`
	ProductSales []models.ProductSales `json:"product_sales"`
}

type ReportService interface {
	AggregateDay(ctx context.Context, venueID uint, day time.Time) (*models.SalesReport, error)
	RebuildRange(ctx context.Context, venueID uint, from, to time.Time) (int, error)
	RefreshRecent(ctx context.Context) error
	RunScheduler(ctx context.Context, interval time.Duration) error
	Dashboard(scope repository.Scope) (*Dashboard, error)
	SalesSeries(scope repository.Scope, from, to time.Time) (*SalesSeries, error)
	StoredReports(scope repository.Scope, from, to time.Time) ([]models.SalesReport, error)
	Location() *time.Location
}

type reportService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	reportRepo  repository.ReportRepository
	catalogRepo repository.CatalogRepository
	loc         *time.Location
	now         func() time.Time
}

func NewReportService(db *gorm.DB, orderRepo repository.OrderRepository, reportRepo repository.ReportRepository, catalogRepo repository.CatalogRepository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{
		db:          db,
		orderRepo:   orderRepo,
		reportRepo:  reportRepo,
		catalogRepo: catalogRepo,
		loc:         loc,
		now:         time.Now,
	}
}

func (s *reportService) Location() *time.Location {
	return s.loc
}

func (s *reportService) startOfDay(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// AggregateDay recomputes the venue's SalesReport and ProductSales rows for
// one calendar day in the report timezone. Cancelled orders are skipped.
// Re-running a day overwrites the previous result.
func (s *reportService) AggregateDay(ctx context.Context, venueID uint, day time.Time) (*models.SalesReport, error) {
	start := s.startOfDay(day)
	end := start.AddDate(0, 0, 1)
	date := start.Format(dateLayout)

	orders, err := s.orderRepo.ListByVenueAndRange(venueID, start, end)
	if err != nil {
		return nil, err
	}

	var hourly [24]int
	revenue := decimal.Zero
	count, itemsSold := 0, 0
	type productTotal struct {
		quantity int
		revenue  decimal.Decimal
	}
	byProduct := make(map[uint]*productTotal)

	for _, order := range orders {
		if order.Status == string(models.OrderCancelled) {
			continue
		}
		count++
		revenue = revenue.Add(order.TotalAmount)
		hourly[order.CreatedAt.In(s.loc).Hour()]++
		for _, item := range order.Items {
			itemsSold += item.Quantity
			pt, ok := byProduct[item.ProductID]
			if !ok {
				pt = &productTotal{revenue: decimal.Zero}
				byProduct[item.ProductID] = pt
			}
			pt.quantity += item.Quantity
			pt.revenue = pt.revenue.Add(item.TotalPrice)
		}
	}

	breakdown, err := json.Marshal(hourly)
	if err != nil {
		return nil, err
	}
	report := &models.SalesReport{
		VenueID:           venueID,
		Date:              date,
		TotalOrders:       count,
		TotalRevenue:      revenue,
		TotalItemsSold:    itemsSold,
		AverageOrderValue: decimal.Zero,
		PeakHour:          peakHour(hourly),
		HourlyBreakdown:   datatypes.JSON(breakdown),
	}
	if count > 0 {
		report.AverageOrderValue = revenue.Div(decimal.NewFromInt(int64(count))).Round(2)
	}

	productIDs := make([]uint, 0, len(byProduct))
	for id := range byProduct {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })
	rows := make([]models.ProductSales, 0, len(productIDs))
	for _, id := range productIDs {
		rows = append(rows, models.ProductSales{
			VenueID:      venueID,
			ProductID:    id,
			Date:         date,
			QuantitySold: byProduct[id].quantity,
			Revenue:      byProduct[id].revenue,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reports := s.reportRepo.WithTx(tx)
		if err := reports.UpsertSalesReport(report); err != nil {
			return err
		}
		return reports.ReplaceProductSales(venueID, date, rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store report for venue %d on %s: %w", venueID, date, err)
	}
	return s.reportRepo.GetSalesReport(venueID, date)
}

// peakHour returns the hour with the most orders, the earliest on a tie,
// or nil when there were no orders.
func peakHour(hourly [24]int) *int {
	peak, best := -1, 0
	for hour, n := range hourly {
		if n > best {
			peak, best = hour, n
		}
	}
	if peak < 0 {
		return nil
	}
	return &peak
}

// RebuildRange re-aggregates every day from..to inclusive and returns the
// number of days written.
func (s *reportService) RebuildRange(ctx context.Context, venueID uint, from, to time.Time) (int, error) {
	start, end := s.startOfDay(from), s.startOfDay(to)
	if end.Before(start) {
		return 0, validationError("range end %s is before start %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	if len(days) > maxRebuildDays {
		return 0, validationError("range covers %d days, at most %d allowed", len(days), maxRebuildDays)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rebuildWorkers)
	for _, day := range days {
		day := day
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := s.AggregateDay(ctx, venueID, day)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(days), nil
}

// RefreshRecent re-aggregates today and yesterday for every active venue.
func (s *reportService) RefreshRecent(ctx context.Context) error {
	venues, err := s.catalogRepo.ListVenues(repository.AllVenues(), true)
	if err != nil {
		return err
	}
	today := s.startOfDay(s.now())
	var errs []error
	for _, venue := range venues {
		if _, err := s.RebuildRange(ctx, venue.ID, today.AddDate(0, 0, -1), today); err != nil {
			errs = append(errs, fmt.Errorf("venue %s: %w", venue.Slug, err))
		}
	}
	return errors.Join(errs...)
}

// RunScheduler refreshes recent reports every interval until ctx is done.
func (s *reportService) RunScheduler(ctx context.Context, interval time.Duration) error {
	log.Printf("Report scheduler started (interval %s)", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Report scheduler stopped")
			return nil
		case <-ticker.C:
			if err := s.RefreshRecent(ctx); err != nil {
				log.Printf("Error refreshing reports: %v", err)
			}
		}
	}
}

func (s *reportService) Dashboard(scope repository.Scope) (*Dashboard, error) {
	venues, err := s.catalogRepo.CountActiveVenues(scope)
	if err != nil {
		return nil, err
	}
	all, err := s.orderRepo.Totals(scope, nil, nil)
	if err != nil {
		return nil, err
	}
	start := s.startOfDay(s.now())
	end := start.AddDate(0, 0, 1)
	today, err := s.orderRepo.Totals(scope, &start, &end)
	if err != nil {
		return nil, err
	}
	recent, err := s.orderRepo.ListRecent(scope, 10)
	if err != nil {
		return nil, err
	}
	top, err := s.reportRepo.TopProducts(scope, 5)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		ActiveVenues: venues,
		TotalOrders:  all.Count,
		TotalRevenue: all.Revenue,
		TodayOrders:  today.Count,
		TodayRevenue: today.Revenue,
		RecentOrders: recent,
		TopProducts:  top,
	}, nil
}

// SalesSeries reports per-day totals and the hour-of-day distribution of
// non-cancelled orders from..to inclusive.
func (s *reportService) SalesSeries(scope repository.Scope, from, to time.Time) (*SalesSeries, error) {
	start, last := s.startOfDay(from), s.startOfDay(to)
	if last.Before(start) {
		return nil, validationError("range end is before start")
	}
	end := last.AddDate(0, 0, 1)

	orders, err := s.orderRepo.ListByRange(scope, start, end)
	if err != nil {
		return nil, err
	}

	series := &SalesSeries{From: start.Format(dateLayout), To: last.Format(dateLayout)}
	index := make(map[string]int)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		index[d.Format(dateLayout)] = len(series.Daily)
		series.Daily = append(series.Daily, DailySales{Date: d.Format(dateLayout), Revenue: decimal.Zero})
	}
	for _, order := range orders {
		if order.Status == string(models.OrderCancelled) {
			continue
		}
		created := order.CreatedAt.In(s.loc)
		i, ok := index[created.Format(dateLayout)]
		if !ok {
			continue
		}
		series.Daily[i].Orders++
		series.Daily[i].Revenue = series.Daily[i].Revenue.Add(order.TotalAmount)
		series.Hourly[created.Hour()]++
	}

	series.ProductSales, err = s.reportRepo.ListProductSales(scope, series.From, series.To, 20)
	if err != nil {
		return nil, err
	}
	return series, nil
}

// StoredReports returns the aggregated SalesReport rows for from..to
// inclusive, newest first. Days never aggregated are absent.
func (s *reportService) StoredReports(scope repository.Scope, from, to time.Time) ([]models.SalesReport, error) {
	start, last := s.startOfDay(from), s.startOfDay(to)
	if last.Before(start) {
		return nil, validationError("range end is before start")
	}
	return s.reportRepo.ListSalesReports(scope, start.Format(dateLayout), last.Format(dateLayout))
}
