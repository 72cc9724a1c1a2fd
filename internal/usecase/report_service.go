package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"agency-report-service/internal/domain"
	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"
	"agency-report-service/pkg/analytics"
	"agency-report-service/pkg/logger"
	"agency-report-service/pkg/metrics"
	"agency-report-service/pkg/timewindow"
)

// Report kinds, used as metric labels
const (
	ReportSales     = "sales"
	ReportCustomers = "customers"
	ReportEmployees = "employees"
	ReportLogStats  = "log_stats"
)

// ReportFilter narrows a report
type ReportFilter struct {
	Range       timewindow.Range
	StartDate   string
	EndDate     string
	EntityTypes []entity.EntityType
	Status      string
	EmployeeID  string
	CustomerID  string
}

// ReportSources are the stores reports read from. Employees may be nil.
type ReportSources struct {
	Records   map[entity.EntityType]repository.RecordSource
	Customers repository.CustomerSource
	Payments  repository.PaymentSource
	Logs      repository.ActivityLogSource
	Employees repository.EmployeeRepository
}

// ReportConfig holds report tunables
type ReportConfig struct {
	Segments   analytics.SegmentConfig
	TopN       int
	PageSize   int
	MaxRecords int
}

// EntityTotals are the money totals of one entity type
type EntityTotals struct {
	EntityType entity.EntityType `json:"entityType"`
	analytics.Totals
}

// PaymentSummary compares money collected with money billed
type PaymentSummary struct {
	Count       int               `json:"count"`
	Collected   float64           `json:"collected"`
	Refunded    float64           `json:"refunded"`
	Outstanding float64           `json:"outstanding"`
	ByMethod    []analytics.Share `json:"byMethod"`
}

// EmployeeProfile is the directory entry of the employee a report is filtered by
type EmployeeProfile struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
	Active     bool   `json:"active"`
}

// SalesReport is revenue, cost and profit over a window
type SalesReport struct {
	GeneratedAt time.Time                  `json:"generatedAt"`
	Window      timewindow.Window          `json:"window"`
	EntityTypes []entity.EntityType        `json:"entityTypes"`
	Employee    *EmployeeProfile           `json:"employee,omitempty"`
	Summary     analytics.AggregateResult  `json:"summary"`
	ByEntity    []EntityTotals             `json:"byEntity"`
	Payments    *PaymentSummary            `json:"payments,omitempty"`
	Growth      analytics.PeriodComparison `json:"growth"`
	Warnings    []SourceWarning            `json:"warnings,omitempty"`
	Partial     bool                       `json:"partial"`
}

// CustomerReport is the customer base split into segments
type CustomerReport struct {
	GeneratedAt  time.Time                    `json:"generatedAt"`
	Window       timewindow.Window            `json:"window"`
	Segmentation analytics.SegmentationResult `json:"segmentation"`
	TopCustomers []analytics.CustomerProfile  `json:"topCustomers"`
	NewCustomers int                          `json:"newCustomers"`
	SignupGrowth analytics.PeriodComparison   `json:"signupGrowth"`
	Warnings     []SourceWarning              `json:"warnings,omitempty"`
	Partial      bool                         `json:"partial"`
}

// EmployeeRow is one employee's bookings and activity in the window
type EmployeeRow struct {
	EmployeeID string         `json:"employeeId"`
	Name       string         `json:"name"`
	Department string         `json:"department,omitempty"`
	Bookings   int            `json:"bookings"`
	Revenue    float64        `json:"revenue"`
	Cost       float64        `json:"cost"`
	Profit     float64        `json:"profit"`
	ByEntity   map[string]int `json:"byEntity"`
	Actions    int            `json:"actions"`
	Logins     int            `json:"logins"`
}

// EmployeePerformanceReport ranks employees by revenue
type EmployeePerformanceReport struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	Window      timewindow.Window `json:"window"`
	Employees   []EmployeeRow     `json:"employees"`
	Unassigned  analytics.Totals  `json:"unassigned"`
	Warnings    []SourceWarning   `json:"warnings,omitempty"`
	Partial     bool              `json:"partial"`
}

// ReportService builds the cross-entity reports
type ReportService struct {
	sources  ReportSources
	merger   *Merger
	resolver *timewindow.Resolver
	cfg      ReportConfig
	logger   logger.Logger
	metrics  *metrics.Metrics
}

// NewReportService creates a new report service
func NewReportService(
	sources ReportSources,
	merger *Merger,
	resolver *timewindow.Resolver,
	cfg ReportConfig,
	log logger.Logger,
	m *metrics.Metrics,
) *ReportService {
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	return &ReportService{
		sources:  sources,
		merger:   merger,
		resolver: resolver,
		cfg:      cfg,
		logger:   log,
		metrics:  m,
	}
}

func (s *ReportService) observe(kind string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ReportDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ReportsFailed.WithLabelValues(kind).Inc()
		return
	}
	s.metrics.ReportsGenerated.WithLabelValues(kind).Inc()
}

func (s *ReportService) specs(types []entity.EntityType, filters []repository.Predicate) []SourceSpec {
	if len(types) == 0 {
		types = entity.BookingEntityTypes
	}
	specs := make([]SourceSpec, 0, len(types))
	for _, et := range types {
		specs = append(specs, SourceSpec{
			EntityType: et,
			Source:     s.sources.Records[et],
			Filters:    filters,
		})
	}
	return specs
}

func (f ReportFilter) equalityFilters() []repository.Predicate {
	var preds []repository.Predicate
	if f.Status != "" {
		preds = append(preds, repository.Eq("status", f.Status))
	}
	if f.EmployeeID != "" {
		preds = append(preds, repository.Eq("employeeId", f.EmployeeID))
	}
	if f.CustomerID != "" {
		preds = append(preds, repository.Eq("customerId", f.CustomerID))
	}
	return preds
}

func (f ReportFilter) validate() error {
	for _, et := range f.EntityTypes {
		if !et.Valid() {
			return fmt.Errorf("%w: unknown entity type %q", domain.ErrInvalidArgument, et)
		}
	}
	return nil
}

// SalesReport aggregates bookings created in the filter window
func (s *ReportService) SalesReport(ctx context.Context, f ReportFilter) (report *SalesReport, err error) {
	defer func(start time.Time) { s.observe(ReportSales, start, err) }(time.Now())
	if err := f.validate(); err != nil {
		return nil, err
	}

	w, err := s.resolver.Resolve(f.Range, f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	now := s.resolver.Current()
	types := f.EntityTypes
	if len(types) == 0 {
		types = entity.BookingEntityTypes
	}

	filters := append(f.equalityFilters(), windowPredicates("createdAt", w)...)
	merged, err := s.merger.Merge(ctx, s.specs(types, filters))
	if err != nil {
		return nil, err
	}

	report = &SalesReport{
		GeneratedAt: now,
		Window:      w,
		EntityTypes: types,
		Summary: analytics.Aggregate(merged.Records, map[string]analytics.Dimension{
			"entityType": analytics.ByEntityType,
			"status":     analytics.ByStatus,
		}, s.resolver.Loc()),
		Warnings: merged.Warnings,
		Partial:  merged.Partial,
	}
	if f.EmployeeID != "" {
		report.Employee = s.employeeProfile(ctx, f.EmployeeID)
	}

	byType := make(map[entity.EntityType][]entity.Record, len(types))
	for _, r := range merged.Records {
		byType[r.EntityType] = append(byType[r.EntityType], r)
	}
	for _, et := range types {
		report.ByEntity = append(report.ByEntity, EntityTotals{EntityType: et, Totals: analytics.SumTotals(byType[et])})
	}

	if s.sources.Payments != nil {
		payments, err := s.payments(ctx, w, f.CustomerID)
		if err != nil {
			s.logger.Warn("Payment source failed", "error", err)
			report.Partial = true
			report.Warnings = append(report.Warnings, SourceWarning{EntityType: "payment", Message: err.Error()})
		} else {
			payments.Outstanding = report.Summary.Totals.Revenue - payments.Collected
			report.Payments = payments
		}
	}

	growth, warnings, err := s.bookingGrowth(ctx, types, f.equalityFilters(), now)
	if err != nil {
		s.logger.Warn("Growth comparison failed", "error", err)
		report.Partial = true
		report.Warnings = append(report.Warnings, SourceWarning{Message: "growth: " + err.Error()})
	} else {
		report.Growth = growth
		report.Warnings = append(report.Warnings, warnings...)
	}
	return report, nil
}

// bookingGrowth counts bookings in the current and two previous calendar months
func (s *ReportService) bookingGrowth(ctx context.Context, types []entity.EntityType, filters []repository.Predicate, now time.Time) (analytics.PeriodComparison, []SourceWarning, error) {
	windows := analytics.ComparisonWindows(now)
	span := timewindow.Window{Start: windows[2].Start, End: windows[0].End}
	merged, err := s.merger.Merge(ctx, s.specs(types, append(filters, windowPredicates("createdAt", span)...)))
	if err != nil {
		return analytics.PeriodComparison{}, nil, err
	}
	times := make([]time.Time, 0, len(merged.Records))
	for _, r := range merged.Records {
		if r.CreatedAt != nil {
			times = append(times, *r.CreatedAt)
		}
	}
	return analytics.ComparePeriods(times, now), merged.Warnings, nil
}

func (s *ReportService) payments(ctx context.Context, w timewindow.Window, customerID string) (*PaymentSummary, error) {
	filters := windowPredicates("paidAt", w)
	if customerID != "" {
		filters = append(filters, repository.Eq("customerId", customerID))
	}
	entries, _, err := drainPages(ctx, repository.Query{Filters: filters, Limit: s.cfg.PageSize}, s.cfg.MaxRecords,
		func(ctx context.Context, q repository.Query) ([]entity.PaymentEntry, string, error) {
			page, err := s.sources.Payments.FetchPayments(ctx, q)
			if err != nil {
				return nil, "", err
			}
			return page.Items, page.NextCursor, nil
		})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	methods := analytics.NewDistribution()
	summary := &PaymentSummary{}
	for _, p := range entries {
		switch p.Status {
		case entity.PaymentRefunded:
			summary.Refunded += p.Amount.Float()
		case entity.PaymentPaid, "":
			summary.Count++
			summary.Collected += p.Amount.Float()
			method := p.Method
			if method == "" {
				method = "unknown"
			}
			methods.Add(method, p.Amount.Float())
		}
	}
	summary.Collected -= summary.Refunded
	summary.ByMethod = methods.Shares()
	return summary, nil
}

// CustomerReport segments every customer on their full booking history
func (s *ReportService) CustomerReport(ctx context.Context, f ReportFilter) (report *CustomerReport, err error) {
	defer func(start time.Time) { s.observe(ReportCustomers, start, err) }(time.Now())

	w, err := s.resolver.Resolve(f.Range, f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	now := s.resolver.Current()

	if s.sources.Customers == nil {
		return nil, fmt.Errorf("customer source not configured")
	}
	customers, truncated, err := drainPages(ctx, repository.Query{Limit: s.cfg.PageSize}, s.cfg.MaxRecords,
		func(ctx context.Context, q repository.Query) ([]entity.Customer, string, error) {
			page, err := s.sources.Customers.FetchCustomers(ctx, q)
			if err != nil {
				return nil, "", err
			}
			return page.Items, page.NextCursor, nil
		})
	if err != nil {
		return nil, err
	}

	merged, err := s.merger.Merge(ctx, s.specs(entity.BookingEntityTypes, nil))
	if err != nil {
		return nil, err
	}

	seg := analytics.Segment(customers, merged.Records, s.cfg.Segments, now)
	report = &CustomerReport{
		GeneratedAt:  now,
		Window:       w,
		TopCustomers: analytics.TopBySpend(seg.Profiles, s.cfg.TopN),
		Warnings:     merged.Warnings,
		Partial:      merged.Partial,
	}
	if truncated {
		report.Warnings = append(report.Warnings, SourceWarning{
			EntityType: "customer",
			Message:    fmt.Sprintf("truncated at %d records", s.cfg.MaxRecords),
		})
	}

	signups := make([]time.Time, 0, len(customers))
	for _, c := range customers {
		if c.CreatedAt == nil {
			continue
		}
		signups = append(signups, *c.CreatedAt)
		if w.Bounded() && w.Contains(*c.CreatedAt) {
			report.NewCustomers++
		}
	}
	if !w.Bounded() {
		report.NewCustomers = len(signups)
	}
	report.SignupGrowth = analytics.ComparePeriods(signups, now)

	seg.Profiles = nil
	report.Segmentation = seg
	return report, nil
}

// EmployeePerformance joins bookings and activity per employee over the window
func (s *ReportService) EmployeePerformance(ctx context.Context, f ReportFilter) (report *EmployeePerformanceReport, err error) {
	defer func(start time.Time) { s.observe(ReportEmployees, start, err) }(time.Now())
	if err := f.validate(); err != nil {
		return nil, err
	}

	w, err := s.resolver.Resolve(f.Range, f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	now := s.resolver.Current()

	var filters []repository.Predicate
	if f.EmployeeID != "" {
		filters = append(filters, repository.Eq("employeeId", f.EmployeeID))
	}
	if f.Status != "" {
		filters = append(filters, repository.Eq("status", f.Status))
	}
	filters = append(filters, windowPredicates("createdAt", w)...)
	merged, err := s.merger.Merge(ctx, s.specs(f.EntityTypes, filters))
	if err != nil {
		return nil, err
	}

	report = &EmployeePerformanceReport{
		GeneratedAt: now,
		Window:      w,
		Employees:   []EmployeeRow{},
		Warnings:    merged.Warnings,
		Partial:     merged.Partial,
	}

	rows := make(map[string]*EmployeeRow)
	row := func(id string) *EmployeeRow {
		r, ok := rows[id]
		if !ok {
			r = &EmployeeRow{EmployeeID: id, ByEntity: make(map[string]int, len(entity.BookingEntityTypes))}
			for _, et := range entity.BookingEntityTypes {
				r.ByEntity[string(et)] = 0
			}
			rows[id] = r
		}
		return r
	}

	var unassigned []entity.Record
	for _, rec := range merged.Records {
		if rec.EmployeeID == "" {
			unassigned = append(unassigned, rec)
			continue
		}
		r := row(rec.EmployeeID)
		r.Bookings++
		r.Revenue += rec.Payment.Price.Float()
		r.Cost += rec.Payment.Cost.Float()
		r.ByEntity[string(rec.EntityType)]++
	}
	report.Unassigned = analytics.SumTotals(unassigned)

	if s.sources.Logs != nil {
		logFilters := windowPredicates("actionTime", w)
		if f.EmployeeID != "" {
			logFilters = append(logFilters, repository.Eq("employeeId", f.EmployeeID))
		}
		entries, truncated, err := drainPages(ctx, repository.Query{
			Filters: logFilters,
			Sort:    repository.Sort{Field: defaultLogSortField, Direction: repository.SortDesc},
			Limit:   s.cfg.PageSize,
		}, s.cfg.MaxRecords, func(ctx context.Context, q repository.Query) ([]entity.ActivityLogEntry, string, error) {
			page, err := s.sources.Logs.FetchLogs(ctx, q)
			if err != nil {
				return nil, "", err
			}
			return page.Items, page.NextCursor, nil
		})
		if err != nil {
			s.logger.Warn("Activity log source failed", "error", err)
			report.Partial = true
			report.Warnings = append(report.Warnings, SourceWarning{EntityType: "activity_log", Message: err.Error()})
		}
		if truncated {
			report.Warnings = append(report.Warnings, SourceWarning{
				EntityType: "activity_log",
				Message:    fmt.Sprintf("truncated at %d records", s.cfg.MaxRecords),
			})
		}
		// Entries arrive newest first, so the first name seen is the latest.
		for _, e := range entries {
			if e.EmployeeID == "" {
				continue
			}
			r := row(e.EmployeeID)
			r.Actions++
			if e.ActionType == entity.ActionLogin {
				r.Logins++
			}
			if r.Name == "" {
				r.Name = e.EmployeeName
			}
		}
	}

	for _, r := range rows {
		r.Profit = r.Revenue - r.Cost
		report.Employees = append(report.Employees, *r)
	}
	sort.Slice(report.Employees, func(i, j int) bool {
		a, b := report.Employees[i], report.Employees[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.EmployeeID < b.EmployeeID
	})
	s.labelEmployees(ctx, report.Employees)
	return report, nil
}

// employeeProfile looks up one employee; nil when there is no directory or no match
func (s *ReportService) employeeProfile(ctx context.Context, code string) *EmployeeProfile {
	if s.sources.Employees == nil {
		return nil
	}
	e, err := s.sources.Employees.GetByCode(ctx, code)
	if err != nil {
		s.logger.Debug("Employee not found in directory", "employeeId", code, "error", err)
		return nil
	}
	return &EmployeeProfile{
		EmployeeID: e.Code,
		Name:       e.Name,
		Role:       e.Role,
		Department: e.Department,
		Active:     e.Active,
	}
}

func (s *ReportService) labelEmployees(ctx context.Context, rows []EmployeeRow) {
	if s.sources.Employees == nil || len(rows) == 0 {
		return
	}
	codes := make([]string, 0, len(rows))
	for _, r := range rows {
		codes = append(codes, r.EmployeeID)
	}
	found, err := s.sources.Employees.FindByCodes(ctx, codes)
	if err != nil {
		s.logger.Warn("Employee directory lookup failed", "error", err)
		return
	}
	for i := range rows {
		if e, ok := found[rows[i].EmployeeID]; ok {
			if e.Name != "" {
				rows[i].Name = e.Name
			}
			rows[i].Department = e.Department
		}
	}
}

// drainPages follows cursors until exhaustion or until limit items were read.
// The second result reports whether items were left unread.
func drainPages[T any](
	ctx context.Context,
	q repository.Query,
	limit int,
	fetch func(context.Context, repository.Query) ([]T, string, error),
) ([]T, bool, error) {
	var out []T
	for {
		items, next, err := fetch(ctx, q)
		if err != nil {
			return nil, false, err
		}
		out = append(out, items...)
		if limit > 0 && len(out) >= limit {
			truncated := len(out) > limit || next != ""
			if len(out) > limit {
				out = out[:limit]
			}
			return out, truncated, nil
		}
		if next == "" {
			return out, false, nil
		}
		q.Cursor = next
	}
}
