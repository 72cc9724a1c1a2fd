package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"agency-report-service/internal/domain"
	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"
	"agency-report-service/pkg/analytics"
	"agency-report-service/pkg/logger"
	"agency-report-service/pkg/metrics"
	"agency-report-service/pkg/timewindow"
)

const (
	defaultLogSortField = "actionTime"
	defaultLogLimit     = 50
)

// LogSortFields are the fields the log listing can be ordered by
var LogSortFields = map[string]bool{
	"actionTime":   true,
	"actionType":   true,
	"category":     true,
	"employeeName": true,
}

// LogQuery selects a page of the activity log
type LogQuery struct {
	Limit         int
	Category      string
	ActionType    string
	EmployeeID    string
	StartDate     string
	EndDate       string
	ClientInfo    string
	SortBy        string
	SortDirection string
	Cursor        string
}

// LogPage is one page of the activity log. EffectiveCount may be lower than
// the requested limit when the clientInfo filter drops entries.
type LogPage struct {
	Items          []entity.ActivityLogEntry `json:"items"`
	NextCursor     string                    `json:"nextCursor,omitempty"`
	HasMore        bool                      `json:"hasMore"`
	EffectiveCount int                       `json:"effectiveCount"`
	Warnings       []string                  `json:"warnings,omitempty"`
}

// ActorCount is one row of the most active employees
type ActorCount struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
}

// LogStats summarises the whole activity log
type LogStats struct {
	TotalLogs             int            `json:"totalLogs"`
	LogsLast30Days        int            `json:"logsLast30Days"`
	LogsLast7Days         int            `json:"logsLast7Days"`
	TotalLogins           int            `json:"totalLogins"`
	LoginsToday           int            `json:"loginsToday"`
	ActiveEmployees30Days int            `json:"activeEmployees30Days"`
	ActiveEmployees7Days  int            `json:"activeEmployees7Days"`
	AvgDailyActions30Days float64        `json:"avgDailyActions30Days"`
	AvgDailyActions7Days  float64        `json:"avgDailyActions7Days"`
	ByActionType          map[string]int `json:"byActionType"`
	ByCategory            map[string]int `json:"byCategory"`
	ByHour                map[int]int    `json:"byHour"`
	ByWeekday             map[int]int    `json:"byWeekday"`
	ByMonth               map[int]int    `json:"byMonth"`
	TopActors             []ActorCount   `json:"topActors"`
	analytics.PeriodComparison
	Truncated   bool      `json:"truncated"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// LogServiceConfig bounds the log listing and the stats scan
type LogServiceConfig struct {
	MaxLimit int
	ScanCap  int
	PageSize int
	TopN     int
}

// LogService lists and summarises the activity log
type LogService struct {
	logs      repository.ActivityLogSource
	employees repository.EmployeeRepository
	resolver  *timewindow.Resolver
	cfg       LogServiceConfig
	logger    logger.Logger
	metrics   *metrics.Metrics
}

// NewLogService creates a new log service. employees may be nil.
func NewLogService(
	logs repository.ActivityLogSource,
	employees repository.EmployeeRepository,
	resolver *timewindow.Resolver,
	cfg LogServiceConfig,
	log logger.Logger,
	m *metrics.Metrics,
) *LogService {
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 500
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}
	return &LogService{
		logs:      logs,
		employees: employees,
		resolver:  resolver,
		cfg:       cfg,
		logger:    log,
		metrics:   m,
	}
}

// GetSystemLogs returns one page of log entries
func (s *LogService) GetSystemLogs(ctx context.Context, lq LogQuery) (*LogPage, error) {
	w, err := s.resolver.Dates(lq.StartDate, lq.EndDate)
	if err != nil {
		return nil, err
	}

	page := &LogPage{Items: []entity.ActivityLogEntry{}}

	sortField := lq.SortBy
	if sortField == "" {
		sortField = defaultLogSortField
	} else if !LogSortFields[sortField] {
		warning := domain.InvalidSortFieldWarning{Field: sortField, Fallback: defaultLogSortField}
		s.logger.Warn("Unsupported log sort field", "sortBy", sortField, "fallback", defaultLogSortField)
		page.Warnings = append(page.Warnings, warning.String())
		sortField = defaultLogSortField
	}
	direction := repository.SortDesc
	if strings.EqualFold(lq.SortDirection, string(repository.SortAsc)) {
		direction = repository.SortAsc
	}

	limit := lq.Limit
	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	var filters []repository.Predicate
	if lq.Category != "" {
		filters = append(filters, repository.Eq("category", lq.Category))
	}
	if lq.ActionType != "" {
		filters = append(filters, repository.Eq("actionType", lq.ActionType))
	}
	if lq.EmployeeID != "" {
		filters = append(filters, repository.Eq("employeeId", lq.EmployeeID))
	}
	filters = append(filters, windowPredicates("actionTime", w)...)

	res, err := s.logs.FetchLogs(ctx, repository.Query{
		Filters: filters,
		Sort:    repository.Sort{Field: sortField, Direction: direction},
		Limit:   limit,
		Cursor:  lq.Cursor,
	})
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(lq.ClientInfo))
	for _, e := range res.Items {
		if needle != "" && !clientInfoContains(e, needle) {
			continue
		}
		page.Items = append(page.Items, e)
	}
	page.NextCursor = res.NextCursor
	page.HasMore = res.NextCursor != ""
	page.EffectiveCount = len(page.Items)
	return page, nil
}

func clientInfoContains(e entity.ActivityLogEntry, needle string) bool {
	if len(e.ClientInfo) == 0 {
		return false
	}
	b, err := json.Marshal(e.ClientInfo)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(b)), needle)
}

// windowPredicates bounds field by the non-zero ends of w
func windowPredicates(field string, w timewindow.Window) []repository.Predicate {
	var preds []repository.Predicate
	if !w.Start.IsZero() {
		preds = append(preds, repository.Gte(field, w.Start))
	}
	if !w.End.IsZero() {
		preds = append(preds, repository.Lte(field, w.End))
	}
	return preds
}

type actorTally struct {
	count      int
	name       string
	lastAction time.Time
}

// GetSystemLogStats scans the activity log newest first, up to the scan cap
func (s *LogService) GetSystemLogStats(ctx context.Context) (stats *LogStats, err error) {
	defer func(start time.Time) {
		if s.metrics == nil {
			return
		}
		s.metrics.ReportDuration.WithLabelValues(ReportLogStats).Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.ReportsFailed.WithLabelValues(ReportLogStats).Inc()
			return
		}
		s.metrics.ReportsGenerated.WithLabelValues(ReportLogStats).Inc()
	}(time.Now())

	now := s.resolver.Current()
	loc := s.resolver.Loc()
	since30 := now.AddDate(0, 0, -30)
	since7 := now.AddDate(0, 0, -7)
	today := timewindow.StartOfDay(now)

	stats = &LogStats{
		ByActionType: make(map[string]int, len(entity.KnownActionTypes)),
		ByCategory:   make(map[string]int, len(entity.KnownCategories)),
		TopActors:    []ActorCount{},
		GeneratedAt:  now,
	}
	for _, a := range entity.KnownActionTypes {
		stats.ByActionType[a] = 0
	}
	for _, c := range entity.KnownCategories {
		stats.ByCategory[c] = 0
	}
	buckets := analytics.NewTimeBuckets(loc)
	active30 := make(map[string]bool)
	active7 := make(map[string]bool)
	actors := make(map[string]*actorTally)
	times := make([]time.Time, 0)

	q := repository.Query{
		Sort:  repository.Sort{Field: defaultLogSortField, Direction: repository.SortDesc},
		Limit: s.cfg.PageSize,
	}
scan:
	for {
		page, err := s.logs.FetchLogs(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, e := range page.Items {
			if s.cfg.ScanCap > 0 && stats.TotalLogs >= s.cfg.ScanCap {
				stats.Truncated = true
				break scan
			}
			stats.TotalLogs++
			stats.ByActionType[e.ActionType]++
			stats.ByCategory[e.Category]++

			if e.ActionType == entity.ActionLogin {
				stats.TotalLogins++
				if !e.ActionTime.Before(today) {
					stats.LoginsToday++
				}
			}

			if e.EmployeeID != "" {
				t, ok := actors[e.EmployeeID]
				if !ok {
					t = &actorTally{}
					actors[e.EmployeeID] = t
				}
				t.count++
				if e.EmployeeName != "" && (t.name == "" || e.ActionTime.After(t.lastAction)) {
					t.name = e.EmployeeName
					t.lastAction = e.ActionTime
				}
			}

			if e.ActionTime.IsZero() {
				continue
			}
			buckets.Add(e.ActionTime)
			times = append(times, e.ActionTime)
			if !e.ActionTime.Before(since30) {
				stats.LogsLast30Days++
				if e.EmployeeID != "" {
					active30[e.EmployeeID] = true
				}
			}
			if !e.ActionTime.Before(since7) {
				stats.LogsLast7Days++
				if e.EmployeeID != "" {
					active7[e.EmployeeID] = true
				}
			}
		}
		if page.NextCursor == "" {
			break
		}
		q.Cursor = page.NextCursor
	}

	if stats.Truncated {
		s.logger.Warn("Log stats scan truncated", "cap", s.cfg.ScanCap)
		if s.metrics != nil {
			s.metrics.TruncatedScans.WithLabelValues("activity_logs").Inc()
		}
	}

	stats.ActiveEmployees30Days = len(active30)
	stats.ActiveEmployees7Days = len(active7)
	stats.AvgDailyActions30Days = float64(stats.LogsLast30Days) / 30
	stats.AvgDailyActions7Days = float64(stats.LogsLast7Days) / 7
	stats.ByHour = buckets.ByHour
	stats.ByWeekday = buckets.ByWeekday
	stats.ByMonth = buckets.ByMonth
	stats.PeriodComparison = analytics.ComparePeriods(times, now)
	stats.TopActors = s.topActors(ctx, actors)
	return stats, nil
}

func (s *LogService) topActors(ctx context.Context, actors map[string]*actorTally) []ActorCount {
	out := make([]ActorCount, 0, len(actors))
	for id, t := range actors {
		out = append(out, ActorCount{EmployeeID: id, Name: t.name, Count: t.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	if len(out) > s.cfg.TopN {
		out = out[:s.cfg.TopN]
	}
	labelActors(ctx, s.employees, s.logger, out)
	return out
}

// labelActors replaces names with the directory's where one is known
func labelActors(ctx context.Context, employees repository.EmployeeRepository, log logger.Logger, rows []ActorCount) {
	if employees == nil || len(rows) == 0 {
		return
	}
	codes := make([]string, 0, len(rows))
	for _, r := range rows {
		codes = append(codes, r.EmployeeID)
	}
	found, err := employees.FindByCodes(ctx, codes)
	if err != nil {
		log.Warn("Employee directory lookup failed", "error", err)
		return
	}
	for i := range rows {
		if e, ok := found[rows[i].EmployeeID]; ok && e.Name != "" {
			rows[i].Name = e.Name
		}
	}
}
