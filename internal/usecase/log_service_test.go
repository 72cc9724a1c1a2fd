package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"agency-report-service/internal/domain"
	"agency-report-service/internal/domain/entity"
	storeRepo "agency-report-service/internal/interface/repository"
	"agency-report-service/pkg/logger"
	"agency-report-service/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeDirectory struct {
	employees map[string]*entity.Employee
	err       error
}

func (d *fakeDirectory) GetByCode(_ context.Context, code string) (*entity.Employee, error) {
	if d.err != nil {
		return nil, d.err
	}
	e, ok := d.employees[code]
	if !ok {
		return nil, errors.New("record not found")
	}
	return e, nil
}

func (d *fakeDirectory) FindByCodes(_ context.Context, codes []string) (map[string]*entity.Employee, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := make(map[string]*entity.Employee)
	for _, c := range codes {
		if e, ok := d.employees[c]; ok {
			out[c] = e
		}
	}
	return out, nil
}

func logEntry(id, action, category, employee, name string, at time.Time) entity.ActivityLogEntry {
	return entity.ActivityLogEntry{
		ID:           id,
		ActionTime:   at,
		ActionType:   action,
		Category:     category,
		EmployeeID:   employee,
		EmployeeName: name,
	}
}

func newTestLogService(logs *storeRepo.MemoryActivityLogRepository, dir *fakeDirectory, cfg LogServiceConfig) *LogService {
	svc := NewLogService(logs, nil, testResolver(), cfg, logger.NewNopLogger(), metrics.NewNopMetrics())
	if dir != nil {
		svc.employees = dir
	}
	return svc
}

func sampleLogs() *storeRepo.MemoryActivityLogRepository {
	return storeRepo.NewMemoryActivityLogRepository(
		logEntry("l1", entity.ActionLogin, entity.CategoryAuth, "E1", "Sari W.", *day(time.March, 12, 9)),
		logEntry("l2", entity.ActionLogin, entity.CategoryAuth, "E2", "Budi", *day(time.March, 10, 8)),
		logEntry("l3", entity.ActionCreate, entity.CategoryFlight, "E1", "Sari", *day(time.March, 1, 11)),
		logEntry("l4", entity.ActionView, entity.CategoryCustomer, "E1", "Sari", *day(time.February, 20, 14)),
		logEntry("l5", entity.ActionView, entity.CategoryHotel, "E3", "Rina", *day(time.January, 15, 10)),
		logEntry("l6", entity.ActionExport, entity.CategoryReport, "", "", time.Date(2024, 12, 1, 7, 0, 0, 0, time.UTC)),
	)
}

func ids(entries []entity.ActivityLogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestGetSystemLogs_DefaultsToNewestFirst(t *testing.T) {
	svc := newTestLogService(sampleLogs(), nil, LogServiceConfig{})

	page, err := svc.GetSystemLogs(context.Background(), LogQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2", "l3", "l4", "l5", "l6"}, ids(page.Items))
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
	assert.Equal(t, 6, page.EffectiveCount)
	assert.Empty(t, page.Warnings)
}

func TestGetSystemLogs_UnsupportedSortFieldFallsBack(t *testing.T) {
	svc := newTestLogService(sampleLogs(), nil, LogServiceConfig{})

	page, err := svc.GetSystemLogs(context.Background(), LogQuery{SortBy: "clientInfo", SortDirection: "ASC"})
	require.NoError(t, err)
	assert.Equal(t, []string{"l6", "l5", "l4", "l3", "l2", "l1"}, ids(page.Items))
	require.Len(t, page.Warnings, 1)
	assert.Contains(t, page.Warnings[0], `"clientInfo"`)
	assert.Contains(t, page.Warnings[0], `"actionTime"`)
}

func TestGetSystemLogs_LimitIsCappedAndPagesChain(t *testing.T) {
	svc := newTestLogService(sampleLogs(), nil, LogServiceConfig{MaxLimit: 4})

	first, err := svc.GetSystemLogs(context.Background(), LogQuery{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, first.Items, 4)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.GetSystemLogs(context.Background(), LogQuery{Limit: 100, Cursor: first.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []string{"l5", "l6"}, ids(second.Items))
	assert.False(t, second.HasMore)

	// A cursor cannot be replayed against another filter
	_, err = svc.GetSystemLogs(context.Background(), LogQuery{Category: entity.CategoryAuth, Cursor: first.NextCursor})
	assert.ErrorIs(t, err, domain.ErrCursorMismatch)
}

func TestGetSystemLogs_Filters(t *testing.T) {
	svc := newTestLogService(sampleLogs(), nil, LogServiceConfig{})

	page, err := svc.GetSystemLogs(context.Background(), LogQuery{EmployeeID: "E1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l3", "l4"}, ids(page.Items))

	page, err = svc.GetSystemLogs(context.Background(), LogQuery{ActionType: entity.ActionLogin, Category: entity.CategoryAuth})
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2"}, ids(page.Items))

	page, err = svc.GetSystemLogs(context.Background(), LogQuery{StartDate: "2025-02-20", EndDate: "2025-03-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"l3", "l4"}, ids(page.Items))

	_, err = svc.GetSystemLogs(context.Background(), LogQuery{StartDate: "20-02-2025"})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestGetSystemLogs_ClientInfoFilter(t *testing.T) {
	withInfo := func(id, browser string) entity.ActivityLogEntry {
		e := logEntry(id, entity.ActionLogin, entity.CategoryAuth, "E1", "Sari", *day(time.March, 1, 9))
		if browser != "" {
			e.ClientInfo = map[string]interface{}{"browser": browser, "ip": "10.0.0.1"}
		}
		return e
	}
	logs := storeRepo.NewMemoryActivityLogRepository(
		withInfo("a", "Firefox 123"), withInfo("b", "Chrome"), withInfo("c", ""),
	)
	svc := newTestLogService(logs, nil, LogServiceConfig{})

	page, err := svc.GetSystemLogs(context.Background(), LogQuery{ClientInfo: "firefox", Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(page.Items))
	assert.Equal(t, 1, page.EffectiveCount)

	page, err = svc.GetSystemLogs(context.Background(), LogQuery{ClientInfo: "10.0.0"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestGetSystemLogStats_Empty(t *testing.T) {
	svc := newTestLogService(storeRepo.NewMemoryActivityLogRepository(), nil, LogServiceConfig{})

	stats, err := svc.GetSystemLogStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalLogs)
	assert.Zero(t, stats.GrowthRateCurrent)
	assert.Zero(t, stats.AvgDailyActions30Days)
	assert.False(t, stats.Truncated)
	assert.NotNil(t, stats.TopActors)
	assert.Empty(t, stats.TopActors)

	assert.Len(t, stats.ByActionType, len(entity.KnownActionTypes))
	assert.Len(t, stats.ByCategory, len(entity.KnownCategories))
	assert.Len(t, stats.ByHour, 24)
	assert.Len(t, stats.ByWeekday, 7)
	assert.Len(t, stats.ByMonth, 12)
	for _, c := range stats.ByActionType {
		assert.Zero(t, c)
	}
	assert.Equal(t, fixedNow, stats.GeneratedAt)
}

func TestGetSystemLogStats(t *testing.T) {
	dir := &fakeDirectory{employees: map[string]*entity.Employee{
		"E2": {Code: "E2", Name: "Budi Santoso"},
	}}
	svc := newTestLogService(sampleLogs(), dir, LogServiceConfig{PageSize: 2})

	stats, err := svc.GetSystemLogStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalLogs)
	assert.Equal(t, 4, stats.LogsLast30Days)
	assert.Equal(t, 2, stats.LogsLast7Days)
	assert.Equal(t, 2, stats.TotalLogins)
	assert.Equal(t, 1, stats.LoginsToday)
	assert.Equal(t, 2, stats.ActiveEmployees30Days)
	assert.Equal(t, 2, stats.ActiveEmployees7Days)
	assert.InDelta(t, 4.0/30, stats.AvgDailyActions30Days, 1e-12)
	assert.InDelta(t, 2.0/7, stats.AvgDailyActions7Days, 1e-12)

	assert.Equal(t, 2, stats.ByActionType[entity.ActionLogin])
	assert.Equal(t, 2, stats.ByActionType[entity.ActionView])
	assert.Equal(t, 0, stats.ByActionType[entity.ActionDelete])
	assert.Equal(t, 2, stats.ByCategory[entity.CategoryAuth])
	assert.Equal(t, 1, stats.ByHour[9])
	assert.Equal(t, 3, stats.ByMonth[2])

	assert.Equal(t, 3, stats.CurrentMonth)
	assert.Equal(t, 1, stats.PreviousMonth)
	assert.Equal(t, 1, stats.TwoMonthsAgo)
	assert.InDelta(t, 200, stats.GrowthRateCurrent, 1e-9)
	assert.InDelta(t, 0, stats.GrowthRatePrevious, 1e-9)

	require.Len(t, stats.TopActors, 3)
	assert.Equal(t, ActorCount{EmployeeID: "E1", Name: "Sari W.", Count: 3}, stats.TopActors[0])
	assert.Equal(t, ActorCount{EmployeeID: "E2", Name: "Budi Santoso", Count: 1}, stats.TopActors[1])
	assert.Equal(t, ActorCount{EmployeeID: "E3", Name: "Rina", Count: 1}, stats.TopActors[2])
}

func TestGetSystemLogStats_DirectoryFailureKeepsLogNames(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("postgres down")}
	svc := newTestLogService(sampleLogs(), dir, LogServiceConfig{TopN: 1})

	stats, err := svc.GetSystemLogStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats.TopActors, 1)
	assert.Equal(t, "Sari W.", stats.TopActors[0].Name)
}

func TestGetSystemLogStats_ScanCap(t *testing.T) {
	var entries []entity.ActivityLogEntry
	for i := 0; i < 9; i++ {
		entries = append(entries, logEntry(fmt.Sprintf("l%d", i), entity.ActionView, entity.CategorySystem, "E1", "Sari",
			fixedNow.Add(-time.Duration(i)*time.Hour)))
	}
	logs := storeRepo.NewMemoryActivityLogRepository(entries...)
	svc := newTestLogService(logs, nil, LogServiceConfig{ScanCap: 5, PageSize: 2})

	stats, err := svc.GetSystemLogStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalLogs)
	assert.True(t, stats.Truncated)
	assert.Equal(t, 3, logs.Fetches)
}

func TestGetSystemLogStats_SourceError(t *testing.T) {
	logs := storeRepo.NewMemoryActivityLogRepository()
	logs.Err = domain.NewSourceUnavailableError("activity_logs", errors.New("refused"))
	svc := newTestLogService(logs, nil, LogServiceConfig{})

	_, err := svc.GetSystemLogStats(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestGetSystemLogs_LogsSortFallback(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	svc := NewLogService(sampleLogs(), nil, testResolver(), LogServiceConfig{},
		logger.NewZapLogger(zap.New(core)), metrics.NewNopMetrics())

	_, err := svc.GetSystemLogs(context.Background(), LogQuery{SortBy: "password"})
	require.NoError(t, err)

	entries := observed.FilterMessage("Unsupported log sort field").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "password", entries[0].ContextMap()["sortBy"])
}

func TestGetSystemLogStats_UndatedEntriesCountTowardActors(t *testing.T) {
	logs := storeRepo.NewMemoryActivityLogRepository(
		logEntry("u1", entity.ActionCreate, entity.CategoryFlight, "E1", "Ann", time.Time{}),
		logEntry("u2", entity.ActionCreate, entity.CategoryFlight, "E1", "Ann", time.Time{}),
		logEntry("u3", entity.ActionCreate, entity.CategoryHotel, "E1", "Ann", time.Time{}),
		logEntry("d1", entity.ActionView, entity.CategoryCustomer, "E2", "Bob", *day(time.March, 11, 10)),
	)
	svc := newTestLogService(logs, nil, LogServiceConfig{PageSize: 2})

	stats, err := svc.GetSystemLogStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalLogs)
	assert.Equal(t, 3, stats.ByActionType[entity.ActionCreate])
	assert.Equal(t, 1, stats.LogsLast30Days)
	assert.Equal(t, 1, stats.ActiveEmployees30Days)
	assert.Equal(t, []ActorCount{
		{EmployeeID: "E1", Name: "Ann", Count: 3},
		{EmployeeID: "E2", Name: "Bob", Count: 1},
	}, stats.TopActors)
}
