package rest

import (
	"context"
	"net/http"

	"agency-report-service/internal/usecase"
	"agency-report-service/pkg/logger"
)

// ReportGenerator builds the cross-entity reports
type ReportGenerator interface {
	SalesReport(ctx context.Context, f usecase.ReportFilter) (*usecase.SalesReport, error)
	CustomerReport(ctx context.Context, f usecase.ReportFilter) (*usecase.CustomerReport, error)
	EmployeePerformance(ctx context.Context, f usecase.ReportFilter) (*usecase.EmployeePerformanceReport, error)
}

// LogReader lists and summarises the activity log
type LogReader interface {
	GetSystemLogs(ctx context.Context, q usecase.LogQuery) (*usecase.LogPage, error)
	GetSystemLogStats(ctx context.Context) (*usecase.LogStats, error)
}

// Handler serves the report API
type Handler struct {
	reports ReportGenerator
	logs    LogReader
	logger  logger.Logger
}

// NewHandler creates a new report API handler
func NewHandler(reports ReportGenerator, logs LogReader, log logger.Logger) *Handler {
	return &Handler{reports: reports, logs: logs, logger: log}
}

// SalesReport handles GET /api/v1/reports/sales
func (h *Handler) SalesReport(w http.ResponseWriter, r *http.Request) {
	f, err := parseReportParams(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	report, err := h.reports.SalesReport(r.Context(), f)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// CustomerReport handles GET /api/v1/reports/customers
func (h *Handler) CustomerReport(w http.ResponseWriter, r *http.Request) {
	f, err := parseReportParams(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	report, err := h.reports.CustomerReport(r.Context(), f)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// EmployeePerformance handles GET /api/v1/reports/employees
func (h *Handler) EmployeePerformance(w http.ResponseWriter, r *http.Request) {
	f, err := parseReportParams(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	report, err := h.reports.EmployeePerformance(r.Context(), f)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListLogs handles GET /api/v1/logs
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	q, err := parseLogParams(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	page, err := h.logs.GetSystemLogs(r.Context(), q)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// LogStats handles GET /api/v1/logs/stats
func (h *Handler) LogStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.logs.GetSystemLogStats(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
