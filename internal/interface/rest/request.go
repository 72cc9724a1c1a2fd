package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"agency-report-service/internal/domain"
	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/usecase"
	"agency-report-service/pkg/timewindow"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// reportParams are the query parameters shared by the report endpoints
type reportParams struct {
	Range       string   `validate:"omitempty,oneof=today week month custom all"`
	StartDate   string   `validate:"omitempty,datetime=2006-01-02"`
	EndDate     string   `validate:"omitempty,datetime=2006-01-02"`
	EntityTypes []string `validate:"dive,oneof=flight hotel visa tour"`
	Status      string   `validate:"omitempty,max=64"`
	EmployeeID  string   `validate:"omitempty,max=128"`
	CustomerID  string   `validate:"omitempty,max=128"`
}

func parseReportParams(q url.Values) (usecase.ReportFilter, error) {
	p := reportParams{
		Range:       strings.ToLower(q.Get("range")),
		StartDate:   q.Get("startDate"),
		EndDate:     q.Get("endDate"),
		EntityTypes: splitCSV(q.Get("entityType")),
		Status:      q.Get("status"),
		EmployeeID:  q.Get("employeeId"),
		CustomerID:  q.Get("customerId"),
	}
	if err := validate.Struct(p); err != nil {
		return usecase.ReportFilter{}, err
	}

	f := usecase.ReportFilter{
		Range:      timewindow.Range(p.Range),
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		Status:     p.Status,
		EmployeeID: p.EmployeeID,
		CustomerID: p.CustomerID,
	}
	// A bare date pair means a custom range
	if f.Range == "" && (f.StartDate != "" || f.EndDate != "") {
		f.Range = timewindow.Custom
	}
	for _, et := range p.EntityTypes {
		f.EntityTypes = append(f.EntityTypes, entity.EntityType(et))
	}
	return f, nil
}

// logParams are the query parameters of the log listing
type logParams struct {
	Limit         int    `validate:"gte=0"`
	Category      string `validate:"omitempty,max=64"`
	ActionType    string `validate:"omitempty,max=64"`
	EmployeeID    string `validate:"omitempty,max=128"`
	StartDate     string `validate:"omitempty,datetime=2006-01-02"`
	EndDate       string `validate:"omitempty,datetime=2006-01-02"`
	ClientInfo    string `validate:"omitempty,max=256"`
	SortBy        string `validate:"omitempty,max=64"`
	SortDirection string `validate:"omitempty,oneof=asc desc"`
	Cursor        string `validate:"omitempty,max=2048"`
}

func parseLogParams(q url.Values) (usecase.LogQuery, error) {
	p := logParams{
		Category:      q.Get("category"),
		ActionType:    q.Get("actionType"),
		EmployeeID:    q.Get("employeeId"),
		StartDate:     q.Get("startDate"),
		EndDate:       q.Get("endDate"),
		ClientInfo:    q.Get("clientInfo"),
		SortBy:        q.Get("sortBy"),
		SortDirection: strings.ToLower(q.Get("sortDirection")),
		Cursor:        q.Get("cursor"),
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			return usecase.LogQuery{}, fmt.Errorf("%w: limit must be an integer", domain.ErrInvalidArgument)
		}
		p.Limit = n
	}
	if err := validate.Struct(p); err != nil {
		return usecase.LogQuery{}, err
	}

	return usecase.LogQuery{
		Limit:         p.Limit,
		Category:      p.Category,
		ActionType:    p.ActionType,
		EmployeeID:    p.EmployeeID,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		ClientInfo:    p.ClientInfo,
		SortBy:        p.SortBy,
		SortDirection: p.SortDirection,
		Cursor:        p.Cursor,
	}, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
