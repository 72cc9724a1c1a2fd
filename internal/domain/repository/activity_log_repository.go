package repository

import (
	"context"

	"agency-report-service/internal/domain/entity"
)

// ActivityLogPage is one page of activity log entries
type ActivityLogPage struct {
	Items      []entity.ActivityLogEntry
	NextCursor string
}

// ActivityLogSource reads the append-only activity log
type ActivityLogSource interface {
	FetchLogs(ctx context.Context, q Query) (*ActivityLogPage, error)
}
