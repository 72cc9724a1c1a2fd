package repository

import (
	"context"

	"agency-report-service/internal/domain/entity"
)

// EmployeeRepository defines the interface for employee directory lookups
type EmployeeRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Employee, error)
	FindByCodes(ctx context.Context, codes []string) (map[string]*entity.Employee, error)
}
