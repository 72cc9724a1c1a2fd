package repository

import (
	"context"
	"time"

	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormEmployeeRepository implements the EmployeeRepository interface
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GORM employee repository
func NewGormEmployeeRepository(db *gorm.DB) repository.EmployeeRepository {
	return &GormEmployeeRepository{
		db: db,
	}
}

// Employees GORM model for database mapping
type Employees struct {
	ID         uint           `gorm:"primaryKey"`
	Code       string         `gorm:"column:code;unique"`
	Name       string         `gorm:"column:name"`
	Role       string         `gorm:"column:role"`
	Department string         `gorm:"column:department"`
	Active     bool           `gorm:"column:active;default:true"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the default table name
func (Employees) TableName() string {
	return "m_employees"
}

func (e Employees) toEntity() *entity.Employee {
	return &entity.Employee{
		ID:         e.ID,
		Code:       e.Code,
		Name:       e.Name,
		Role:       e.Role,
		Department: e.Department,
		Active:     e.Active,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
		DeletedAt:  e.DeletedAt,
	}
}

// GetByCode finds an employee by code. Soft-deleted employees are still
// returned so historical activity keeps its label.
func (r *GormEmployeeRepository) GetByCode(ctx context.Context, code string) (*entity.Employee, error) {
	var employee Employees
	result := r.db.WithContext(ctx).Unscoped().Where("code = ?", code).First(&employee)

	if result.Error != nil {
		return nil, result.Error
	}

	return employee.toEntity(), nil
}

// FindByCodes loads every employee whose code is in codes, keyed by code.
// Unknown codes are simply absent from the map.
func (r *GormEmployeeRepository) FindByCodes(ctx context.Context, codes []string) (map[string]*entity.Employee, error) {
	out := make(map[string]*entity.Employee, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	var employees []Employees
	result := r.db.WithContext(ctx).Unscoped().Where("code IN ?", codes).Find(&employees)
	if result.Error != nil {
		return nil, result.Error
	}

	for _, e := range employees {
		out[e.Code] = e.toEntity()
	}
	return out, nil
}
