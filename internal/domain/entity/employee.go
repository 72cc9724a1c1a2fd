package entity

import (
	"time"

	"gorm.io/gorm"
)

// Employee represents an agency staff member from the employee directory
type Employee struct {
	ID         uint
	Code       string
	Name       string
	Role       string
	Department string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt
}
