package models

import (
	"time"

	"github.com/google/uuid"
)

// BugReport is a write-only record of a problem reported by staff.
type BugReport struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StaffID    string    `gorm:"column:staff_id;not null"`
	StaffRole  *string   `gorm:"column:staff_role"`
	ReportText string    `gorm:"column:report_text;not null"`
	ReportedAt time.Time `gorm:"column:reported_at;not null"`
}

func (BugReport) TableName() string { return "bug_reports" }
