package types

import (
	"time"
)

// LegacyTimeEntryTopic marks pre-migration time rows inside study progress.
// Their progress_percent is meaningless, so percent aggregation skips them;
// the time ledger owns study time now and never writes rows like these.
const LegacyTimeEntryTopic = "study-time"

type StudyProgress struct {
	ID                     uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Subject                string     `gorm:"size:100;not null;index" json:"subject"`
	Topic                  string     `gorm:"size:200;not null" json:"topic"`
	ProgressPercent        float64    `gorm:"not null;default:0" json:"progress_percent"`
	StudyHours             float64    `gorm:"not null;default:0" json:"study_hours"`
	Notes                  *string    `gorm:"type:text" json:"notes,omitempty"`
	ActualTime             *float64   `json:"actual_time,omitempty"`
	TargetTime             *float64   `json:"target_time,omitempty"`
	VarianceReason         *string    `gorm:"size:200" json:"variance_reason,omitempty"`
	TheoryCalculationRatio *float64   `json:"theory_calculation_ratio,omitempty"`
	CreatedAt              time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"not null" json:"updated_at"`
}

func (StudyProgress) TableName() string { return "study_progress_records" }
