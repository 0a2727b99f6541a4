package types

import (
	"time"
)

// StudyTimeSession is one ledger row: the highest cumulative total_ms a
// client session has reported for (user, day, subject). Clients resend their
// running total on every sync, so LastTotalMS never decreases and replays are
// no-ops.
type StudyTimeSession struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          string    `gorm:"size:100;not null;index:idx_sync_identity,unique" json:"user_id"`
	DateKey         string    `gorm:"size:10;not null;index:idx_sync_identity,unique;index" json:"date_key"`
	Subject         string    `gorm:"size:100;not null;index:idx_sync_identity,unique" json:"subject"`
	ClientSessionID string    `gorm:"size:100;not null;index:idx_sync_identity,unique" json:"client_session_id"`
	LastTotalMS     int64     `gorm:"column:last_total_ms;not null;default:0" json:"last_total_ms"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (StudyTimeSession) TableName() string { return "study_time_sync_sessions" }
