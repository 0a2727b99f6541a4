package types

import (
	"time"
)

type Project struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"size:500;not null" json:"name"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
