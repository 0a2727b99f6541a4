package types

import (
	"time"
)

type Todo struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string     `gorm:"size:500;not null" json:"title"`
	Subject   *string    `gorm:"size:100;index" json:"subject,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	ProjectID *uint      `gorm:"index" json:"project_id,omitempty"`
	Project   *Project   `gorm:"foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Completed bool       `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (Todo) TableName() string { return "todos" }
