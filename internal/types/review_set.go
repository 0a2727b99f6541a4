package types

import (
	"time"
)

type ReviewSetList struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string          `gorm:"size:200;not null" json:"name"`
	Items     []ReviewSetItem `gorm:"foreignKey:SetListID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}

func (ReviewSetList) TableName() string { return "review_set_lists" }

type ReviewSetItem struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SetListID  uint      `gorm:"not null;index" json:"set_list_id"`
	OffsetDays int       `gorm:"not null" json:"offset_days"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (ReviewSetItem) TableName() string { return "review_set_items" }
