package sqlite

import "time"

type LocalValueModel struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null;default:''"`
	UpdatedAt time.Time
}

func (LocalValueModel) TableName() string { return "local_storage" }

type DraftPartModel struct {
	ID        uint   `gorm:"primaryKey"`
	Category  string `gorm:"uniqueIndex;not null"`
	PartID    int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DraftPartModel) TableName() string { return "build_draft_parts" }
