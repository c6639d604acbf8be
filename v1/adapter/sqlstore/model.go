package sqlstore

import "time"

// TableName is the table holding measurements.
const TableName = "peek_measurements"

// Measurement is one stored metric of one request.
type Measurement struct {
	RequestID string    `gorm:"primaryKey;size:191"`
	Key       string    `gorm:"primaryKey;size:191"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"index;not null;autoUpdateTime:false"`
}

// TableName implements gorm's tabler interface.
func (Measurement) TableName() string {
	return TableName
}
