package dbschema

import "time"

// BaseModel carries the shared primary key and timestamps.
type BaseModel struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"type:timestamptz(6);not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz(6);not null"`
}
