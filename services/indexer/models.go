package indexer

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventRecord is a committed ledger event as persisted by the indexer.
type EventRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Sequence   uint64    `gorm:"uniqueIndex;not null"`
	Type       string    `gorm:"size:64;index"`
	Attributes string    `gorm:"type:text"`
	CreatedAt  time.Time
}

// TableName pins the table so renames of the Go type do not move data.
func (EventRecord) TableName() string { return "ledger_events" }

// AutoMigrate creates or updates the indexer tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&EventRecord{})
}
