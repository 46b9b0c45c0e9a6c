package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides the identity and timestamp columns shared by ledger tables
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NewBaseModel returns a BaseModel with a generated ID and the current time
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}
