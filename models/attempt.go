// models/attempt.go
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAttemptImmutable is returned by the ORM hooks when something tries to
// rewrite or remove ledger history.
var ErrAttemptImmutable = errors.New("attempts are append-only")

// Attempt records one completed maze run. Rows are written once by the
// result recorder and never updated or deleted.
type Attempt struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`
	Level          int    `gorm:"index;not null" json:"level"`

	Score       int64 `gorm:"not null" json:"score"`
	WallsBroken int   `gorm:"not null;default:0" json:"walls_broken"`
	TimeLeft    int   `gorm:"not null;default:0" json:"time_left"` // seconds remaining on the level timer

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *Attempt) BeforeUpdate(tx *gorm.DB) error {
	return ErrAttemptImmutable
}

func (a *Attempt) BeforeDelete(tx *gorm.DB) error {
	return ErrAttemptImmutable
}
