package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BestScore caches max(Attempt.Score) per (user, level). It is only written in
// the same transaction as the attempt that produced it.
type BestScore struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex:idx_best_scores_user_level;not null" json:"external_user_id"`
	Level          int       `gorm:"uniqueIndex:idx_best_scores_user_level;not null" json:"level"`
	Score          int64     `gorm:"not null;default:0" json:"score"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (b *BestScore) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
