package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Player is the local record for a gateway-authenticated user.
// Credentials live in the auth service; we only keep the unlock gate and a
// mirrored username for the profile page.
type Player struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // X-User-ID from the gateway
	Username       string `gorm:"index" json:"username"`

	// Highest level the player may enter. Only ever raised, never lowered.
	MaxLevelUnlocked int `gorm:"not null;default:1" json:"max_level_unlocked"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (p *Player) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.MaxLevelUnlocked < 1 {
		p.MaxLevelUnlocked = 1
	}
	return nil
}
