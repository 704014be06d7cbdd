package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Achievement codes the rule set knows how to award.
const (
	AchievementFirstWin    = "FIRST_WIN"
	AchievementNoWallBreak = "NO_WALL_BREAK"
	AchievementFastFinish  = "FAST_FINISH"
	AchievementWallBreaker = "WALL_BREAKER"
)

// Achievement: static catalog entry, provisioned out of band (seed / catalog sync)
type Achievement struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null" json:"code"` // e.g., "FIRST_WIN"
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Rarity      string    `gorm:"type:varchar(16);default:'common'" json:"rarity"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Grant: durable proof that a user earned an achievement.
// The composite unique index is what makes awarding idempotent.
type Grant struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex:idx_grants_user_achievement;not null" json:"external_user_id"`
	AchievementID  string    `gorm:"uniqueIndex:idx_grants_user_achievement;not null" json:"achievement_id"`
	AwardedAt      time.Time `gorm:"autoCreateTime" json:"awarded_at"`

	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (g *Grant) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
