package services

import (
	"context"
	"strconv"
	"time"

	"maze-quiz-system/models"

	"gorm.io/gorm"
)

const profileAttemptLimit = 100

// EarnedAchievement is a grant joined with its catalog entry.
type EarnedAchievement struct {
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Rarity      string    `json:"rarity"`
	AwardedAt   time.Time `json:"awarded_at"`
}

// Profile is everything the profile page shows about a player.
type Profile struct {
	ExternalUserID   string               `json:"user_id"`
	Username         string               `json:"username"`
	MaxLevelUnlocked int                  `json:"max_level_unlocked"`
	Earned           []EarnedAchievement  `json:"user_achievements"`
	AllAchievements  []models.Achievement `json:"all_achievements"`
	Attempts         []models.Attempt     `json:"attempts"`
	BestScores       []models.BestScore   `json:"best_scores"`
	Stats            PlayerStats          `json:"stats"`
}

// ProfileService assembles the read-only profile view.
type ProfileService struct {
	DB          *gorm.DB
	Progression *ProgressionService
	Ledger      *AttemptLedger
	Scores      *BestScoreStore
	Grants      *GrantStore
}

func NewProfileService(db *gorm.DB, progression *ProgressionService) *ProfileService {
	return &ProfileService{
		DB:          db,
		Progression: progression,
		Ledger:      NewAttemptLedger(),
		Scores:      NewBestScoreStore(),
		Grants:      NewGrantStore(),
	}
}

// Get builds the profile for the user, creating the player row if needed.
func (s *ProfileService) Get(ctx context.Context, externalUserID string) (*Profile, error) {
	player, err := s.Progression.EnsurePlayer(ctx, externalUserID)
	if err != nil {
		return nil, err
	}

	grants, err := s.Grants.ForPlayer(ctx, s.DB, externalUserID)
	if err != nil {
		return nil, storageErr("load grants", err)
	}
	earned := make([]EarnedAchievement, 0, len(grants))
	for _, g := range grants {
		earned = append(earned, EarnedAchievement{
			Code:        g.Achievement.Code,
			Title:       g.Achievement.Title,
			Description: g.Achievement.Description,
			Rarity:      g.Achievement.Rarity,
			AwardedAt:   g.AwardedAt,
		})
	}

	var all []models.Achievement
	if err := s.DB.WithContext(ctx).Order("code ASC").Find(&all).Error; err != nil {
		return nil, storageErr("load achievements", err)
	}

	attempts, err := s.Ledger.Recent(ctx, s.DB, externalUserID, profileAttemptLimit)
	if err != nil {
		return nil, storageErr("load attempts", err)
	}

	best, err := s.Scores.ForPlayer(ctx, s.DB, externalUserID)
	if err != nil {
		return nil, storageErr("load best scores", err)
	}

	stats, err := s.Ledger.Stats(ctx, s.DB, externalUserID)
	if err != nil {
		return nil, storageErr("load stats", err)
	}

	return &Profile{
		ExternalUserID:   player.ExternalUserID,
		Username:         player.Username,
		MaxLevelUnlocked: player.MaxLevelUnlocked,
		Earned:           earned,
		AllAchievements:  all,
		Attempts:         attempts,
		BestScores:       best,
		Stats:            stats,
	}, nil
}

// BestScore returns the user's best score on one level, or ErrNotFound when
// the level was never finished.
func (s *ProfileService) BestScore(ctx context.Context, externalUserID string, level int) (*models.BestScore, error) {
	if externalUserID == "" {
		return nil, ErrUnauthorized
	}
	if !s.Progression.Levels.Has(level) {
		return nil, invalid("level", "unknown level "+strconv.Itoa(level))
	}
	return s.Scores.Get(ctx, s.DB, externalUserID, level)
}
