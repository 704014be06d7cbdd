package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"maze-quiz-system/config"
	"maze-quiz-system/models"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnlockedLevels is the level-select view of a player.
type UnlockedLevels struct {
	UnlockedLevels int `json:"unlocked_levels"`
	TotalLevels    int `json:"total_levels"`
}

// ProgressionService owns the per-player unlock gate.
type ProgressionService struct {
	DB     *gorm.DB
	Levels *config.LevelCatalog
}

func NewProgressionService(db *gorm.DB, levels *config.LevelCatalog) *ProgressionService {
	return &ProgressionService{DB: db, Levels: levels}
}

// EnsurePlayer makes sure a Player row exists for the user (idempotent).
// Concurrent first requests race on the unique index, not on a read.
func (s *ProgressionService) EnsurePlayer(ctx context.Context, externalUserID string) (*models.Player, error) {
	if externalUserID == "" {
		return nil, ErrUnauthorized
	}
	db := s.DB.WithContext(ctx)

	player := models.Player{ExternalUserID: externalUserID, MaxLevelUnlocked: 1}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}},
		DoNothing: true,
	}).Create(&player).Error; err != nil {
		return nil, storageErr("ensure player", err)
	}

	var stored models.Player
	if err := db.Where("external_user_id = ?", externalUserID).First(&stored).Error; err != nil {
		return nil, storageErr("load player", err)
	}
	return &stored, nil
}

// Advance raises the player's unlock gate past currentLevel and returns the
// level the client should switch to. The write is a single
// max(existing, next) statement, so concurrent advances converge on the
// highest value and the gate never moves down.
//
// Advance does not check that the level's quiz was answered; the client
// calls it after a finished run.
func (s *ProgressionService) Advance(ctx context.Context, externalUserID string, currentLevel int) (int, error) {
	if externalUserID == "" {
		return 0, ErrUnauthorized
	}
	if !s.Levels.Has(currentLevel) {
		return 0, invalid("current_level", "unknown level "+strconv.Itoa(currentLevel))
	}

	next := min(currentLevel+1, s.Levels.Total())

	if _, err := s.EnsurePlayer(ctx, externalUserID); err != nil {
		return 0, err
	}
	err := s.DB.WithContext(ctx).Model(&models.Player{}).
		Where("external_user_id = ?", externalUserID).
		Update("max_level_unlocked", gorm.Expr(fmt.Sprintf("%s(max_level_unlocked, ?)", greatest(s.DB)), next)).Error
	if err != nil {
		return 0, storageErr("advance level", err)
	}

	levelAdvances.Inc()
	log.Info("⬆️ level advanced", "user", externalUserID, "from", currentLevel, "to", next)
	return next, nil
}

// MaxUnlocked returns the player's unlock gate (1 for players never seen).
func (s *ProgressionService) MaxUnlocked(ctx context.Context, externalUserID string) (int, error) {
	if externalUserID == "" {
		return 0, ErrUnauthorized
	}
	var player models.Player
	err := s.DB.WithContext(ctx).
		Select("max_level_unlocked").
		Where("external_user_id = ?", externalUserID).
		First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, storageErr("read unlock level", err)
	}
	return player.MaxLevelUnlocked, nil
}

// Unlocked reports how many levels the player can enter out of the total.
func (s *ProgressionService) Unlocked(ctx context.Context, externalUserID string) (*UnlockedLevels, error) {
	maxUnlocked, err := s.MaxUnlocked(ctx, externalUserID)
	if err != nil {
		return nil, err
	}
	return &UnlockedLevels{UnlockedLevels: maxUnlocked, TotalLevels: s.Levels.Total()}, nil
}

// CheckGate returns nil when the player may enter requested, ErrForbidden
// when it is still locked. The unlock gate never exceeds the last level, so
// anything past it is reported as locked too.
func (s *ProgressionService) CheckGate(ctx context.Context, externalUserID string, requested int) error {
	if requested < 1 {
		return invalid("level", "unknown level "+strconv.Itoa(requested))
	}
	maxUnlocked, err := s.MaxUnlocked(ctx, externalUserID)
	if err != nil {
		return err
	}
	if requested > maxUnlocked {
		gateDenials.Inc()
		log.Debug("🔒 level locked", "user", externalUserID, "requested", requested, "max_unlocked", maxUnlocked)
		return forbidden("level locked")
	}
	return nil
}

// EnterLevel checks the gate and, on success, returns a fresh play context
// for the level so the timer and wall-break counter restart.
func (s *ProgressionService) EnterLevel(ctx context.Context, externalUserID string, requested int) (PlayContext, error) {
	if err := s.CheckGate(ctx, externalUserID, requested); err != nil {
		return PlayContext{}, err
	}
	return NewPlayContext(requested), nil
}
