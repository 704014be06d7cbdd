package services

import (
	"context"
	"errors"

	"maze-quiz-system/models"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantStore awards achievements at most once per user.
type GrantStore struct{}

func NewGrantStore() *GrantStore {
	return &GrantStore{}
}

// AwardIfAbsent grants code to the user inside tx and reports whether a new
// grant row was written.
//
// There is deliberately no "already granted?" read first: the insert runs in
// a savepoint and the (user, achievement) unique index decides. A duplicate
// insert is the expected outcome for repeat qualifiers and is returned as
// (false, nil). Any other error aborts the caller's transaction.
func (g *GrantStore) AwardIfAbsent(tx *gorm.DB, externalUserID, code string) (bool, error) {
	var ach models.Achievement
	err := tx.Select("id").Where("code = ?", code).First(&ach).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("achievement code not in catalog, skipping", "code", code, "user", externalUserID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	grant := models.Grant{ExternalUserID: externalUserID, AchievementID: ach.ID}
	err = tx.Transaction(func(sp *gorm.DB) error {
		return sp.Omit(clause.Associations).Create(&grant).Error
	})
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	log.Info("🎖️ achievement granted", "code", code, "user", externalUserID)
	return true, nil
}

// ForPlayer lists the user's grants, newest first.
func (g *GrantStore) ForPlayer(ctx context.Context, db *gorm.DB, externalUserID string) ([]models.Grant, error) {
	var grants []models.Grant
	err := db.WithContext(ctx).
		Preload("Achievement").
		Where("external_user_id = ?", externalUserID).
		Order("awarded_at DESC").
		Find(&grants).Error
	return grants, err
}
