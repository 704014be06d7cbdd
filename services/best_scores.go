package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maze-quiz-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BestScoreStore keeps one row per (user, level) holding the best score seen.
type BestScoreStore struct{}

func NewBestScoreStore() *BestScoreStore {
	return &BestScoreStore{}
}

// Upsert records score for (user, level). The max is taken by the database in
// the ON CONFLICT clause, so concurrent submissions can't lower the stored value.
func (s *BestScoreStore) Upsert(tx *gorm.DB, externalUserID string, level int, score int64) error {
	row := models.BestScore{
		ExternalUserID: externalUserID,
		Level:          level,
		Score:          score,
		UpdatedAt:      time.Now(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_user_id"}, {Name: "level"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"score":      gorm.Expr(fmt.Sprintf("%s(best_scores.score, excluded.score)", greatest(tx))),
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
}

// Get returns the best score for (user, level), or ErrNotFound.
func (s *BestScoreStore) Get(ctx context.Context, db *gorm.DB, externalUserID string, level int) (*models.BestScore, error) {
	var row models.BestScore
	err := db.WithContext(ctx).
		Where("external_user_id = ? AND level = ?", externalUserID, level).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get best score", err)
	}
	return &row, nil
}

// ForPlayer lists the user's best score on every level played, by level.
func (s *BestScoreStore) ForPlayer(ctx context.Context, db *gorm.DB, externalUserID string) ([]models.BestScore, error) {
	var rows []models.BestScore
	err := db.WithContext(ctx).
		Where("external_user_id = ?", externalUserID).
		Order("level ASC").
		Find(&rows).Error
	return rows, err
}
