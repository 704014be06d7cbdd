package services

import (
	"context"

	"maze-quiz-system/models"

	"gorm.io/gorm"
)

// LedgerAggregates are the per-user totals the achievement rules look at.
// They always include the attempt being recorded.
type LedgerAggregates struct {
	AttemptCount     int64
	TotalWallsBroken int64
}

// PlayerStats summarises a user's whole history for the profile page.
type PlayerStats struct {
	TotalScore    int64 `json:"total_score"`
	AttemptsCount int64 `json:"attempts_count"`
}

// AttemptLedger is the append-only history of completed runs. Write methods
// take the caller's transaction handle; they never open their own.
type AttemptLedger struct{}

func NewAttemptLedger() *AttemptLedger {
	return &AttemptLedger{}
}

// Append inserts a new attempt row.
func (l *AttemptLedger) Append(tx *gorm.DB, attempt *models.Attempt) error {
	return tx.Create(attempt).Error
}

// Aggregates recomputes the rule inputs from the ledger. This is a full scan
// of the user's history on every submission; fine at current volumes.
func (l *AttemptLedger) Aggregates(tx *gorm.DB, externalUserID string) (LedgerAggregates, error) {
	var agg LedgerAggregates
	err := tx.Model(&models.Attempt{}).
		Select("COUNT(*) AS attempt_count, COALESCE(SUM(walls_broken), 0) AS total_walls_broken").
		Where("external_user_id = ?", externalUserID).
		Scan(&agg).Error
	return agg, err
}

// Recent returns the user's newest attempts first.
func (l *AttemptLedger) Recent(ctx context.Context, db *gorm.DB, externalUserID string, limit int) ([]models.Attempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var attempts []models.Attempt
	err := db.WithContext(ctx).
		Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

// Stats returns total score and attempt count over the user's history.
func (l *AttemptLedger) Stats(ctx context.Context, db *gorm.DB, externalUserID string) (PlayerStats, error) {
	var stats PlayerStats
	err := db.WithContext(ctx).Model(&models.Attempt{}).
		Select("COALESCE(SUM(score), 0) AS total_score, COUNT(*) AS attempts_count").
		Where("external_user_id = ?", externalUserID).
		Scan(&stats).Error
	return stats, err
}
