package services

import (
	"context"
	"strconv"

	"maze-quiz-system/config"
	"maze-quiz-system/models"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// SubmitRequest is one finished run as reported by the client. Pointers let
// us tell a missing field from an explicit zero.
type SubmitRequest struct {
	Level       *int   `json:"level"`
	Score       *int64 `json:"score"`
	WallsBroken *int   `json:"walls_broken"`
	TimeLeft    *int   `json:"time_left"`
}

// SubmitResult echoes the recorded score and lists codes granted by this call.
type SubmitResult struct {
	Score   int64    `json:"score"`
	Level   int      `json:"level"`
	Awarded []string `json:"awarded"`
}

// ResultRecorder turns a finished run into ledger history, a best-score
// update and achievement grants, all in one transaction.
type ResultRecorder struct {
	DB     *gorm.DB
	Levels *config.LevelCatalog
	Ledger *AttemptLedger
	Scores *BestScoreStore
	Grants *GrantStore
}

func NewResultRecorder(db *gorm.DB, levels *config.LevelCatalog) *ResultRecorder {
	return &ResultRecorder{
		DB:     db,
		Levels: levels,
		Ledger: NewAttemptLedger(),
		Scores: NewBestScoreStore(),
		Grants: NewGrantStore(),
	}
}

func (r *ResultRecorder) validate(req SubmitRequest) error {
	switch {
	case req.Level == nil:
		return invalid("level", "is required")
	case !r.Levels.Has(*req.Level):
		return invalid("level", "unknown level "+strconv.Itoa(*req.Level))
	case req.Score == nil:
		return invalid("score", "is required")
	case *req.Score < 0:
		return invalid("score", "must not be negative")
	case req.WallsBroken == nil:
		return invalid("walls_broken", "is required")
	case *req.WallsBroken < 0:
		return invalid("walls_broken", "must not be negative")
	case req.TimeLeft == nil:
		return invalid("time_left", "is required")
	case *req.TimeLeft < 0:
		return invalid("time_left", "must not be negative")
	}
	return nil
}

// Submit records the run. It is not idempotent: every call appends history.
// On any failure the whole transaction is rolled back and a *StorageError is
// returned; the caller must resubmit.
func (r *ResultRecorder) Submit(ctx context.Context, externalUserID string, req SubmitRequest) (*SubmitResult, error) {
	if externalUserID == "" {
		return nil, ErrUnauthorized
	}
	if err := r.validate(req); err != nil {
		return nil, err
	}

	attempt := models.Attempt{
		ExternalUserID: externalUserID,
		Level:          *req.Level,
		Score:          *req.Score,
		WallsBroken:    *req.WallsBroken,
		TimeLeft:       *req.TimeLeft,
	}
	facts := AttemptFacts{
		Level:       attempt.Level,
		Score:       attempt.Score,
		WallsBroken: attempt.WallsBroken,
		TimeLeft:    attempt.TimeLeft,
	}

	var awarded []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.Ledger.Append(tx, &attempt); err != nil {
			return storageErr("insert attempt", err)
		}

		if err := r.Scores.Upsert(tx, externalUserID, attempt.Level, attempt.Score); err != nil {
			return storageErr("upsert best score", err)
		}

		agg, err := r.Ledger.Aggregates(tx, externalUserID)
		if err != nil {
			return storageErr("aggregate attempts", err)
		}

		for _, code := range EvaluateAchievements(facts, agg) {
			ok, err := r.Grants.AwardIfAbsent(tx, externalUserID, code)
			if err != nil {
				return storageErr("award "+code, err)
			}
			if ok {
				awarded = append(awarded, code)
			}
		}
		return nil
	})
	if err != nil {
		submitFailures.Inc()
		log.Error("🔥 submit rolled back", "user", externalUserID, "level", attempt.Level, "err", err)
		return nil, storageErr("submit result", err)
	}

	attemptsRecorded.WithLabelValues(strconv.Itoa(attempt.Level)).Inc()
	for _, code := range awarded {
		achievementsGranted.WithLabelValues(code).Inc()
	}
	log.Info("🏁 result recorded",
		"user", externalUserID, "level", attempt.Level, "score", attempt.Score,
		"walls_broken", attempt.WallsBroken, "time_left", attempt.TimeLeft, "awarded", awarded)

	if awarded == nil {
		awarded = []string{}
	}
	return &SubmitResult{Score: attempt.Score, Level: attempt.Level, Awarded: awarded}, nil
}
