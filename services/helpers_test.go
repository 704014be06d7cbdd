package services

import (
	"context"
	"path/filepath"
	"testing"

	"maze-quiz-system/config"
	"maze-quiz-system/models"
	"maze-quiz-system/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a migrated SQLite database in a temp dir, seeded with the
// default catalog. One connection keeps SQLite writers serialized.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	gcfg := utils.GormConfig()
	gcfg.Logger = logger.Discard
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), gcfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))

	_, err = NewCatalogService(db).SeedYAML(context.Background(), config.DefaultCatalogYAML())
	require.NoError(t, err)
	return db
}

func ptr[T any](v T) *T { return &v }

func submitReq(level int, score int64, walls, timeLeft int) SubmitRequest {
	return SubmitRequest{Level: ptr(level), Score: ptr(score), WallsBroken: ptr(walls), TimeLeft: ptr(timeLeft)}
}

func countAttempts(t *testing.T, db *gorm.DB, user string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Attempt{}).Where("external_user_id = ?", user).Count(&n).Error)
	return n
}

func countGrants(t *testing.T, db *gorm.DB, user string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Grant{}).Where("external_user_id = ?", user).Count(&n).Error)
	return n
}

func grantCount(t *testing.T, db *gorm.DB, user, code string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Grant{}).
		Joins("JOIN achievements ON achievements.id = grants.achievement_id").
		Where("grants.external_user_id = ? AND achievements.code = ?", user, code).
		Count(&n).Error)
	return n
}

func grantedCodes(t *testing.T, db *gorm.DB, user string) []string {
	t.Helper()
	var codes []string
	require.NoError(t, db.Model(&models.Grant{}).
		Joins("JOIN achievements ON achievements.id = grants.achievement_id").
		Where("grants.external_user_id = ?", user).
		Order("achievements.code").
		Pluck("achievements.code", &codes).Error)
	return codes
}
