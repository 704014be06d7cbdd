package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"maze-quiz-system/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type staticSource struct {
	data []byte
	err  error
}

func (s staticSource) FetchCatalog(context.Context) ([]byte, error) {
	return s.data, s.err
}

func TestNormalizeCode(t *testing.T) {
	for in, want := range map[string]string{
		"FIRST_WIN":      "FIRST_WIN",
		"first win":      "FIRST_WIN",
		"First-Win":      "FIRST_WIN",
		"  fast finish ": "FAST_FINISH",
	} {
		assert.Equal(t, want, NormalizeCode(in), in)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"translated", gorm.ErrDuplicatedKey, true},
		{"wrapped translated", fmt.Errorf("insert grant: %w", gorm.ErrDuplicatedKey), true},
		{"postgres 23505", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped postgres 23505", fmt.Errorf("insert grant: %w", &pgconn.PgError{Code: "23505"}), true},
		{"postgres fk violation", &pgconn.PgError{Code: "23503"}, false},
		{"other", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isUniqueViolation(tc.err))
		})
	}
}

func TestDefaultCatalogSeeded(t *testing.T) {
	db := newTestDB(t)

	var achievements []models.Achievement
	require.NoError(t, db.Order("code").Find(&achievements).Error)
	codes := make([]string, 0, len(achievements))
	for _, a := range achievements {
		codes = append(codes, a.Code)
	}
	assert.Equal(t, []string{"FAST_FINISH", "FIRST_WIN", "NO_WALL_BREAK", "WALL_BREAKER"}, codes)

	var questions int64
	require.NoError(t, db.Model(&models.Question{}).Count(&questions).Error)
	assert.Equal(t, int64(8), questions)
}

func TestSeedIsIdempotentAndUpdates(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()

	doc := `
achievements:
  - code: first win
    title: Renamed
    description: new text
questions:
  - difficulty: Easy
    prompt: Which keyword declares a constant in Go?
    options: {A: var, B: const, C: let, D: final}
    correct: b
`
	for i := 0; i < 2; i++ {
		summary, err := svc.SeedYAML(ctx, []byte(doc))
		require.NoError(t, err)
		assert.Equal(t, SeedSummary{Achievements: 1, Questions: 1}, summary)
	}

	var a models.Achievement
	require.NoError(t, db.Where("code = ?", "FIRST_WIN").First(&a).Error)
	assert.Equal(t, "Renamed", a.Title)
	assert.Equal(t, "common", a.Rarity)

	var n int64
	require.NoError(t, db.Model(&models.Achievement{}).Count(&n).Error)
	assert.Equal(t, int64(4), n)
	require.NoError(t, db.Model(&models.Question{}).Count(&n).Error)
	assert.Equal(t, int64(8), n, "same prompt and difficulty must not duplicate")
}

func TestParseCatalogRejectsBadDocuments(t *testing.T) {
	bad := map[string]string{
		"missing title":  "achievements: [{code: X}]",
		"duplicate code": "achievements: [{code: A, title: a}, {code: a, title: b}]",
		"missing option": "questions: [{difficulty: easy, prompt: p, options: {A: a, B: b, C: c}, correct: A}]",
		"bad answer":     "questions: [{difficulty: easy, prompt: p, options: {A: a, B: b, C: c, D: d}, correct: E}]",
		"no difficulty":  "questions: [{prompt: p, options: {A: a, B: b, C: c, D: d}, correct: A}]",
		"not yaml":       "achievements: [",
	}
	for name, doc := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestSyncFrom(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()

	summary, err := svc.SyncFrom(ctx, staticSource{data: []byte(`
achievements:
  - {code: MAZE_MASTER, title: Maze Master, rarity: legendary}
`)})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Achievements)

	var a models.Achievement
	require.NoError(t, db.Where("code = ?", "MAZE_MASTER").First(&a).Error)
	assert.Equal(t, "legendary", a.Rarity)

	_, err = svc.SyncFrom(ctx, staticSource{err: errors.New("bucket unreachable")})
	assert.ErrorContains(t, err, "bucket unreachable")

	_, err = svc.SyncFrom(ctx, staticSource{data: []byte("achievements: [{code: X}]")})
	assert.ErrorIs(t, err, ErrValidation)
}
