package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"maze-quiz-system/config"
	"maze-quiz-system/middleware"
	"maze-quiz-system/models"
	"maze-quiz-system/services"
	"maze-quiz-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testToken = "gateway-secret"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	gcfg := utils.GormConfig()
	gcfg.Logger = logger.Discard
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")+"?_foreign_keys=on"), gcfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	_, err = services.NewCatalogService(db).SeedYAML(context.Background(), config.DefaultCatalogYAML())
	require.NoError(t, err)

	levels := config.DefaultLevelCatalog()
	progression := services.NewProgressionService(db, levels)

	app := fiber.New()
	app.Use(middleware.GatewayAuthMiddleware(testToken))
	SetupProgressionRoutes(app, services.NewResultRecorder(db, levels), progression, services.NewProfileService(db, progression))
	SetupLevelRoutes(app, levels, services.NewQuestionService(db))
	return app, db
}

func call(t *testing.T, app *fiber.App, method, path, user, body string, headers ...string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(middleware.HeaderUserID, user)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func TestSubmitResultRequiresUser(t *testing.T) {
	app, db := newTestApp(t)

	resp, body := call(t, app, http.MethodPost, "/s/results", "",
		`{"level":1,"score":10,"walls_broken":0,"time_left":40}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not logged in", body["error"])

	var n int64
	require.NoError(t, db.Model(&models.Attempt{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSubmitResult(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := call(t, app, http.MethodPost, "/s/results", "alice",
		`{"level":1,"score":120,"walls_broken":0,"time_left":45}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(120), body["score"])
	assert.ElementsMatch(t, []any{"FIRST_WIN", "NO_WALL_BREAK", "FAST_FINISH"}, body["awarded"])

	resp, body = call(t, app, http.MethodPost, "/s/results", "alice",
		`{"level":1,"score":80,"walls_broken":2,"time_left":5}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{}, body["awarded"])
}

func TestSubmitResultUsesActiveLevel(t *testing.T) {
	app, db := newTestApp(t)

	resp, body := call(t, app, http.MethodPost, "/s/results", "bob",
		`{"score":5,"walls_broken":1,"time_left":1}`, middleware.HeaderActiveLevel, "3")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["level"])

	var a models.Attempt
	require.NoError(t, db.Where("external_user_id = ?", "bob").First(&a).Error)
	assert.Equal(t, 3, a.Level)
}

func TestSubmitResultValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := call(t, app, http.MethodPost, "/s/results", "carol",
		`{"level":1,"score":-1,"walls_broken":0,"time_left":0}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "score", body["field"])

	resp, _ = call(t, app, http.MethodPost, "/s/results", "carol", `{"level":`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExplicitZeroLevelIsRejected(t *testing.T) {
	app, db := newTestApp(t)

	resp, body := call(t, app, http.MethodPost, "/s/results", "gus",
		`{"level":0,"score":10,"walls_broken":0,"time_left":1}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "level", body["field"])

	resp, body = call(t, app, http.MethodPost, "/s/levels/next", "gus", `{"current_level":0}`,
		middleware.HeaderActiveLevel, "2")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "current_level", body["field"])

	var attempts, grants, players int64
	require.NoError(t, db.Model(&models.Attempt{}).Count(&attempts).Error)
	require.NoError(t, db.Model(&models.Grant{}).Count(&grants).Error)
	require.NoError(t, db.Model(&models.Player{}).Where("max_level_unlocked > 1").Count(&players).Error)
	assert.Zero(t, attempts)
	assert.Zero(t, grants)
	assert.Zero(t, players)
}

func TestBestScoreRoute(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := call(t, app, http.MethodGet, "/s/levels/1/best", "hal", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	for _, score := range []string{"40", "90", "70"} {
		resp, _ = call(t, app, http.MethodPost, "/s/results", "hal",
			`{"level":1,"score":`+score+`,"walls_broken":1,"time_left":1}`)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, body := call(t, app, http.MethodGet, "/s/levels/1/best", "hal", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(90), body["best_score"])

	resp, _ = call(t, app, http.MethodGet, "/s/levels/7/best", "hal", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLevelFlow(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := call(t, app, http.MethodGet, "/s/levels/unlocked", "dave", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["unlocked_levels"])
	assert.Equal(t, float64(4), body["total_levels"])

	resp, body = call(t, app, http.MethodPost, "/s/levels/2/enter", "dave", "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "This level is locked!", body["error"])

	resp, body = call(t, app, http.MethodPost, "/s/levels/next", "dave", `{"current_level":1}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["level"])
	assert.Equal(t, "2", resp.Header.Get(middleware.HeaderActiveLevel))

	resp, body = call(t, app, http.MethodPost, "/s/levels/2/enter", "dave", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["active_level"])
	assert.Equal(t, "2", resp.Header.Get(middleware.HeaderActiveLevel))

	resp, _ = call(t, app, http.MethodPost, "/s/levels/5/enter", "dave", "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// No body: advance from the active level carried in the header.
	resp, body = call(t, app, http.MethodPost, "/s/levels/next", "dave", "", middleware.HeaderActiveLevel, "2")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["level"])

	resp, body = call(t, app, http.MethodPost, "/s/levels/reset", "dave", "", middleware.HeaderActiveLevel, "3")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["active_level"])
	assert.Equal(t, "1", resp.Header.Get(middleware.HeaderActiveLevel))
}

func TestLevelConfigRoutes(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := call(t, app, http.MethodGet, "/levels/3/config", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(30), body["cols"])
	assert.Equal(t, "hard", body["difficulty"])
	assert.Equal(t, "Hard", body["difficulty_label"])

	resp, body = call(t, app, http.MethodGet, "/levels/config", "", "", middleware.HeaderActiveLevel, "4")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["wall_break_limit"])

	resp, _ = call(t, app, http.MethodGet, "/levels/9/config", "", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/levels/abc/config", "", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestQuestionRoutes(t *testing.T) {
	app, db := newTestApp(t)

	resp, body := call(t, app, http.MethodGet, "/s/questions/random", "erin", "", middleware.HeaderActiveLevel, "2")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "correct_option")

	var q models.Question
	require.NoError(t, db.First(&q, uint(body["id"].(float64))).Error)
	assert.Equal(t, "medium", q.Difficulty)

	resp, body = call(t, app, http.MethodPost, "/s/questions/validate", "erin",
		`{"id":`+jsonNumber(q.ID)+`,"answer":"`+strings.ToLower(q.CorrectOption)+`"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["correct"])

	resp, _ = call(t, app, http.MethodPost, "/s/questions/validate", "erin", `{"id":424242,"answer":"A"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = call(t, app, http.MethodGet, "/s/questions/random?difficulty=legendary", "erin", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No questions available in the database", body["error"])
}

func TestProfileRoute(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := call(t, app, http.MethodPost, "/s/results", "fay",
		`{"level":1,"score":50,"walls_broken":0,"time_left":10}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := call(t, app, http.MethodGet, "/s/profile", "fay", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "fay", body["user_id"])
	assert.Len(t, body["user_achievements"], 2)
	assert.Len(t, body["all_achievements"], 4)
	assert.Len(t, body["attempts"], 1)
}

func TestGatewayTokenRequired(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/levels/1/config", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
