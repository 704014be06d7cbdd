// workers/player_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"maze-quiz-system/models"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredProfile is the subset of the sync service's profile payload we keep.
type MirroredProfile struct {
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GetProfileChangesResponse is the top-level structure of the sync service response.
type GetProfileChangesResponse struct {
	Users []MirroredProfile `json:"users"`
}

// PlayerSyncWorker mirrors usernames from the profile sync service into the
// players table. It never writes max_level_unlocked.
type PlayerSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
	lastSync     time.Time
}

func NewPlayerSyncWorker(db *gorm.DB, syncServiceBaseURL, endpointPath, serviceToken string) *PlayerSyncWorker {
	return &PlayerSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      syncServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *PlayerSyncWorker) Start(ctx context.Context) {
	log.Info("🔁 Starting Player Sync Worker (sync-service → players)…")
	go w.run(ctx)
}

func (w *PlayerSyncWorker) run(ctx context.Context) {
	if err := w.SyncOnce(ctx); err != nil {
		log.Warn("⚠️ initial player sync failed", "err", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.SyncOnce(ctx); err != nil {
				log.Error("❌ player sync batch failed", "err", err)
			}
		case <-ctx.Done():
			log.Info("⏹️ Player Sync Worker stopped")
			return
		}
	}
}

// SyncOnce fetches profile changes since the last successful batch and
// upserts usernames. The watermark only advances when the batch succeeds.
func (w *PlayerSyncWorker) SyncOnce(ctx context.Context) error {
	started := time.Now().UTC()
	users, err := w.fetch(ctx, w.lastSync)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		w.lastSync = started
		return nil
	}

	players := make([]models.Player, 0, len(users))
	for _, u := range users {
		if u.ExternalID == "" {
			continue
		}
		players = append(players, models.Player{
			ID:               uuid.NewString(),
			ExternalUserID:   u.ExternalID,
			Username:         u.Username,
			MaxLevelUnlocked: 1,
		})
	}
	if len(players) == 0 {
		w.lastSync = started
		return nil
	}

	// New players start at level 1; existing rows only get their username refreshed.
	if err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
	}).Create(&players).Error; err != nil {
		return fmt.Errorf("failed to upsert %d player(s): %w", len(players), err)
	}

	w.lastSync = started
	log.Info("✅ players synced", "count", len(players))
	return nil
}

func (w *PlayerSyncWorker) fetch(ctx context.Context, since time.Time) ([]MirroredProfile, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base sync service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request to sync service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sync service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode sync service response: %w", err)
	}
	return response.Users, nil
}
