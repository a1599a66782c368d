// workers/player_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"match-notify-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredPlayerFromProfile matches the JSON the profile sync endpoint returns.
type MirroredPlayerFromProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetPlayerChangesResponse is the top-level structure of the sync response.
type GetPlayerChangesResponse struct {
	Players []MirroredPlayerFromProfile `json:"players"`
}

// PlayerSyncWorker mirrors player display names from the profile service
// into the local players table, which is the directory the notification
// composer reads opponent names from.
type PlayerSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	endpointPath string // e.g., "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewPlayerSyncWorker(db *gorm.DB, profileServiceBaseURL, endpointPath, serviceToken string) *PlayerSyncWorker {
	return &PlayerSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      profileServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *PlayerSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Player Sync Worker (profile service → players)…")
	go w.run(ctx)
}

func (w *PlayerSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial player sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Player sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Player Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt in the local players table.
func (w *PlayerSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM players").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches player changes since the cursor and upserts them locally.
func (w *PlayerSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile service URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to profile service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetPlayerChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode profile service response: %w", err)
	}

	if len(response.Players) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Processing %d player change(s) since %s…", len(response.Players), sinceStr)

	var upsertCount, errorCount int
	for _, remote := range response.Players {
		local := models.Player{
			ID:        remote.ID,
			Username:  remote.Username,
			CreatedAt: remote.CreatedAt,
			UpdatedAt: remote.UpdatedAt,
		}

		err := w.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
		}).Create(&local).Error
		if err != nil {
			log.Printf("[SYNC] ❌ Upsert failed for player %s: %v", remote.ID, err)
			errorCount++
			continue
		}
		upsertCount++
	}

	log.Printf("[SYNC] ✅ Player sync done: %d upserted, %d failed", upsertCount, errorCount)
	return nil
}
