package services

import (
	"context"
	"errors"
	"fmt"

	"match-notify-service/models"

	"gorm.io/gorm"
)

// The match core only ever asks three things of the outside world: find
// candidate opponents, look up a player's profile, and send a push. Keeping
// these behind narrow interfaces keeps the decision logic testable without
// a database or a push gateway.

// PlayerFinder queries candidate opponents for matchmaking.
type PlayerFinder interface {
	FindOpponents(ctx context.Context, excludePlayerID string) ([]models.Player, error)
}

// PlayerDirectory resolves a player's profile. elevated marks reads the
// recipient could not perform themselves (the composer reads the opponent's
// display name on the recipient's behalf).
type PlayerDirectory interface {
	FetchPlayer(ctx context.Context, playerID string, elevated bool) (*models.Player, error)
}

// PushSender delivers one push request to a player. Fanning out to all of
// the player's registered devices is the push service's job.
type PushSender interface {
	SendPush(ctx context.Context, playerID, message string) error
}

// ErrPlayerNotFound is returned by PlayerDirectory lookups with no match.
var ErrPlayerNotFound = errors.New("player not found")

// PlayerStore is the gorm-backed PlayerFinder and PlayerDirectory over the
// local players mirror.
type PlayerStore struct {
	DB *gorm.DB
}

func NewPlayerStore(db *gorm.DB) *PlayerStore {
	return &PlayerStore{DB: db}
}

func (s *PlayerStore) FindOpponents(ctx context.Context, excludePlayerID string) ([]models.Player, error) {
	var players []models.Player
	err := s.DB.WithContext(ctx).
		Where("id <> ?", excludePlayerID).
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("querying opponents: %w", err)
	}
	return players, nil
}

// FetchPlayer reads from the local mirror. The mirror is populated with
// service credentials by the sync worker, so the elevated flag changes
// nothing here; it is part of the contract for directories that hit the
// profile service directly.
func (s *PlayerStore) FetchPlayer(ctx context.Context, playerID string, elevated bool) (*models.Player, error) {
	var player models.Player
	err := s.DB.WithContext(ctx).First(&player, "id = ?", playerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("fetching player %s: %w", playerID, err)
	}
	return &player, nil
}
