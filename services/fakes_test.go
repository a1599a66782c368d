package services

import (
	"context"
	"sync"

	"match-notify-service/models"
)

// Fake collaborators shared by the service tests. They implement the same
// narrow interfaces the gorm and HTTP implementations do.

type fakeFinder struct {
	players []models.Player
	err     error
}

func (f *fakeFinder) FindOpponents(ctx context.Context, excludePlayerID string) ([]models.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Player{}
	for _, p := range f.players {
		if p.ID != excludePlayerID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	usernames map[string]string // player ID → display name
	err       error
}

func (f *fakeDirectory) FetchPlayer(ctx context.Context, playerID string, elevated bool) (*models.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	name, ok := f.usernames[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return &models.Player{ID: playerID, Username: name}, nil
}

type sentPush struct {
	PlayerID string
	Message  string
}

// fakePush records every delivery attempt. Dispatches run concurrently, so
// it must be safe for parallel use.
type fakePush struct {
	mu      sync.Mutex
	failFor map[string]error // player ID → forced failure
	sent    []sentPush
}

func (f *fakePush) SendPush(ctx context.Context, playerID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentPush{PlayerID: playerID, Message: message})
	if f.failFor != nil {
		if err, ok := f.failFor[playerID]; ok {
			return err
		}
	}
	return nil
}

// attempts returns the recipients of every recorded push, in arrival order.
func (f *fakePush) attempts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, p := range f.sent {
		out[i] = p.PlayerID
	}
	return out
}
