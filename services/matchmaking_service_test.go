package services

import (
	"context"
	"errors"
	"testing"

	"match-notify-service/models"

	"github.com/stretchr/testify/require"
)

func newRandomMatch(creatorID string) *models.Match {
	return &models.Match{
		ID:        "m1",
		State:     models.MatchStatePending,
		MatchType: models.MatchTypeRandom,
		Player1ID: creatorID,
	}
}

func TestRandomOpponentEmptyPool(t *testing.T) {
	svc := NewMatchmakingService(&fakeFinder{})

	_, err := svc.RandomOpponent(context.Background(), newRandomMatch("p1"))
	require.ErrorIs(t, err, ErrNoOpponentsAvailable)
}

func TestRandomOpponentExcludesCreator(t *testing.T) {
	finder := &fakeFinder{players: []models.Player{{ID: "p1", Username: "alice"}}}
	svc := NewMatchmakingService(finder)

	// The only registered player is the creator, so the pool is empty.
	_, err := svc.RandomOpponent(context.Background(), newRandomMatch("p1"))
	require.ErrorIs(t, err, ErrNoOpponentsAvailable)
}

func TestRandomOpponentLookupFailure(t *testing.T) {
	finder := &fakeFinder{err: errors.New("connection refused")}
	svc := NewMatchmakingService(finder)

	_, err := svc.RandomOpponent(context.Background(), newRandomMatch("p1"))
	require.ErrorIs(t, err, ErrOpponentLookupFailed)
	require.NotErrorIs(t, err, ErrNoOpponentsAvailable)
}

func TestRandomOpponentSingleCandidate(t *testing.T) {
	finder := &fakeFinder{players: []models.Player{
		{ID: "p1", Username: "alice"},
		{ID: "p2", Username: "bob"},
	}}
	svc := NewMatchmakingService(finder)

	opponent, err := svc.RandomOpponent(context.Background(), newRandomMatch("p1"))
	require.NoError(t, err)
	require.Equal(t, "p2", opponent.ID)
}

func TestRandomOpponentUniformSelection(t *testing.T) {
	finder := &fakeFinder{players: []models.Player{
		{ID: "p2", Username: "bob"},
		{ID: "p3", Username: "carol"},
		{ID: "p4", Username: "dave"},
	}}
	svc := NewMatchmakingService(finder)

	const trials = 6000
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		opponent, err := svc.RandomOpponent(context.Background(), newRandomMatch("p1"))
		require.NoError(t, err)
		counts[opponent.ID]++
	}

	require.Len(t, counts, 3, "every candidate should be selected at least once")

	// Expected 2000 per candidate; ±300 is over eight standard deviations.
	for id, n := range counts {
		require.InDelta(t, trials/3, n, 300, "candidate %s selected %d times", id, n)
	}
}
