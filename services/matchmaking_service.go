package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"match-notify-service/models"
)

// Matchmaking failures are the one class of error that blocks a save, so
// callers need to tell "nobody to play against" apart from "the lookup
// itself broke".
var (
	ErrNoOpponentsAvailable = errors.New("there are no other players available")
	ErrOpponentLookupFailed = errors.New("failed finding candidate opponents")
)

// MatchmakingService resolves player2 for random matches.
type MatchmakingService struct {
	Finder PlayerFinder
}

func NewMatchmakingService(finder PlayerFinder) *MatchmakingService {
	return &MatchmakingService{Finder: finder}
}

// RandomOpponent picks a uniformly random opponent for the match's creator.
// Returns ErrNoOpponentsAvailable when the candidate pool is empty and an
// error wrapping ErrOpponentLookupFailed when the query itself fails.
func (s *MatchmakingService) RandomOpponent(ctx context.Context, m *models.Match) (*models.Player, error) {
	candidates, err := s.Finder.FindOpponents(ctx, m.Player1ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpponentLookupFailed, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoOpponentsAvailable
	}

	opponent := candidates[rand.Intn(len(candidates))]
	return &opponent, nil
}
