package services

import (
	"testing"

	"match-notify-service/models"

	"github.com/stretchr/testify/require"
)

func resolverMatch(state models.MatchState, p1Scores, p2Scores models.ScoreList) *models.Match {
	p2 := "p2"
	return &models.Match{
		ID:            "m1",
		State:         state,
		MatchType:     models.MatchTypeDirect,
		Player1ID:     "p1",
		Player2ID:     &p2,
		Player1Scores: p1Scores,
		Player2Scores: p2Scores,
	}
}

func TestNextPlayerToAct(t *testing.T) {
	testCases := []struct {
		name     string
		match    *models.Match
		expected string
		expectOK bool
	}{
		{
			name:     "pending match waits on the invitee",
			match:    resolverMatch(models.MatchStatePending, models.ScoreList{}, models.ScoreList{}),
			expected: "p2",
			expectOK: true,
		},
		{
			name:     "player1 ahead by a turn",
			match:    resolverMatch(models.MatchStateActive, models.ScoreList{5}, models.ScoreList{}),
			expected: "p2",
			expectOK: true,
		},
		{
			name:     "player2 ahead by a turn",
			match:    resolverMatch(models.MatchStateActive, models.ScoreList{5}, models.ScoreList{4, 2}),
			expected: "p1",
			expectOK: true,
		},
		{
			name:     "equal rounds, player1 behind on last score",
			match:    resolverMatch(models.MatchStateActive, models.ScoreList{5, 2}, models.ScoreList{5, 3}),
			expected: "p1",
			expectOK: true,
		},
		{
			name:     "equal rounds, player2 behind on last score",
			match:    resolverMatch(models.MatchStateActive, models.ScoreList{5, 4}, models.ScoreList{5, 3}),
			expected: "p2",
			expectOK: true,
		},
		{
			name:     "equal rounds, tied last scores go to player1",
			match:    resolverMatch(models.MatchStateActive, models.ScoreList{5, 3}, models.ScoreList{5, 3}),
			expected: "p1",
			expectOK: true,
		},
		{
			name:     "freshly accepted match, invitee opens",
			match:    resolverMatch(models.MatchStateActive, models.ScoreList{}, models.ScoreList{}),
			expected: "p2",
			expectOK: true,
		},
		{
			name:     "finished match has no next player",
			match:    resolverMatch(models.MatchStateFinished, models.ScoreList{5, 3}, models.ScoreList{5, 1}),
			expectOK: false,
		},
		{
			name:     "declined match has no next player",
			match:    resolverMatch(models.MatchStateDeclined, models.ScoreList{}, models.ScoreList{}),
			expectOK: false,
		},
		{
			name:     "resigned match has no next player",
			match:    resolverMatch(models.MatchStateResigned, models.ScoreList{9}, models.ScoreList{}),
			expectOK: false,
		},
		{
			name:     "timed out match has no next player",
			match:    resolverMatch(models.MatchStateTimedOut, models.ScoreList{5}, models.ScoreList{4}),
			expectOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next, ok := NextPlayerToAct(tc.match)
			require.Equal(t, tc.expectOK, ok)
			if tc.expectOK {
				require.Equal(t, tc.expected, next)
			}
		})
	}
}

func TestNextPlayerToActPendingWithoutOpponent(t *testing.T) {
	m := resolverMatch(models.MatchStatePending, models.ScoreList{}, models.ScoreList{})
	m.Player2ID = nil
	m.MatchType = models.MatchTypeRandom

	_, ok := NextPlayerToAct(m)
	require.False(t, ok)
}

func TestWithoutPlayer(t *testing.T) {
	ids := []string{"p1", "p2", "p1"}

	require.Equal(t, []string{"p2"}, withoutPlayer(ids, "p1"))
	require.Equal(t, []string{"p1", "p2", "p1"}, ids, "input must not be mutated")
	require.Equal(t, []string{"p1", "p2", "p1"}, withoutPlayer(ids, "someone-else"))
	require.Empty(t, withoutPlayer(nil, "p1"))
}
