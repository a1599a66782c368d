package services

import (
	"match-notify-service/models"
)

// NextPlayerToAct returns the ID of the player who must act next on the
// match, derived purely from its persisted fields. ok is false when no one
// acts (the match is in a terminal state, or a pending random match has no
// opponent yet).
//
// Rules: pending → player2 must accept or decline. Active with unequal
// score counts → the player who is behind by a turn. Active with equal
// counts → compare the two last scores; the lower one acts next, and a tie
// goes to player1. A freshly accepted match has no scores yet; the invitee
// opens.
func NextPlayerToAct(m *models.Match) (string, bool) {
	if m.State.Terminal() {
		return "", false
	}

	if m.State == models.MatchStatePending {
		if m.Player2ID == nil || *m.Player2ID == "" {
			return "", false
		}
		return *m.Player2ID, true
	}

	p1 := len(m.Player1Scores)
	p2 := len(m.Player2Scores)

	if p1 != p2 {
		if p1 < p2 {
			return m.Player1ID, true
		}
		return player2OrNone(m)
	}

	if p1 == 0 {
		return player2OrNone(m)
	}

	if m.Player1Scores[p1-1] <= m.Player2Scores[p2-1] {
		return m.Player1ID, true
	}
	return player2OrNone(m)
}

func player2OrNone(m *models.Match) (string, bool) {
	if m.Player2ID == nil || *m.Player2ID == "" {
		return "", false
	}
	return *m.Player2ID, true
}

// withoutPlayer returns ids with every occurrence of exclude removed. The
// input is never mutated.
func withoutPlayer(ids []string, exclude string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}
