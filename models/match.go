package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MatchState is the lifecycle state of a match. A match is created pending,
// becomes active when the challenge is accepted, and enters exactly one of
// the terminal states after that.
type MatchState string

const (
	MatchStatePending  MatchState = "pending"
	MatchStateActive   MatchState = "active"
	MatchStateFinished MatchState = "finished"
	MatchStateDeclined MatchState = "declined"
	MatchStateResigned MatchState = "resigned"
	MatchStateTimedOut MatchState = "timedOut"
)

// Terminal reports whether no further score or state mutation is valid.
func (s MatchState) Terminal() bool {
	switch s {
	case MatchStateFinished, MatchStateDeclined, MatchStateResigned, MatchStateTimedOut:
		return true
	}
	return false
}

// MatchType selects how player2 is resolved at creation time.
type MatchType string

const (
	MatchTypeRandom MatchType = "random" // matchmaking picks player2
	MatchTypeDirect MatchType = "direct" // creator names player2
)

// ScoreList is an append-only sequence of turn scores, stored as jsonb.
type ScoreList []int64

func (s ScoreList) Value() (driver.Value, error) {
	if s == nil {
		s = ScoreList{}
	}
	return json.Marshal(s)
}

func (s *ScoreList) Scan(value interface{}) error {
	if value == nil {
		*s = ScoreList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ScoreList", value)
	}
	return json.Unmarshal(raw, s)
}

// Total is the running sum of all recorded turn scores.
func (s ScoreList) Total() int64 {
	var total int64
	for _, v := range s {
		total += v
	}
	return total
}

// Match records a single two-player turn-based match.
// Player2ID stays nil on a random match until matchmaking resolves it.
// WinnerID is set only when the state implies a winner (resigned, timedOut,
// finished); a finished match with equal totals is a draw and keeps it nil.
type Match struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	State     MatchState `gorm:"type:varchar(16);index;not null" json:"state"`
	MatchType MatchType  `gorm:"type:varchar(16);not null" json:"match_type"`

	Player1ID string  `gorm:"index;not null" json:"player1_id"`
	Player2ID *string `gorm:"index" json:"player2_id,omitempty"`

	Player1Scores ScoreList `gorm:"type:jsonb;not null;default:'[]'" json:"player1_scores"`
	Player2Scores ScoreList `gorm:"type:jsonb;not null;default:'[]'" json:"player2_scores"`

	WinnerID *string `gorm:"index" json:"winner_id,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Participants returns the IDs of the players currently on the match,
// player1 first. A pending random match has a single participant.
func (m *Match) Participants() []string {
	ids := []string{m.Player1ID}
	if m.Player2ID != nil && *m.Player2ID != "" {
		ids = append(ids, *m.Player2ID)
	}
	return ids
}

// HasParticipant reports whether the given player is on the match.
func (m *Match) HasParticipant(playerID string) bool {
	for _, id := range m.Participants() {
		if id == playerID {
			return true
		}
	}
	return false
}

// IsWinner reports whether the given player is recorded as the winner.
func (m *Match) IsWinner(playerID string) bool {
	return m.WinnerID != nil && *m.WinnerID == playerID
}
