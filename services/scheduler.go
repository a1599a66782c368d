package services

import (
	"context"
	"log"
	"time"

	"match-notify-service/models"

	"github.com/go-co-op/gocron/v2"
)

// StartTimeoutScheduler times out active matches whose next player has not
// acted within turnTimeout. The stalled player loses; their opponent is
// recorded as the winner. Transitions run through the same save hook as
// user-initiated ones so both players get their matchTimedOut push.
func (s *MatchService) StartTimeoutScheduler(turnTimeout time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.sweepStalledMatches(context.Background(), turnTimeout)
		}),
	)
}

func (s *MatchService) sweepStalledMatches(ctx context.Context, turnTimeout time.Duration) {
	cutoff := time.Now().Add(-turnTimeout)

	var matches []models.Match
	err := s.DB.Where("state = ? AND updated_at <= ?", models.MatchStateActive, cutoff).
		Find(&matches).Error
	if err != nil {
		log.Printf("[Sweeper] DB error: %v", err)
		return
	}

	for i := range matches {
		match := &matches[i]

		stalled, ok := NextPlayerToAct(match)
		if !ok {
			continue
		}

		match.State = models.MatchStateTimedOut
		if others := withoutPlayer(match.Participants(), stalled); len(others) > 0 {
			match.WinnerID = &others[0]
		}

		change := MatchChange{StateDirty: true} // system-initiated, no triggering user
		if err := s.Hook.BeforeMatchSave(ctx, match, change); err != nil {
			log.Printf("[Sweeper] Hook rejected timeout for match %s: %v", match.ID, err)
			continue
		}

		if err := s.DB.Save(match).Error; err != nil {
			log.Printf("[Sweeper] Failed to time out match %s: %v", match.ID, err)
			continue
		}

		log.Printf("✅ Timed out stalled match %s (player %s did not act)", match.ID, stalled)
		go s.archiveMatch(*match)
	}
}
