package services

import (
	"context"
	"log"
	"sync"

	"match-notify-service/models"
)

// MatchChange tells the save hook what an attempted mutation touched.
// TriggeringUserID is the player who initiated the save, empty for
// system-initiated mutations like the timeout sweeper.
type MatchChange struct {
	IsNew              bool
	Player1ScoresDirty bool
	Player2ScoresDirty bool
	StateDirty         bool
	TriggeringUserID   string
}

func (c MatchChange) scoresDirty() bool {
	return c.Player1ScoresDirty || c.Player2ScoresDirty
}

// MatchHookService runs before every attempted match save. It classifies
// the mutation as exactly one of: a matchmaking event, a score update, or a
// state transition, decides who gets told what, and dispatches the pushes.
// A nil return permits the save; a non-nil return aborts it and surfaces
// the reason to the original caller.
type MatchHookService struct {
	Matchmaking *MatchmakingService
	Notifier    *NotificationService
}

func NewMatchHookService(matchmaking *MatchmakingService, notifier *NotificationService) *MatchHookService {
	return &MatchHookService{Matchmaking: matchmaking, Notifier: notifier}
}

// BeforeMatchSave may assign Player2ID on the proposed record (matchmaking
// for new random matches). Only matchmaking failures abort the save; every
// notification failure is logged and swallowed. The hook returns only after
// all dispatches for this invocation have settled.
func (h *MatchHookService) BeforeMatchSave(ctx context.Context, m *models.Match, change MatchChange) error {
	intents := []models.NotificationIntent{}

	switch {
	case change.IsNew:
		switch m.MatchType {
		case models.MatchTypeRandom:
			opponent, err := h.Matchmaking.RandomOpponent(ctx, m)
			if err != nil {
				return err
			}
			m.Player2ID = &opponent.ID
			intents = append(intents, models.NotificationIntent{
				MatchID:     m.ID,
				Type:        models.NotificationMatchPending,
				RecipientID: opponent.ID,
			})
		case models.MatchTypeDirect:
			// Opponent already named by the challenger; just tell them.
			if m.Player2ID != nil && *m.Player2ID != "" {
				intents = append(intents, models.NotificationIntent{
					MatchID:     m.ID,
					Type:        models.NotificationMatchPending,
					RecipientID: *m.Player2ID,
				})
			}
		}

	case change.scoresDirty():
		if next, ok := NextPlayerToAct(m); ok && next != change.TriggeringUserID {
			intents = append(intents, models.NotificationIntent{
				MatchID:     m.ID,
				Type:        models.NotificationNextToAct,
				RecipientID: next,
			})
		}

	case change.StateDirty:
		intents = h.stateIntents(m, change.TriggeringUserID)
	}

	h.dispatchAll(ctx, m, intents)
	return nil
}

// stateIntents maps each state transition to its recipient set.
func (h *MatchHookService) stateIntents(m *models.Match, triggeringUserID string) []models.NotificationIntent {
	intents := []models.NotificationIntent{}
	add := func(t models.NotificationType, recipientID string) {
		intents = append(intents, models.NotificationIntent{
			MatchID:     m.ID,
			Type:        t,
			RecipientID: recipientID,
		})
	}

	switch m.State {
	case models.MatchStateActive:
		add(models.NotificationMatchAccepted, m.Player1ID)
	case models.MatchStateDeclined:
		add(models.NotificationMatchDeclined, m.Player1ID)
	case models.MatchStateFinished:
		for _, id := range withoutPlayer(m.Participants(), triggeringUserID) {
			add(models.NotificationMatchFinished, id)
		}
	case models.MatchStateResigned:
		if m.WinnerID != nil {
			add(models.NotificationMatchResigned, *m.WinnerID)
		}
	case models.MatchStateTimedOut:
		for _, id := range m.Participants() {
			add(models.NotificationMatchTimedOut, id)
		}
	case models.MatchStatePending:
		// No transition lands back on pending; nothing to send.
	}

	return intents
}

// dispatchAll issues every intent concurrently and waits for all of them to
// settle. Individual failures were already logged by the dispatcher and are
// only counted here; they never abort the save.
func (h *MatchHookService) dispatchAll(ctx context.Context, m *models.Match, intents []models.NotificationIntent) {
	if len(intents) == 0 {
		return
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for _, intent := range intents {
		wg.Add(1)
		go func(it models.NotificationIntent) {
			defer wg.Done()
			if err := h.Notifier.Dispatch(ctx, m, it.Type, it.RecipientID); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(intent)
	}
	wg.Wait()

	if failed > 0 {
		log.Printf("[HOOK] ⚠️ %d/%d notification(s) for match %s failed to deliver", failed, len(intents), m.ID)
	}
}
