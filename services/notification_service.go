package services

import (
	"context"
	"fmt"
	"log"

	"match-notify-service/models"
)

// fallbackOpponentName is used when the opponent's profile cannot be read;
// a push with a generic name beats no push at all.
const fallbackOpponentName = "Your opponent"

// NotificationService composes and delivers match push notifications.
type NotificationService struct {
	Directory PlayerDirectory
	Push      PushSender
}

func NewNotificationService(directory PlayerDirectory, push PushSender) *NotificationService {
	return &NotificationService{Directory: directory, Push: push}
}

// ComposeMessage renders the push text for one notification. The opponent's
// display name is read with service credentials since the recipient may not
// be allowed to read that profile themselves. An unrecognized type is a
// programming error: it is logged and yields an empty message, never a
// user-facing failure.
func (s *NotificationService) ComposeMessage(ctx context.Context, m *models.Match, notifType models.NotificationType, recipientID string) string {
	name := fallbackOpponentName
	others := withoutPlayer(m.Participants(), recipientID)
	if len(others) > 0 {
		opponent, err := s.Directory.FetchPlayer(ctx, others[0], true)
		if err != nil {
			log.Printf("[NOTIFY] ⚠️ Could not fetch opponent %s for match %s: %v", others[0], m.ID, err)
		} else {
			name = opponent.Username
		}
	}

	won := m.IsWinner(recipientID)

	switch notifType {
	case models.NotificationMatchPending:
		return fmt.Sprintf("%s has challenged you to a match!", name)
	case models.NotificationMatchAccepted:
		return fmt.Sprintf("%s accepted your challenge. Game on!", name)
	case models.NotificationMatchDeclined:
		return fmt.Sprintf("%s declined your challenge.", name)
	case models.NotificationMatchResigned:
		if won {
			return fmt.Sprintf("%s resigned. You win!", name)
		}
		return fmt.Sprintf("You resigned your match against %s.", name)
	case models.NotificationMatchTimedOut:
		if won {
			return fmt.Sprintf("%s ran out of time. You win!", name)
		}
		return fmt.Sprintf("Your match against %s timed out.", name)
	case models.NotificationMatchFinished:
		if won {
			return fmt.Sprintf("You beat %s! Care for a rematch?", name)
		}
		return fmt.Sprintf("%s won your match. Care for a rematch?", name)
	case models.NotificationNextToAct:
		return fmt.Sprintf("It's your turn against %s!", name)
	}

	log.Printf("[NOTIFY] ❌ Unknown notification type %q for match %s — composer defect", notifType, m.ID)
	return ""
}

// Dispatch composes the message for one intent and sends a single push
// request for the recipient. Failures are logged with the match and
// recipient IDs and returned to the caller, which swallows them; a lost
// push must never block a match mutation.
func (s *NotificationService) Dispatch(ctx context.Context, m *models.Match, notifType models.NotificationType, recipientID string) error {
	message := s.ComposeMessage(ctx, m, notifType, recipientID)
	if message == "" {
		// Composer defect, already logged. Nothing to send.
		return nil
	}

	if err := s.Push.SendPush(ctx, recipientID, message); err != nil {
		log.Printf("[NOTIFY] ❌ Push %s to player %s for match %s failed: %v", notifType, recipientID, m.ID, err)
		return err
	}

	log.Printf("[NOTIFY] ✅ Push %s delivered to player %s for match %s", notifType, recipientID, m.ID)
	return nil
}
