package services

import (
	"context"
	"errors"
	"testing"

	"match-notify-service/models"

	"github.com/stretchr/testify/require"
)

func notifyMatch() *models.Match {
	p2 := "p2"
	return &models.Match{
		ID:            "m1",
		State:         models.MatchStateActive,
		MatchType:     models.MatchTypeDirect,
		Player1ID:     "p1",
		Player2ID:     &p2,
		Player1Scores: models.ScoreList{5},
		Player2Scores: models.ScoreList{3},
	}
}

func testDirectory() *fakeDirectory {
	return &fakeDirectory{usernames: map[string]string{
		"p1": "alice",
		"p2": "bob",
	}}
}

func TestComposeMessageTemplates(t *testing.T) {
	svc := NewNotificationService(testDirectory(), &fakePush{})

	testCases := []struct {
		name      string
		notifType models.NotificationType
		recipient string
		winner    string
		expected  string
	}{
		{
			name:      "match pending names the challenger",
			notifType: models.NotificationMatchPending,
			recipient: "p2",
			expected:  "alice has challenged you to a match!",
		},
		{
			name:      "match accepted names the invitee",
			notifType: models.NotificationMatchAccepted,
			recipient: "p1",
			expected:  "bob accepted your challenge. Game on!",
		},
		{
			name:      "match declined names the invitee",
			notifType: models.NotificationMatchDeclined,
			recipient: "p1",
			expected:  "bob declined your challenge.",
		},
		{
			name:      "next to act",
			notifType: models.NotificationNextToAct,
			recipient: "p2",
			expected:  "It's your turn against alice!",
		},
		{
			name:      "resignation seen by the winner",
			notifType: models.NotificationMatchResigned,
			recipient: "p1",
			winner:    "p1",
			expected:  "bob resigned. You win!",
		},
		{
			name:      "resignation seen by the loser",
			notifType: models.NotificationMatchResigned,
			recipient: "p2",
			winner:    "p1",
			expected:  "You resigned your match against alice.",
		},
		{
			name:      "timeout seen by the winner",
			notifType: models.NotificationMatchTimedOut,
			recipient: "p2",
			winner:    "p2",
			expected:  "alice ran out of time. You win!",
		},
		{
			name:      "timeout seen by the loser",
			notifType: models.NotificationMatchTimedOut,
			recipient: "p1",
			winner:    "p2",
			expected:  "Your match against bob timed out.",
		},
		{
			name:      "finish seen by the winner",
			notifType: models.NotificationMatchFinished,
			recipient: "p1",
			winner:    "p1",
			expected:  "You beat bob! Care for a rematch?",
		},
		{
			name:      "finish seen by the loser",
			notifType: models.NotificationMatchFinished,
			recipient: "p2",
			winner:    "p1",
			expected:  "alice won your match. Care for a rematch?",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := notifyMatch()
			if tc.winner != "" {
				m.WinnerID = &tc.winner
			}
			msg := svc.ComposeMessage(context.Background(), m, tc.notifType, tc.recipient)
			require.Equal(t, tc.expected, msg)
		})
	}
}

func TestComposeMessageUnknownType(t *testing.T) {
	svc := NewNotificationService(testDirectory(), &fakePush{})

	msg := svc.ComposeMessage(context.Background(), notifyMatch(), models.NotificationType("matchExploded"), "p1")
	require.Empty(t, msg)
}

func TestComposeMessageDirectoryFailure(t *testing.T) {
	svc := NewNotificationService(&fakeDirectory{err: errors.New("profile service down")}, &fakePush{})

	msg := svc.ComposeMessage(context.Background(), notifyMatch(), models.NotificationNextToAct, "p2")
	require.Equal(t, "It's your turn against Your opponent!", msg)
}

func TestDispatchSendsOnePush(t *testing.T) {
	push := &fakePush{}
	svc := NewNotificationService(testDirectory(), push)

	err := svc.Dispatch(context.Background(), notifyMatch(), models.NotificationNextToAct, "p2")
	require.NoError(t, err)
	require.Equal(t, []sentPush{{PlayerID: "p2", Message: "It's your turn against alice!"}}, push.sent)
}

func TestDispatchReturnsDeliveryFailure(t *testing.T) {
	push := &fakePush{failFor: map[string]error{"p2": errors.New("APNs rejected the token")}}
	svc := NewNotificationService(testDirectory(), push)

	err := svc.Dispatch(context.Background(), notifyMatch(), models.NotificationNextToAct, "p2")
	require.Error(t, err)
	require.Len(t, push.sent, 1, "the delivery must still have been attempted")
}

func TestDispatchComposerDefectIsNoOp(t *testing.T) {
	push := &fakePush{}
	svc := NewNotificationService(testDirectory(), push)

	err := svc.Dispatch(context.Background(), notifyMatch(), models.NotificationType("matchExploded"), "p2")
	require.NoError(t, err)
	require.Empty(t, push.sent, "nothing should be sent for an unknown type")
}
