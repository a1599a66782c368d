package models

// NotificationType keys the fixed message templates the composer knows.
type NotificationType string

const (
	NotificationMatchPending  NotificationType = "matchPending"
	NotificationMatchAccepted NotificationType = "matchAccepted"
	NotificationMatchDeclined NotificationType = "matchDeclined"
	NotificationMatchResigned NotificationType = "matchResigned"
	NotificationMatchTimedOut NotificationType = "matchTimedOut"
	NotificationMatchFinished NotificationType = "matchFinished"
	NotificationNextToAct     NotificationType = "nextToAct"
)

// NotificationIntent is one pending delivery decided by the save hook.
// It lives only for the duration of a single hook invocation and is never
// persisted.
type NotificationIntent struct {
	MatchID     string
	Type        NotificationType
	RecipientID string
}
