package models

// UserStatsView is the activity projection built from message events.
// It is eventually consistent with the message store.
type UserStatsView struct {
	UserID       string `json:"userId"`
	MessageCount int64  `json:"messageCount"`
}
