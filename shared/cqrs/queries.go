package cqrs

// ---------- User queries ----------

// GetUserQuery fetches a single user by ID.
type GetUserQuery struct {
	UserID string
}

// GetUserByUsernameQuery fetches a single user by exact username.
type GetUserByUsernameQuery struct {
	Username string
}

// ListUsersQuery fetches every registered user.
type ListUsersQuery struct{}

// GetUserStatsQuery fetches the activity projection of a user.
type GetUserStatsQuery struct {
	UserID string
}

// ---------- Message queries ----------

// ListRecentMessagesQuery fetches the newest messages of the global channel.
type ListRecentMessagesQuery struct{}
