package models

import "time"

// User is a registered chat participant. SecretKey and PublicKey are
// client-side key material stored verbatim.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	SecretKey string    `json:"secretKey"`
	PublicKey string    `json:"publicKey"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is a single post on the global channel. EncryptedContent is an
// uninterpreted client blob.
type Message struct {
	ID               string    `json:"id"`
	EncryptedContent string    `json:"encryptedContent"`
	SenderUserID     string    `json:"senderUserId"`
	RecipientUserID  string    `json:"recipientUserId,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}
