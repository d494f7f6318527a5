package model

import "time"

// Notification is a broadcast message fanned out to active users.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserNotification is one user's copy of a broadcast with its read flag.
type UserNotification struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Read         bool         `json:"read"`
	Notification Notification `json:"notification"`
}
