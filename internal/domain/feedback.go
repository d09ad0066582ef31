package domain

import "time"

// Feedback is a message left by a user about the application.
type Feedback struct {
	ID        string
	Username  string
	Email     string
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FeedbackUpdate carries the mutable feedback fields. Nil means unchanged.
type FeedbackUpdate struct {
	Message *string
	Email   *string
}
