package events

import (
	"time"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventPasswordChanged EventType = "password_changed"
	EventMessageCreated  EventType = "message_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	Email       string `json:"email"`
	NewPassword string `json:"-"`
}

// MessageCreatedPayload payload.
type MessageCreatedPayload struct {
	MessageID  int64  `json:"message_id"`
	ReceiverID int64  `json:"receiver_id"`
	Preview    string `json:"preview"`
}
