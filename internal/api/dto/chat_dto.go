package dto

import (
	"time"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
	"github.com/Avdeevkonst/oauth2-chat/internal/service"
)

// AddContactRequest links a contact to the caller.
type AddContactRequest struct {
	ID    int64 `json:"id"`
	ToAdd int64 `json:"to_add"`
}

// ContactResponse describes one contact link with live presence.
type ContactResponse struct {
	ChatID    int64     `json:"chat_id"`
	ContactID int64     `json:"contact_id"`
	Online    bool      `json:"online"`
	CreatedAt time.Time `json:"created_at"`
}

// NewContactResponses converts contact views.
func NewContactResponses(views []service.ContactView) []ContactResponse {
	result := make([]ContactResponse, 0, len(views))
	for _, view := range views {
		result = append(result, ContactResponse{
			ChatID:    view.Chat.ID,
			ContactID: view.Chat.ContactID,
			Online:    view.Online,
			CreatedAt: view.Chat.CreatedAt,
		})
	}
	return result
}

// MessageResponse is one persisted message.
type MessageResponse struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Text       *string   `json:"text"`
	Photo      *string   `json:"photo"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewMessageResponses converts domain messages.
func NewMessageResponses(messages []domain.Message) []MessageResponse {
	result := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		result = append(result, MessageResponse{
			ID:         msg.ID,
			SenderID:   msg.SenderID,
			ReceiverID: msg.ReceiverID,
			Text:       msg.Text,
			Photo:      msg.Photo,
			CreatedAt:  msg.CreatedAt,
		})
	}
	return result
}
