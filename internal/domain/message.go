package domain

import "time"

// Message is a persisted chat message. Exactly one of Text/Photo is set;
// the messages table enforces this with a check constraint.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Text       *string
	Photo      *string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Body returns the deliverable payload: text when present, otherwise the
// photo reference.
func (m *Message) Body() string {
	if m.Text != nil {
		return *m.Text
	}
	if m.Photo != nil {
		return *m.Photo
	}
	return ""
}

// Chat links an owner to a contact for history and contact listings.
type Chat struct {
	ID        int64
	OwnerID   int64
	ContactID int64
	CreatedAt time.Time
}
