package ws

import (
	"encoding/json"

	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

// EnvelopeKind discriminates the message-action union.
type EnvelopeKind string

const (
	EnvelopeCreate EnvelopeKind = "create"
	EnvelopeUpdate EnvelopeKind = "update"
	EnvelopeDelete EnvelopeKind = "delete"
)

// CreateMessage asks to persist and deliver a new message. Exactly one of
// Text/Photo may be set.
type CreateMessage struct {
	Text       *string `json:"text"`
	Photo      *string `json:"photo"`
	SenderID   int64   `json:"sender_id"`
	ReceiverID int64   `json:"receiver_id"`
}

// Body returns text when present, otherwise the photo reference.
func (m *CreateMessage) Body() string {
	if m.Text != nil {
		return *m.Text
	}
	if m.Photo != nil {
		return *m.Photo
	}
	return ""
}

// UpdateMessage asks to mutate the text of an existing message.
type UpdateMessage struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// DeleteMessage asks to remove an existing message.
type DeleteMessage struct {
	ID int64 `json:"id"`
}

// Envelope is one parsed unit of the inbound protocol. Kind is resolved
// once at parse time; exactly one of the variant pointers is set.
type Envelope struct {
	Kind   EnvelopeKind
	Create *CreateMessage
	Update *UpdateMessage
	Delete *DeleteMessage
}

// envelopeProbe captures which fields a frame carries so the variant can
// be resolved by shape: {id, text} is an update, {id} alone a delete, and
// sender/receiver-bearing frames a create.
type envelopeProbe struct {
	ID         *int64  `json:"id"`
	Text       *string `json:"text"`
	Photo      *string `json:"photo"`
	SenderID   *int64  `json:"sender_id"`
	ReceiverID *int64  `json:"receiver_id"`
}

// ParseEnvelope resolves a frame into a tagged envelope. A frame that is
// not valid JSON or matches no variant shape is a protocol violation,
// fatal to the connection.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var probe envelopeProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, apperrors.NewProtocolViolation("frame is not valid JSON")
	}

	switch {
	case probe.ID != nil && probe.Text != nil:
		return &Envelope{
			Kind:   EnvelopeUpdate,
			Update: &UpdateMessage{ID: *probe.ID, Text: *probe.Text},
		}, nil
	case probe.ID != nil:
		return &Envelope{
			Kind:   EnvelopeDelete,
			Delete: &DeleteMessage{ID: *probe.ID},
		}, nil
	case probe.SenderID != nil || probe.ReceiverID != nil || probe.Text != nil || probe.Photo != nil:
		create := &CreateMessage{Text: probe.Text, Photo: probe.Photo}
		if probe.SenderID != nil {
			create.SenderID = *probe.SenderID
		}
		if probe.ReceiverID != nil {
			create.ReceiverID = *probe.ReceiverID
		}
		return &Envelope{Kind: EnvelopeCreate, Create: create}, nil
	default:
		return nil, apperrors.NewProtocolViolation("frame matches no known action")
	}
}

// Validate enforces the create invariant before persistence is attempted.
func (e *Envelope) Validate() error {
	if e.Kind != EnvelopeCreate {
		return nil
	}
	if e.Create.Text != nil && e.Create.Photo != nil {
		return apperrors.NewInvalidEnvelope("required any of photo or text")
	}
	if e.Create.Text == nil && e.Create.Photo == nil {
		return apperrors.NewInvalidEnvelope("required any of photo or text")
	}
	return nil
}
