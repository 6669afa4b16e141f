package ws

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
	"github.com/Avdeevkonst/oauth2-chat/internal/events"
	"github.com/Avdeevkonst/oauth2-chat/internal/repository"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

// MessageDispatcher interprets parsed envelopes: it persists the action
// and pushes delivery events through the registry. Errors it returns are
// reportable; none of them terminate the session.
type MessageDispatcher struct {
	messages   repository.MessageRepository
	registry   *ConnectionRegistry
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewMessageDispatcher constructs the dispatcher. The events dispatcher
// may be nil; message-created events are then skipped.
func NewMessageDispatcher(messages repository.MessageRepository, registry *ConnectionRegistry, dispatcher events.Dispatcher, logger *zap.Logger) *MessageDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageDispatcher{
		messages:   messages,
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Dispatch executes one envelope on behalf of the sender channel.
func (d *MessageDispatcher) Dispatch(ctx context.Context, env *Envelope, sender Channel) error {
	switch env.Kind {
	case EnvelopeCreate:
		return d.handleCreate(ctx, env, sender)
	case EnvelopeUpdate:
		return d.handleUpdate(ctx, env.Update, sender)
	case EnvelopeDelete:
		return d.handleDelete(ctx, env.Delete)
	default:
		return apperrors.NewProtocolViolation("unknown envelope kind")
	}
}

func (d *MessageDispatcher) handleCreate(ctx context.Context, env *Envelope, sender Channel) error {
	if err := env.Validate(); err != nil {
		return err
	}

	create := env.Create
	msg := &domain.Message{
		SenderID:   create.SenderID,
		ReceiverID: create.ReceiverID,
		Text:       create.Text,
		Photo:      create.Photo,
	}
	if err := d.messages.Create(ctx, msg); err != nil {
		return apperrors.NewPersistenceError(err)
	}

	payload := msg.Body()
	if err := sender.WriteText(payload); err != nil {
		d.logger.Warn("echo to sender failed", zap.Int64("message_id", msg.ID), zap.Error(err))
	}
	d.registry.Deliver(strconv.FormatInt(msg.ReceiverID, 10), payload)

	d.publishCreated(ctx, msg, payload)
	return nil
}

func (d *MessageDispatcher) handleUpdate(ctx context.Context, update *UpdateMessage, sender Channel) error {
	if err := d.messages.UpdateText(ctx, update.ID, update.Text); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("message", map[string]any{"id": update.ID})
		}
		return apperrors.NewPersistenceError(err)
	}

	if err := sender.WriteText(update.Text); err != nil {
		d.logger.Warn("echo to sender failed", zap.Int64("message_id", update.ID), zap.Error(err))
	}
	return nil
}

func (d *MessageDispatcher) handleDelete(ctx context.Context, del *DeleteMessage) error {
	if err := d.messages.Delete(ctx, del.ID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("message", map[string]any{"id": del.ID})
		}
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

func (d *MessageDispatcher) publishCreated(ctx context.Context, msg *domain.Message, preview string) {
	if d.dispatcher == nil {
		return
	}
	_ = d.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventMessageCreated,
		UserID:    msg.SenderID,
		Timestamp: time.Now(),
		Payload: events.MessageCreatedPayload{
			MessageID:  msg.ID,
			ReceiverID: msg.ReceiverID,
			Preview:    preview,
		},
	})
}
