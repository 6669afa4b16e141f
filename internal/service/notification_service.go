package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Avdeevkonst/oauth2-chat/internal/config"
	"github.com/Avdeevkonst/oauth2-chat/internal/events"
)

// NotificationService turns domain events into outbound mail.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.MailConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.MailConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.handlePasswordChanged)
	n.dispatcher.Subscribe(events.EventMessageCreated, n.handleMessageCreated)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return nil
	}
	n.sendMailStub(ctx, payload.Email, "Oauth2: Welcome", "Your account was created")
	return nil
}

func (n *NotificationService) handlePasswordChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordChangedPayload)
	if !ok {
		return nil
	}
	n.sendMailStub(ctx, payload.Email, "Oauth2: Changed password", "Your password was changed "+payload.NewPassword)
	return nil
}

func (n *NotificationService) handleMessageCreated(ctx context.Context, event events.Event) error {
	n.logger.Debug("MessageCreated",
		zap.Int64("user_id", event.UserID),
		zap.Any("payload", event.Payload))
	return nil
}

// sendMailStub logs the outbound mail instead of talking SMTP; the
// configured server is recorded so a real transport can slot in.
func (n *NotificationService) sendMailStub(_ context.Context, recipient, subject, body string) {
	if strings.TrimSpace(n.cfg.From) == "" || recipient == "" {
		return
	}
	n.logger.Info("sendMail",
		zap.String("from", n.cfg.From),
		zap.String("server", n.cfg.Server),
		zap.String("to", recipient),
		zap.String("subject", subject),
		zap.Int("body_len", len(body)))
}
