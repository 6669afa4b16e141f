package service

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/Avdeevkonst/oauth2-chat/internal/cache"
	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
	"github.com/Avdeevkonst/oauth2-chat/internal/repository"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

// ContactView decorates a chat link with live presence.
type ContactView struct {
	Chat   domain.Chat
	Online bool
}

// ChatService manages contact links and message history.
type ChatService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	users    repository.UserRepository
	presence *cache.PresenceStore
}

// NewChatService builds the service. Presence may be nil; contacts are
// then reported offline.
func NewChatService(chats repository.ChatRepository, messages repository.MessageRepository, users repository.UserRepository, presence *cache.PresenceStore) *ChatService {
	return &ChatService{chats: chats, messages: messages, users: users, presence: presence}
}

// AddContact links a contact to the owner after checking it exists.
func (s *ChatService) AddContact(ctx context.Context, ownerID, contactID int64) (*domain.Chat, error) {
	if _, err := s.users.GetByID(ctx, contactID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": contactID})
		}
		return nil, err
	}

	chat := &domain.Chat{OwnerID: ownerID, ContactID: contactID}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// ListContacts returns the owner's contacts with their live status.
func (s *ChatService) ListContacts(ctx context.Context, ownerID int64) ([]ContactView, error) {
	chats, err := s.chats.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	views := make([]ContactView, 0, len(chats))
	for _, chat := range chats {
		online, _ := s.presence.IsOnline(ctx, strconv.FormatInt(chat.ContactID, 10))
		views = append(views, ContactView{Chat: chat, Online: online})
	}
	return views, nil
}

// DeleteContact removes the chat link.
func (s *ChatService) DeleteContact(ctx context.Context, chatID int64) error {
	if err := s.chats.Delete(ctx, chatID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("chat", map[string]any{"id": chatID})
		}
		return err
	}
	return nil
}

// History returns the chat's messages, newest first.
func (s *ChatService) History(ctx context.Context, chatID int64) ([]domain.Message, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("chat", map[string]any{"id": chatID})
		}
		return nil, err
	}
	return s.messages.ListBetween(ctx, chat.OwnerID, chat.ContactID)
}
