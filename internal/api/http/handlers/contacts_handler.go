package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Avdeevkonst/oauth2-chat/internal/api/dto"
	"github.com/Avdeevkonst/oauth2-chat/internal/auth"
	"github.com/Avdeevkonst/oauth2-chat/internal/service"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

// ContactsHandler exposes contact and chat-history endpoints.
type ContactsHandler struct {
	chats *service.ChatService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(chatService *service.ChatService) *ContactsHandler {
	return &ContactsHandler{chats: chatService}
}

// Add handles POST /user/add-contact.
func (h *ContactsHandler) Add(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	userID, err := claims.RequireUserID()
	if err != nil {
		return err
	}

	var req dto.AddContactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ID != userID {
		return fiber.NewError(http.StatusBadRequest, "permission error")
	}

	chat, err := h.chats.AddContact(c.Context(), userID, req.ToAdd)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"chat_id":    chat.ID,
		"contact_id": chat.ContactID,
	}})
}

// List handles GET /user/contacts.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	userID, err := claims.RequireUserID()
	if err != nil {
		return err
	}

	views, err := h.chats.ListContacts(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponses(views)})
}

// Delete handles DELETE /user/contact/:chat_id.
func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	chatID, err := strconv.ParseInt(c.Params("chat_id"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "chat_id must be numeric")
	}

	if err := h.chats.DeleteContact(c.Context(), chatID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// History handles GET /user/chat/:chat_id.
func (h *ContactsHandler) History(c *fiber.Ctx) error {
	chatID, err := strconv.ParseInt(c.Params("chat_id"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "chat_id must be numeric")
	}

	messages, err := h.chats.History(c.Context(), chatID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageResponses(messages)})
}
