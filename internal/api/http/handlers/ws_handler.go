package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Avdeevkonst/oauth2-chat/internal/auth"
	"github.com/Avdeevkonst/oauth2-chat/internal/ws"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

const (
	wsUserIDKey     = "ws_user_id"
	wsReceiverIDKey = "ws_receiver_id"
)

// WSHandler upgrades authenticated requests and runs the session loop.
type WSHandler struct {
	registry   *ws.ConnectionRegistry
	dispatcher *ws.MessageDispatcher
	logger     *zap.Logger
}

// NewWSHandler constructs handler.
func NewWSHandler(registry *ws.ConnectionRegistry, dispatcher *ws.MessageDispatcher, logger *zap.Logger) *WSHandler {
	return &WSHandler{registry: registry, dispatcher: dispatcher, logger: logger}
}

// Upgrade gates the handshake. It runs after the auth middleware, so a
// bad credential has already aborted the request and no session state
// exists yet. Identity and the recipient path parameter are resolved here
// and carried into the websocket handler through Locals.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	userID, err := claims.RequireUserID()
	if err != nil {
		return err
	}
	receiverID, err := strconv.ParseInt(c.Params("receiver"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "receiver must be numeric")
	}

	c.Locals(wsUserIDKey, userID)
	c.Locals(wsReceiverIDKey, receiverID)
	return c.Next()
}

// Handle returns the websocket endpoint for GET /ws/:receiver.
func (h *WSHandler) Handle() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		userID, ok := conn.Locals(wsUserIDKey).(int64)
		if !ok {
			return
		}
		receiverID, ok := conn.Locals(wsReceiverIDKey).(int64)
		if !ok {
			return
		}

		session := ws.NewSession(userID, receiverID, conn, h.registry, h.dispatcher, h.logger)
		session.Run(context.Background())
	})
}
