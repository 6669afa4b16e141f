package ws

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

// textMessage is the websocket text opcode (RFC 6455).
const textMessage = 1

// Conn is the wire-level connection a session reads frames from.
// *websocket.Conn from gofiber/contrib satisfies it.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// channel wraps a Conn behind a write mutex so the registry can push to it
// concurrently with the session's own echoes.
type channel struct {
	mu   sync.Mutex
	conn Conn
}

func newChannel(conn Conn) *channel {
	return &channel{conn: conn}
}

// WriteText implements Channel.
func (c *channel) WriteText(payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(textMessage, []byte(payload))
}

// writeError reports a per-frame failure back to the client as a JSON
// error frame.
func (c *channel) writeError(err error) {
	domainErr := apperrors.ToDomainError(err)
	data, marshalErr := json.Marshal(map[string]any{
		"error": map[string]any{
			"code":    domainErr.Code,
			"message": domainErr.Message,
		},
	})
	if marshalErr != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteMessage(textMessage, data)
}

// Session drives one client's lifecycle after a successfully authenticated
// handshake: register, receive frames sequentially, unregister. The
// receiver path parameter fixes who create envelopes are addressed to.
type Session struct {
	userID     int64
	subjectID  string
	receiverID int64
	channel    *channel
	registry   *ConnectionRegistry
	dispatcher *MessageDispatcher
	logger     *zap.Logger
}

// NewSession builds a session for an authenticated subject.
func NewSession(userID, receiverID int64, conn Conn, registry *ConnectionRegistry, dispatcher *MessageDispatcher, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		userID:     userID,
		subjectID:  strconv.FormatInt(userID, 10),
		receiverID: receiverID,
		channel:    newChannel(conn),
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run registers the connection and processes frames until the transport
// disconnects or the client violates the protocol. Cleanup runs exactly
// once on every exit path, so no registry entry can leak. Frames from one
// connection are handled strictly sequentially, which gives per-sender
// ordering without message-level locks.
func (s *Session) Run(ctx context.Context) {
	s.registry.RegisterIfAbsent(ctx, s.subjectID, s.channel)
	defer s.registry.Unregister(ctx, s.subjectID, s.channel)

	for {
		_, data, err := s.channel.conn.ReadMessage()
		if err != nil {
			s.logger.Debug("connection closed", zap.String("subject_id", s.subjectID), zap.Error(err))
			return
		}

		env, err := ParseEnvelope(data)
		if err != nil {
			s.channel.writeError(err)
			s.logger.Warn("protocol violation", zap.String("subject_id", s.subjectID), zap.Error(err))
			return
		}

		if env.Kind == EnvelopeCreate {
			env.Create.SenderID = s.userID
			env.Create.ReceiverID = s.receiverID
		}

		if err := s.dispatcher.Dispatch(ctx, env, s.channel); err != nil {
			if apperrors.IsProtocolViolation(err) {
				s.channel.writeError(err)
				return
			}
			// per-frame failures are isolated; the loop keeps serving
			s.channel.writeError(err)
			s.logger.Warn("frame dispatch failed", zap.String("subject_id", s.subjectID), zap.Error(err))
		}
	}
}
