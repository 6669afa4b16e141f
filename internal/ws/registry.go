package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Avdeevkonst/oauth2-chat/internal/cache"
)

// Channel is a handle to a live connection capable of receiving pushed text.
type Channel interface {
	WriteText(payload string) error
}

// ConnectionRegistry owns the subject-to-channel table used for live
// delivery. At most one channel is registered per subject; registering a
// new channel replaces the old mapping without closing the prior channel,
// which detects closure on its own. All methods are safe for concurrent
// use from independent connection handlers.
type ConnectionRegistry struct {
	mu       sync.RWMutex
	channels map[string]Channel
	presence *cache.PresenceStore
	logger   *zap.Logger
}

// NewConnectionRegistry builds an empty registry. The presence store may be
// nil; presence mirroring is then skipped.
func NewConnectionRegistry(presence *cache.PresenceStore, logger *zap.Logger) *ConnectionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionRegistry{
		channels: make(map[string]Channel),
		presence: presence,
		logger:   logger,
	}
}

// Register inserts or overwrites the mapping for the subject.
func (r *ConnectionRegistry) Register(ctx context.Context, subjectID string, ch Channel) {
	r.mu.Lock()
	r.channels[subjectID] = ch
	r.mu.Unlock()

	if err := r.presence.SetOnline(ctx, subjectID); err != nil {
		r.logger.Warn("presence set online failed", zap.String("subject_id", subjectID), zap.Error(err))
	}
	r.logger.Debug("channel registered", zap.String("subject_id", subjectID))
}

// RegisterIfAbsent installs ch only when the subject has no channel yet
// and reports whether it became the registered channel. Check and insert
// happen under one lock, so two concurrent connects for the same subject
// resolve to exactly one winner.
func (r *ConnectionRegistry) RegisterIfAbsent(ctx context.Context, subjectID string, ch Channel) bool {
	r.mu.Lock()
	if _, ok := r.channels[subjectID]; ok {
		r.mu.Unlock()
		return false
	}
	r.channels[subjectID] = ch
	r.mu.Unlock()

	if err := r.presence.SetOnline(ctx, subjectID); err != nil {
		r.logger.Warn("presence set online failed", zap.String("subject_id", subjectID), zap.Error(err))
	}
	r.logger.Debug("channel registered", zap.String("subject_id", subjectID))
	return true
}

// Unregister removes the mapping only if ch is still the registered
// channel, so a stale disconnect cannot evict a newer connection for the
// same subject.
func (r *ConnectionRegistry) Unregister(ctx context.Context, subjectID string, ch Channel) {
	r.mu.Lock()
	current, ok := r.channels[subjectID]
	if !ok || current != ch {
		r.mu.Unlock()
		return
	}
	delete(r.channels, subjectID)
	r.mu.Unlock()

	if err := r.presence.SetOffline(ctx, subjectID); err != nil {
		r.logger.Warn("presence set offline failed", zap.String("subject_id", subjectID), zap.Error(err))
	}
	r.logger.Debug("channel unregistered", zap.String("subject_id", subjectID))
}

// IsRegistered reports whether the subject has a live channel.
func (r *ConnectionRegistry) IsRegistered(subjectID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.channels[subjectID]
	return ok
}

// Lookup returns the live channel for the subject, if any.
func (r *ConnectionRegistry) Lookup(subjectID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[subjectID]
	return ch, ok
}

// Deliver writes the payload to the subject's channel if one is registered
// and reports whether delivery was attempted. Delivery is best-effort:
// a subject without a live channel simply misses the push.
func (r *ConnectionRegistry) Deliver(subjectID string, payload string) bool {
	ch, ok := r.Lookup(subjectID)
	if !ok {
		return false
	}
	if err := ch.WriteText(payload); err != nil {
		r.logger.Warn("delivery failed", zap.String("subject_id", subjectID), zap.Error(err))
	}
	return true
}
