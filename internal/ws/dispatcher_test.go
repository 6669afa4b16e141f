package ws

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

type fakeMessageRepo struct {
	created   []*domain.Message
	nextID    int64
	createErr error
	updateErr error
	deleteErr error
	updated   map[int64]string
	deleted   []int64
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{updated: make(map[int64]string)}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	msg.ID = r.nextID
	msg.CreatedAt = time.Now()
	r.created = append(r.created, msg)
	return nil
}

func (r *fakeMessageRepo) UpdateText(_ context.Context, id int64, text string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updated[id] = text
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeMessageRepo) ListBetween(_ context.Context, _, _ int64) ([]domain.Message, error) {
	return nil, nil
}

func createEnvelope(sender, receiver int64, text string) *Envelope {
	return &Envelope{
		Kind:   EnvelopeCreate,
		Create: &CreateMessage{Text: &text, SenderID: sender, ReceiverID: receiver},
	}
}

func TestDispatchCreateEchoesAndDelivers(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	registry := NewConnectionRegistry(nil, nil)
	receiver := &fakeChannel{}
	registry.Register(ctx, "2", receiver)

	dispatcher := NewMessageDispatcher(repo, registry, nil, nil)
	sender := &fakeChannel{}

	err := dispatcher.Dispatch(ctx, createEnvelope(1, 2, "hi"), sender)
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, int64(1), repo.created[0].SenderID)
	assert.Equal(t, int64(2), repo.created[0].ReceiverID)
	assert.Equal(t, []string{"hi"}, sender.received())
	assert.Equal(t, []string{"hi"}, receiver.received())
}

func TestDispatchCreateOfflineReceiverStillPersists(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	dispatcher := NewMessageDispatcher(repo, NewConnectionRegistry(nil, nil), nil, nil)
	sender := &fakeChannel{}

	err := dispatcher.Dispatch(ctx, createEnvelope(1, 42, "hi"), sender)
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, []string{"hi"}, sender.received())
}

func TestDispatchCreateValidationRunsBeforePersistence(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	dispatcher := NewMessageDispatcher(repo, NewConnectionRegistry(nil, nil), nil, nil)

	text := "hi"
	photo := "pic.png"
	env := &Envelope{Kind: EnvelopeCreate, Create: &CreateMessage{Text: &text, Photo: &photo, SenderID: 1, ReceiverID: 2}}

	err := dispatcher.Dispatch(ctx, env, &fakeChannel{})
	require.Error(t, err)
	assert.Equal(t, "INVALID_ENVELOPE", apperrors.ToDomainError(err).Code)
	assert.Empty(t, repo.created)
}

func TestDispatchCreatePersistenceFailure(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	repo.createErr = fmt.Errorf("connection refused")
	dispatcher := NewMessageDispatcher(repo, NewConnectionRegistry(nil, nil), nil, nil)
	sender := &fakeChannel{}

	err := dispatcher.Dispatch(ctx, createEnvelope(1, 2, "hi"), sender)
	require.Error(t, err)
	assert.Equal(t, "PERSISTENCE_ERROR", apperrors.ToDomainError(err).Code)
	assert.Empty(t, sender.received())
}

func TestDispatchUpdateEchoesNewText(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	dispatcher := NewMessageDispatcher(repo, NewConnectionRegistry(nil, nil), nil, nil)
	sender := &fakeChannel{}

	env := &Envelope{Kind: EnvelopeUpdate, Update: &UpdateMessage{ID: 5, Text: "edited"}}
	err := dispatcher.Dispatch(ctx, env, sender)
	require.NoError(t, err)

	assert.Equal(t, "edited", repo.updated[5])
	assert.Equal(t, []string{"edited"}, sender.received())
}

func TestDispatchUpdateNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	repo.updateErr = pgx.ErrNoRows
	dispatcher := NewMessageDispatcher(repo, NewConnectionRegistry(nil, nil), nil, nil)
	sender := &fakeChannel{}

	env := &Envelope{Kind: EnvelopeUpdate, Update: &UpdateMessage{ID: 99, Text: "edited"}}
	err := dispatcher.Dispatch(ctx, env, sender)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
	assert.Empty(t, sender.received())
}

func TestDispatchDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	repo.deleteErr = pgx.ErrNoRows
	dispatcher := NewMessageDispatcher(repo, NewConnectionRegistry(nil, nil), nil, nil)

	env := &Envelope{Kind: EnvelopeDelete, Delete: &DeleteMessage{ID: 99}}
	err := dispatcher.Dispatch(ctx, env, &fakeChannel{})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestDispatchDeleteSucceedsSilently(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	dispatcher := NewMessageDispatcher(repo, NewConnectionRegistry(nil, nil), nil, nil)
	sender := &fakeChannel{}

	env := &Envelope{Kind: EnvelopeDelete, Delete: &DeleteMessage{ID: 7}}
	err := dispatcher.Dispatch(ctx, env, sender)
	require.NoError(t, err)

	assert.Equal(t, []int64{7}, repo.deleted)
	assert.Empty(t, sender.received())
}
