package ws

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn feeds scripted frames and records everything written back.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	idx    int
	writes []string
	closed bool
}

func newFakeConn(frames ...string) *fakeConn {
	conn := &fakeConn{}
	for _, f := range frames {
		conn.frames = append(conn.frames, []byte(f))
	}
	return conn
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idx >= len(c.frames) {
		return 0, nil, io.EOF
	}
	data := c.frames[c.idx]
	c.idx++
	return textMessage, data, nil
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, string(data))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.writes...)
}

func newTestSession(conn Conn, repo *fakeMessageRepo) (*Session, *ConnectionRegistry) {
	registry := NewConnectionRegistry(nil, nil)
	dispatcher := NewMessageDispatcher(repo, registry, nil, nil)
	return NewSession(1, 2, conn, registry, dispatcher, nil), registry
}

func TestSessionCreateEchoPersistsAndCleansUp(t *testing.T) {
	repo := newFakeMessageRepo()
	conn := newFakeConn(`{"text":"hi","photo":null,"sender_id":1,"receiver_id":2}`)
	session, registry := newTestSession(conn, repo)

	session.Run(context.Background())

	require.Len(t, repo.created, 1)
	assert.Equal(t, int64(1), repo.created[0].SenderID)
	assert.Equal(t, int64(2), repo.created[0].ReceiverID)
	assert.Equal(t, []string{"hi"}, conn.written())
	assert.False(t, registry.IsRegistered("1"))
}

// The path parameter, not the frame body, decides addressing.
func TestSessionOverridesFrameAddressing(t *testing.T) {
	repo := newFakeMessageRepo()
	conn := newFakeConn(`{"text":"hi","photo":null,"sender_id":77,"receiver_id":88}`)
	session, _ := newTestSession(conn, repo)

	session.Run(context.Background())

	require.Len(t, repo.created, 1)
	assert.Equal(t, int64(1), repo.created[0].SenderID)
	assert.Equal(t, int64(2), repo.created[0].ReceiverID)
}

func TestSessionDeleteNotFoundKeepsConnectionOpen(t *testing.T) {
	repo := newFakeMessageRepo()
	repo.deleteErr = pgx.ErrNoRows
	conn := newFakeConn(
		`{"id":99}`,
		`{"text":"hi","photo":null,"sender_id":1,"receiver_id":2}`,
	)
	session, _ := newTestSession(conn, repo)

	session.Run(context.Background())

	writes := conn.written()
	require.Len(t, writes, 2)
	assert.Contains(t, writes[0], "NOT_FOUND")
	assert.Equal(t, "hi", writes[1])
	require.Len(t, repo.created, 1)
}

func TestSessionProtocolViolationIsFatal(t *testing.T) {
	repo := newFakeMessageRepo()
	conn := newFakeConn(
		`this is not json`,
		`{"text":"hi","photo":null,"sender_id":1,"receiver_id":2}`,
	)
	session, registry := newTestSession(conn, repo)

	session.Run(context.Background())

	writes := conn.written()
	require.Len(t, writes, 1)
	assert.Contains(t, writes[0], "PROTOCOL_VIOLATION")
	assert.Empty(t, repo.created)
	assert.False(t, registry.IsRegistered("1"))
}

func TestSessionInvalidEnvelopeIsRecoverable(t *testing.T) {
	repo := newFakeMessageRepo()
	conn := newFakeConn(
		`{"text":"hi","photo":"pic.png","sender_id":1,"receiver_id":2}`,
		`{"text":"hi","photo":null,"sender_id":1,"receiver_id":2}`,
	)
	session, _ := newTestSession(conn, repo)

	session.Run(context.Background())

	writes := conn.written()
	require.Len(t, writes, 2)
	assert.Contains(t, writes[0], "INVALID_ENVELOPE")
	assert.Equal(t, "hi", writes[1])
	require.Len(t, repo.created, 1)
}

func TestSessionDeliversBetweenTwoSessions(t *testing.T) {
	repo := newFakeMessageRepo()
	registry := NewConnectionRegistry(nil, nil)
	dispatcher := NewMessageDispatcher(repo, registry, nil, nil)

	// receiver connects first and stays idle
	receiverConn := &fakeConn{}
	receiverSession := NewSession(2, 1, receiverConn, registry, dispatcher, nil)
	registry.Register(context.Background(), receiverSession.subjectID, receiverSession.channel)

	senderConn := newFakeConn(`{"text":"hi","photo":null,"sender_id":1,"receiver_id":2}`)
	senderSession := NewSession(1, 2, senderConn, registry, dispatcher, nil)
	senderSession.Run(context.Background())

	assert.Equal(t, []string{"hi"}, senderConn.written())
	assert.Equal(t, []string{"hi"}, receiverConn.written())
	assert.True(t, registry.IsRegistered("2"))
}

// A second session for the same subject does not steal or evict an
// existing registration, and its exit leaves the original intact.
func TestSessionRegistrationIsIdempotent(t *testing.T) {
	repo := newFakeMessageRepo()
	registry := NewConnectionRegistry(nil, nil)
	dispatcher := NewMessageDispatcher(repo, registry, nil, nil)

	existing := &fakeChannel{}
	registry.Register(context.Background(), "1", existing)

	conn := newFakeConn()
	session := NewSession(1, 2, conn, registry, dispatcher, nil)
	session.Run(context.Background())

	current, ok := registry.Lookup("1")
	require.True(t, ok)
	assert.Same(t, existing, current)
}
