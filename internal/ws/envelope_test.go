package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

func TestParseEnvelopeCreate(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"text":"hi","photo":null,"sender_id":1,"receiver_id":2}`))
	require.NoError(t, err)
	require.Equal(t, EnvelopeCreate, env.Kind)
	require.NotNil(t, env.Create)
	require.NotNil(t, env.Create.Text)
	assert.Equal(t, "hi", *env.Create.Text)
	assert.Nil(t, env.Create.Photo)
	assert.Equal(t, int64(1), env.Create.SenderID)
	assert.Equal(t, int64(2), env.Create.ReceiverID)
}

func TestParseEnvelopeUpdate(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"id":5,"text":"edited"}`))
	require.NoError(t, err)
	require.Equal(t, EnvelopeUpdate, env.Kind)
	require.NotNil(t, env.Update)
	assert.Equal(t, int64(5), env.Update.ID)
	assert.Equal(t, "edited", env.Update.Text)
}

func TestParseEnvelopeDelete(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"id":9}`))
	require.NoError(t, err)
	require.Equal(t, EnvelopeDelete, env.Kind)
	require.NotNil(t, env.Delete)
	assert.Equal(t, int64(9), env.Delete.ID)
}

func TestParseEnvelopePhotoOnlyIsCreate(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"photo":"s3://bucket/cat.png","receiver_id":2}`))
	require.NoError(t, err)
	assert.Equal(t, EnvelopeCreate, env.Kind)
	require.NotNil(t, env.Create.Photo)
	assert.Equal(t, "s3://bucket/cat.png", *env.Create.Photo)
}

func TestParseEnvelopeInvalidJSON(t *testing.T) {
	_, err := ParseEnvelope([]byte(`not json at all`))
	require.Error(t, err)
	assert.True(t, apperrors.IsProtocolViolation(err))
}

func TestParseEnvelopeUnknownShape(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"something":"else"}`))
	require.Error(t, err)
	assert.True(t, apperrors.IsProtocolViolation(err))
}

func TestValidateCreateRequiresExactlyOneBody(t *testing.T) {
	text := "hi"
	photo := "pic.png"

	both := &Envelope{Kind: EnvelopeCreate, Create: &CreateMessage{Text: &text, Photo: &photo}}
	err := both.Validate()
	require.Error(t, err)
	assert.Equal(t, "INVALID_ENVELOPE", apperrors.ToDomainError(err).Code)

	neither := &Envelope{Kind: EnvelopeCreate, Create: &CreateMessage{}}
	err = neither.Validate()
	require.Error(t, err)
	assert.Equal(t, "INVALID_ENVELOPE", apperrors.ToDomainError(err).Code)

	textOnly := &Envelope{Kind: EnvelopeCreate, Create: &CreateMessage{Text: &text}}
	assert.NoError(t, textOnly.Validate())

	photoOnly := &Envelope{Kind: EnvelopeCreate, Create: &CreateMessage{Photo: &photo}}
	assert.NoError(t, photoOnly.Validate())
}

func TestBodyPrefersText(t *testing.T) {
	text := "hi"
	photo := "pic.png"
	assert.Equal(t, "hi", (&CreateMessage{Text: &text, Photo: &photo}).Body())
	assert.Equal(t, "pic.png", (&CreateMessage{Photo: &photo}).Body())
	assert.Equal(t, "", (&CreateMessage{}).Body())
}
