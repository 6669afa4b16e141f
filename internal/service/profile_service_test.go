package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, validatePhone(""))
	assert.NoError(t, validatePhone("+79005001010"))
	assert.Error(t, validatePhone("79005001010"))
	assert.Error(t, validatePhone("+0123456789"))
	assert.Error(t, validatePhone("+7900"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, validateEmail(""))
	assert.NoError(t, validateEmail("user@example.com"))
	assert.Error(t, validateEmail("user@"))
	assert.Error(t, validateEmail("userexample.com"))
	assert.Error(t, validateEmail("user name@example.com"))
}

func newTestProfileService() (*ProfileService, *fakeUserRepo, *fakeProfileRepo) {
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	return NewProfileService(users, profiles), users, profiles
}

func TestProfileGetRedactsForOtherUsers(t *testing.T) {
	ctx := context.Background()
	svc, users, profiles := newTestProfileService()

	alice := &domain.User{Username: "alice", Role: domain.RoleUser}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, profiles.Create(ctx, &domain.Personal{UserID: alice.ID, Email: "alice@example.com"}))

	_, _, redacted, err := svc.Get(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, redacted)

	_, _, redacted, err = svc.Get(ctx, alice.ID+10, alice.ID)
	require.NoError(t, err)
	assert.True(t, redacted)
}

func TestProfileGetUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestProfileService()

	_, _, _, err := svc.Get(ctx, 1, 404)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProfileUpdatePartial(t *testing.T) {
	ctx := context.Background()
	svc, users, profiles := newTestProfileService()

	alice := &domain.User{Username: "alice", Role: domain.RoleUser}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, profiles.Create(ctx, &domain.Personal{UserID: alice.ID, Phone: "+79005001010", Email: "old@example.com"}))

	email := "new@example.com"
	personal, err := svc.Update(ctx, alice.ID, nil, &email)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", personal.Email)
	assert.Equal(t, "+79005001010", personal.Phone)
}

func TestProfileUpdateRejectsBadFormats(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestProfileService()

	bad := "not-a-phone"
	_, err := svc.Update(ctx, 1, &bad, nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	badMail := "nope"
	_, err = svc.Update(ctx, 1, nil, &badMail)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}
