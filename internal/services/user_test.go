package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"together-backend/internal/repository"
)

func newTestUserService() *UserService {
	return NewUserService(repository.NewUserRepository(newTestRegistry()), "test-secret")
}

func TestCreateUserIssuesCodeAndToken(t *testing.T) {
	svc := newTestUserService()

	user, err := svc.CreateUser(context.Background(), "Ada")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ada", user.DisplayName)
	assert.Len(t, user.Code, 6)
	assert.NotEmpty(t, user.Token)

	// The token resolves back to the store-assigned user id.
	userID, err := svc.ValidateJWT(user.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	svc := newTestUserService()
	other := newTestUserService()

	user, err := svc.CreateUser(context.Background(), "Ada")
	require.NoError(t, err)

	token, err := other.GenerateJWT(user.ID)
	require.NoError(t, err)
	// Same secret, different service instance: still valid.
	_, err = svc.ValidateJWT(token)
	require.NoError(t, err)

	wrong := NewUserService(repository.NewUserRepository(newTestRegistry()), "another-secret")
	badToken, err := wrong.GenerateJWT(user.ID)
	require.NoError(t, err)
	_, err = svc.ValidateJWT(badToken)
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	svc := newTestUserService()

	_, err := svc.ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestGetUserRoundTrip(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "Grace")
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.DisplayName, got.DisplayName)
	assert.Equal(t, created.Code, got.Code)
}

func TestRegisterPushToken(t *testing.T) {
	repo := repository.NewUserRepository(newTestRegistry())
	svc := NewUserService(repo, "test-secret")
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "Ada")
	require.NoError(t, err)

	require.NoError(t, svc.RegisterPushToken(ctx, user.ID, "device-token-1"))

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PushToken)
	assert.Equal(t, "device-token-1", *got.PushToken)

	err = svc.RegisterPushToken(ctx, "missing-user", "device-token-2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
