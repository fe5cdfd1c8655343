package services

import (
	"context"
	"errors"
	"testing"

	"alarm-clock-backend/internal/apperr"
	"alarm-clock-backend/internal/models"
	"alarm-clock-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService() (*UserService, *memory.Store) {
	store := memory.NewStore()
	return NewUserService(store.Users(), "test-secret"), store
}

func TestRegisterIsIdempotentPerPhone(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	first, err := svc.Register(ctx, "+15550001")
	require.NoError(t, err)
	second, err := svc.Register(ctx, "+15550001")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "+15550001", second.Phone)
	assert.NotEmpty(t, second.Token)
}

func TestRegisterRequiresPhone(t *testing.T) {
	svc, _ := newUserService()

	_, err := svc.Register(context.Background(), "")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestLogin(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.Login(ctx, "+15550002")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	reg, err := svc.Register(ctx, "+15550002")
	require.NoError(t, err)

	login, err := svc.Login(ctx, "+15550002")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, login.ID)

	userID, err := svc.ValidateJWT(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, userID)
}

func TestValidateJWTRejectsForeignTokens(t *testing.T) {
	svc, _ := newUserService()
	other := NewUserService(nil, "another-secret")

	token, err := other.GenerateJWT("u1")
	require.NoError(t, err)

	_, err = svc.ValidateJWT(token)
	assert.Error(t, err)

	_, err = svc.ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestCurrent(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	user, err := svc.Current(ctx, models.AnonymousScope)
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = svc.Current(ctx, models.Scope("deleted-user"))
	require.NoError(t, err)
	assert.Nil(t, user)

	reg, err := svc.Register(ctx, "+15550003")
	require.NoError(t, err)
	user, err = svc.Current(ctx, models.Scope(reg.ID))
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "+15550003", user.Phone)
}

func TestUpdatePushToken(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	err := svc.UpdatePushToken(ctx, models.AnonymousScope, "abc")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	reg, err := svc.Register(ctx, "+15550004")
	require.NoError(t, err)
	require.NoError(t, svc.UpdatePushToken(ctx, models.Scope(reg.ID), " abc "))

	user, err := svc.GetByID(ctx, reg.ID)
	require.NoError(t, err)
	require.NotNil(t, user.PushToken)
	assert.Equal(t, "abc", *user.PushToken)

	require.NoError(t, svc.UpdatePushToken(ctx, models.Scope(reg.ID), ""))
	user, err = svc.GetByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Nil(t, user.PushToken)
}
