package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/storage/memory"
	"github.com/rryowa/blogapi/internal/util"
)

func newTestAuthService() (*AuthService, *memory.Storage) {
	store := memory.NewStorage()
	tokens := NewTokenService(newTestTokenConfig(), store, memory.NewTokenDenylist())
	log := zap.NewNop().Sugar()
	webhook := NewWebhookService(log, "")
	return NewAuthService(tokens, store, webhook, log), store
}

func validRegisterRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Username:        "alice01",
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "Passw0rd1",
		ConfirmPassword: "Passw0rd1",
	}
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestAuthService()

	user, pair, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	assert.Equal(t, "alice01", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored, err := store.GetUserByUsername(ctx, "alice01")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Passw0rd1")))

	token, err := store.GetRefreshToken(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, token.Token)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	tests := []struct {
		name   string
		mutate func(*models.RegisterRequest)
	}{
		{"short username", func(r *models.RegisterRequest) { r.Username = "abcd" }},
		{"bad email", func(r *models.RegisterRequest) { r.Email = "not-an-email" }},
		{"password without digit", func(r *models.RegisterRequest) {
			r.Password = "Password"
			r.ConfirmPassword = "Password"
		}},
		{"password with symbol", func(r *models.RegisterRequest) {
			r.Password = "Passw0rd!"
			r.ConfirmPassword = "Passw0rd!"
		}},
		{"mismatched confirmation", func(r *models.RegisterRequest) { r.ConfirmPassword = "Passw0rd2" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegisterRequest()
			tc.mutate(&req)
			_, _, err := svc.Register(ctx, req)
			assert.True(t, util.IsKind(err, util.KindValidation))
		})
	}
}

func TestRegisterChecksEmailBeforeUsername(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	_, _, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	// Same email and same username: the email conflict must win.
	_, _, err = svc.Register(ctx, validRegisterRequest())
	require.True(t, util.IsKind(err, util.KindConflict))
	assert.EqualError(t, err, "email is already registered")

	req := validRegisterRequest()
	req.Email = "alice2@example.com"
	_, _, err = svc.Register(ctx, req)
	require.True(t, util.IsKind(err, util.KindConflict))
	assert.EqualError(t, err, "username is already taken")
}

func TestLoginDistinguishesUnknownUserFromBadPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	_, _, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, models.LoginRequest{Username: "nobody1", Password: "Passw0rd1"})
	require.True(t, util.IsKind(err, util.KindAuthentication))
	assert.EqualError(t, err, "invalid username")

	_, _, err = svc.Login(ctx, models.LoginRequest{Username: "alice01", Password: "Wrongpass1"})
	require.True(t, util.IsKind(err, util.KindAuthentication))
	assert.EqualError(t, err, "invalid password")
}

func TestLoginRotatesRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	_, registerPair, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	user, loginPair, err := svc.Login(ctx, models.LoginRequest{Username: "alice01", Password: "Passw0rd1"})
	require.NoError(t, err)
	assert.Equal(t, "alice01", user.Username)
	assert.NotEqual(t, registerPair.RefreshToken, loginPair.RefreshToken)

	// The token issued at registration was rotated out by the login.
	_, _, err = svc.Refresh(ctx, registerPair.RefreshToken)
	assert.True(t, util.IsKind(err, util.KindAuthentication))

	_, _, err = svc.Refresh(ctx, loginPair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRotatesAndInvalidatesPrevious(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	_, pair, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	user, nextPair, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "alice01", user.Username)
	assert.NotEqual(t, pair.RefreshToken, nextPair.RefreshToken)

	// Replaying the rotated-out token fails even though its signature is valid.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.True(t, util.IsKind(err, util.KindAuthentication))

	_, _, err = svc.Refresh(ctx, nextPair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	_, _, err := svc.Refresh(ctx, "not.a.jwt")
	require.True(t, util.IsKind(err, util.KindAuthentication))
	assert.EqualError(t, err, "unauthorized")
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	_, pair, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))

	// The refresh token is gone server-side.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.True(t, util.IsKind(err, util.KindAuthentication))

	// The access token is denylisted for its remaining life.
	_, err = svc.Authenticate(ctx, pair.AccessToken)
	require.True(t, util.IsKind(err, util.KindAuthentication))
	assert.EqualError(t, err, "invalid access token")
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	_, pair, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))
	require.NoError(t, svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))
}

func TestAuthenticateResolvesUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	registered, pair, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "alice01", user.Username)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	cfg := newTestTokenConfig()
	cfg.AccessTTL = -time.Minute
	tokens := NewTokenService(cfg, store, memory.NewTokenDenylist())
	log := zap.NewNop().Sugar()
	svc := NewAuthService(tokens, store, NewWebhookService(log, ""), log)

	_, pair, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, pair.AccessToken)
	require.True(t, util.IsKind(err, util.KindAuthentication))
	assert.EqualError(t, err, "invalid access token")
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	tokens := NewTokenService(newTestTokenConfig(), store, memory.NewTokenDenylist())
	log := zap.NewNop().Sugar()
	svc := NewAuthService(tokens, store, NewWebhookService(log, ""), log)

	token, err := tokens.SignAccessToken("deadbeef-0000-0000-0000-000000000000")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	assert.True(t, util.IsKind(err, util.KindNotFound))
}
