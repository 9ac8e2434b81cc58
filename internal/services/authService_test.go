package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	users := newMemUserStore()
	svc := NewAuthService(users, testSecret, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", user.Password)
	assert.Equal(t, "active", user.Status)

	_, err = svc.Register(ctx, "alice2", "alice@example.com", "password123")
	requireKind(t, err, KindInvalidInput)

	token, loggedIn, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.Hex(), claims["user_id"])

	me, err := svc.Me(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(newMemUserStore(), testSecret, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "bob@example.com", "nope")
	requireKind(t, err, KindUnauthenticated)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	requireKind(t, err, KindUnauthenticated)
}

func TestMeUnknownUser(t *testing.T) {
	svc := NewAuthService(newMemUserStore(), testSecret, time.Hour)
	_, err := svc.Me(context.Background(), "665f1c2b9d1e8a00000000aa")
	requireKind(t, err, KindNotFound)
}
