package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	authdomain "github.com/mepworks/invoicing/internal/auth/domain"
	"github.com/mepworks/invoicing/internal/auth/repository"
	"github.com/mepworks/invoicing/internal/auth/service"
	"github.com/mepworks/invoicing/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, ttl time.Duration) authdomain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_auth_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	return service.New(service.Params{
		Config:   config.Config{SessionTTL: ttl},
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Users:    repository.ProvideUsers(),
		Sessions: repository.ProvideSessions(),
	})
}

func registerRequest() authdomain.RegisterRequest {
	return authdomain.RegisterRequest{
		Username: "alice",
		Password: "correct-password",
		Name:     "Alice Perera",
		Phone:    "0771234567",
	}
}

func TestRegisterDefaultsToCustomer(t *testing.T) {
	svc := newTestService(t, time.Hour)

	user, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	assert.Equal(t, authdomain.RoleCustomer, user.Role)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "correct-password", user.PasswordHash)
	if _, err := uuid.Parse(user.ExternalID); err != nil {
		t.Fatalf("expected external id UUID, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest())
	assert.ErrorIs(t, err, authdomain.ErrUserExists)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, time.Hour)

	_, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Username: "ab",
		Password: "short",
	})
	require.Error(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	result, err := svc.Login(ctx, authdomain.LoginRequest{Username: "alice", Password: "correct-password"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	principal, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.Username)
	assert.Equal(t, authdomain.RoleCustomer, principal.Role)
	assert.Equal(t, "0771234567", principal.Phone)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	result, err := svc.Login(ctx, authdomain.LoginRequest{Username: "alice", Password: "correct-password"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Token))

	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, authdomain.ErrSessionRevoked)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	svc := newTestService(t, -time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	result, err := svc.Login(ctx, authdomain.LoginRequest{Username: "alice", Password: "correct-password"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, authdomain.ErrSessionExpired)
}

func TestAuthenticateGarbageToken(t *testing.T) {
	svc := newTestService(t, time.Hour)

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, authdomain.ErrInvalidSession)

	_, err = svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, authdomain.ErrInvalidSession)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "bootstrap-secret"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "bootstrap-secret"))

	result, err := svc.Login(ctx, authdomain.LoginRequest{Username: "admin", Password: "bootstrap-secret"})
	require.NoError(t, err)
	assert.Equal(t, authdomain.RoleAdmin, result.User.Role)
}
