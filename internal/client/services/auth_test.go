package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imctrack/imctrack/internal/client/env"
	"github.com/imctrack/imctrack/internal/client/models"
	"github.com/imctrack/imctrack/internal/common"
)

type fakeChallenge struct {
	token      string
	err        error
	lastAction string
}

func (f *fakeChallenge) Token(_ context.Context, action string) (string, error) {
	f.lastAction = action
	return f.token, f.err
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "juan123", NormalizeUsername("  Juan123  "))
	assert.Equal(t, "ana.garcia", NormalizeUsername("Ana.Garcia"))
}

func TestAuthService_Login_NormalizesBeforeSending(t *testing.T) {
	client := &fakeClient{identity: &models.Identity{UserID: 7, Username: "juan123"}}
	svc := NewAuthService(client, newTestStore(t, env.New()), nil, testLogger())

	require.NoError(t, svc.Login(context.Background(), "  Juan123  ", "secret-pass"))
	assert.Equal(t, 1, client.loginCalls)
	assert.Equal(t, "juan123", client.lastUsername)
	assert.Equal(t, "secret-pass", client.lastPassword)
}

func TestAuthService_Login_RejectsBadInputWithoutNetwork(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"too short", "ab", "secret-pass", common.ErrInvalidUsername},
		{"illegal characters", "juan!perez", "secret-pass", common.ErrInvalidUsername},
		{"empty password", "juan123", "", common.ErrPasswordRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			svc := NewAuthService(client, newTestStore(t, env.New()), nil, testLogger())

			err := svc.Login(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, client.loginCalls)
		})
	}
}

func TestAuthService_Register_PasswordRules(t *testing.T) {
	client := &fakeClient{}
	svc := NewAuthService(client, newTestStore(t, env.New()), nil, testLogger())
	ctx := context.Background()

	err := svc.Register(ctx, "juan123", "nueve-ch9", "nueve-ch9")
	assert.ErrorIs(t, err, common.ErrPasswordTooShort)

	err = svc.Register(ctx, "juan123", "long-enough-pass", "different-pass")
	assert.ErrorIs(t, err, common.ErrPasswordMismatch)

	assert.Zero(t, client.registerCalls)

	client.identity = &models.Identity{UserID: 3, Username: "juan123"}
	require.NoError(t, svc.Register(ctx, "juan123", "long-enough-pass", "long-enough-pass"))
	assert.Equal(t, 1, client.registerCalls)
}

func TestAuthService_ChallengeTokenAttached(t *testing.T) {
	client := &fakeClient{identity: &models.Identity{UserID: 1}}
	challenge := &fakeChallenge{token: "proof-abc"}
	svc := NewAuthService(client, newTestStore(t, env.New()), challenge, testLogger())

	require.NoError(t, svc.Login(context.Background(), "juan123", "secret-pass"))
	assert.Equal(t, "proof-abc", client.lastChallenge)
	assert.Equal(t, "login", challenge.lastAction)
}

func TestAuthService_ChallengeFailureOmitsProof(t *testing.T) {
	client := &fakeClient{identity: &models.Identity{UserID: 1}}
	challenge := &fakeChallenge{err: errors.New("challenge unavailable")}
	svc := NewAuthService(client, newTestStore(t, env.New()), challenge, testLogger())

	require.NoError(t, svc.Login(context.Background(), "juan123", "secret-pass"))
	assert.Empty(t, client.lastChallenge)
}

func TestAuthService_TokenExpiry(t *testing.T) {
	exp := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	client := &fakeClient{tokenExpiry: exp, tokenValid: true}
	svc := NewAuthService(client, newTestStore(t, env.New()), nil, testLogger())

	got, ok := svc.TokenExpiry()
	require.True(t, ok)
	assert.Equal(t, exp, got)

	svc = NewAuthService(&fakeClient{}, newTestStore(t, env.New()), nil, testLogger())
	_, ok = svc.TokenExpiry()
	assert.False(t, ok)
}

func TestAuthService_LoginBindsScope_LogoutClearsIt(t *testing.T) {
	client := &fakeClient{identity: &models.Identity{UserID: 42, Username: "juan123"}}
	store := newTestStore(t, env.New())
	svc := NewAuthService(client, store, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Login(ctx, "juan123", "secret-pass"))
	require.NoError(t, store.SaveProfile(ctx, &models.Profile{FirstName: "Juan", LastName: "Pérez", HeightM: 1.8}))
	require.NotNil(t, store.GetProfile(ctx))

	svc.Logout(ctx)
	assert.Equal(t, 1, client.logoutCalls)
	assert.False(t, svc.IsAuthenticated())
	// the profile was written under the identity scope, the unscoped
	// keys must not see it
	assert.Nil(t, store.GetProfile(ctx))
}
