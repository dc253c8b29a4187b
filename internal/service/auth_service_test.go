package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (f *fakeResetRepo) Create(ctx context.Context, token *repository.PasswordResetToken) error {
	token.ID = token.Token
	token.CreatedAt = time.Now()
	copied := *token
	f.tokens[token.Token] = &copied
	return nil
}

func (f *fakeResetRepo) GetByToken(ctx context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	token, ok := f.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *token
	return &copied, nil
}

func (f *fakeResetRepo) MarkUsed(ctx context.Context, id string) error {
	if token, ok := f.tokens[id]; ok {
		now := time.Now()
		token.UsedAt = &now
	}
	return nil
}

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakeResetRepo) {
	users := newFakeUserRepo()
	resets := newFakeResetRepo()
	cfg := config.AuthConfig{
		JWTSecret:               "test-secret",
		AccessTokenTTLMinutes:   5,
		PasswordResetTTLMinutes: 5,
		BcryptCost:              4,
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes)
	return NewAuthService(users, resets, tokens, cfg, zap.NewNop()), users, resets
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("register always yields an end user", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		user, err := svc.Register(ctx, RegisterInput{Name: "Sam", Email: "Sam@Example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleEndUser, user.Role)
		assert.Equal(t, "sam@example.com", user.Email)
		assert.True(t, user.Active)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		_, err := svc.Register(ctx, RegisterInput{Name: "Sam", Email: "sam@example.com", Password: "secret123"})
		require.NoError(t, err)
		_, err = svc.Register(ctx, RegisterInput{Name: "Sam2", Email: "SAM@example.com", Password: "secret123"})
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	})

	t.Run("login issues token, bad password unauthorized", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		_, err := svc.Register(ctx, RegisterInput{Name: "Sam", Email: "sam@example.com", Password: "secret123"})
		require.NoError(t, err)

		session, err := svc.Login(ctx, "sam@example.com", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.True(t, session.ExpiresAt.After(time.Now()))

		_, err = svc.Login(ctx, "sam@example.com", "wrong-pass")
		assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
	})

	t.Run("disabled account cannot log in", func(t *testing.T) {
		svc, users, _ := newAuthFixture()
		user, err := svc.Register(ctx, RegisterInput{Name: "Sam", Email: "sam@example.com", Password: "secret123"})
		require.NoError(t, err)
		users.users[user.ID].Active = false

		_, err = svc.Login(ctx, "sam@example.com", "secret123")
		assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
	})
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("agent requires department", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		_, err := svc.CreateUser(ctx, CreateUserInput{
			Name: "A", Email: "a@example.com", Password: "secret123", Role: domain.RoleAgent,
		})
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

		deptID := "it"
		agent, err := svc.CreateUser(ctx, CreateUserInput{
			Name: "A", Email: "a@example.com", Password: "secret123",
			Role: domain.RoleAgent, DepartmentID: &deptID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAgent, agent.Role)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		_, err := svc.CreateUser(ctx, CreateUserInput{
			Name: "X", Email: "x@example.com", Password: "secret123", Role: "SUPERUSER",
		})
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("full reset flow", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		_, err := svc.Register(ctx, RegisterInput{Name: "Sam", Email: "sam@example.com", Password: "secret123"})
		require.NoError(t, err)

		token, err := svc.RequestPasswordReset(ctx, "sam@example.com")
		require.NoError(t, err)
		require.NotNil(t, token)

		require.NoError(t, svc.ConfirmPasswordReset(ctx, token.Token, "brand-new-pass"))

		_, err = svc.Login(ctx, "sam@example.com", "brand-new-pass")
		assert.NoError(t, err)
		_, err = svc.Login(ctx, "sam@example.com", "secret123")
		assert.Error(t, err)

		// token is single use
		err = svc.ConfirmPasswordReset(ctx, token.Token, "another-pass")
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("unknown email does not leak", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		token, err := svc.RequestPasswordReset(ctx, "ghost@example.com")
		assert.NoError(t, err)
		assert.Nil(t, token)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		svc, _, resets := newAuthFixture()
		_, err := svc.Register(ctx, RegisterInput{Name: "Sam", Email: "sam@example.com", Password: "secret123"})
		require.NoError(t, err)

		token, err := svc.RequestPasswordReset(ctx, "sam@example.com")
		require.NoError(t, err)
		resets.tokens[token.Token].ExpiresAt = time.Now().Add(-time.Minute)

		err = svc.ConfirmPasswordReset(ctx, token.Token, "brand-new-pass")
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthFixture()
	user, err := svc.Register(ctx, RegisterInput{Name: "Sam", Email: "sam@example.com", Password: "secret123"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, users.users[user.ID], "wrong-old", "fresh-password")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	current, _ := users.GetByID(ctx, user.ID)
	require.NoError(t, svc.ChangePassword(ctx, current, "secret123", "fresh-password"))

	_, err = svc.Login(ctx, "sam@example.com", "fresh-password")
	assert.NoError(t, err)
}
