package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bcm-risk-service/internal/auth"
	"github.com/spec-kit/bcm-risk-service/internal/domain"
	apperrors "github.com/spec-kit/bcm-risk-service/pkg/util"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *auth.TokenManager) {
	t.Helper()
	users := newFakeUserRepo()
	tokens := auth.NewTokenManager("test-secret", 60)
	return NewAuthService(users, tokens, nil), users, tokens
}

func seedAccount(t *testing.T, users *fakeUserRepo, username, password string, active bool) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	user := &domain.User{
		Username:     username,
		Email:        username + "@bcm.com",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     active,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestLoginIssuesToken(t *testing.T) {
	service, users, tokens := newAuthFixture(t)
	account := seedAccount(t, users, "admin", "admin123", true)

	result, err := service.Login(context.Background(), "admin", "admin123")

	require.NoError(t, err)
	assert.Equal(t, account.ID, result.User.ID)
	assert.False(t, result.ExpiresAt.IsZero())

	claims, err := tokens.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestLoginRejectsBadCredentialsIdentically(t *testing.T) {
	service, users, _ := newAuthFixture(t)
	seedAccount(t, users, "admin", "admin123", true)

	_, wrongPassword := authErr(service.Login(context.Background(), "admin", "nope"))
	_, unknownUser := authErr(service.Login(context.Background(), "ghost", "admin123"))

	assert.Equal(t, "UNAUTHORIZED", wrongPassword.Code)
	assert.Equal(t, "UNAUTHORIZED", unknownUser.Code)
	assert.Equal(t, wrongPassword.Message, unknownUser.Message)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	service, users, _ := newAuthFixture(t)
	seedAccount(t, users, "former", "password123", false)

	_, domainErr := authErr(service.Login(context.Background(), "former", "password123"))
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
}

func TestLoginRequiresCredentials(t *testing.T) {
	service, _, _ := newAuthFixture(t)

	_, domainErr := authErr(service.Login(context.Background(), "", ""))
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func authErr(result *LoginResult, err error) (*LoginResult, *apperrors.DomainError) {
	return result, apperrors.ToDomainError(err)
}
