package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/forensic-case-service/internal/auth"
	"github.com/spec-kit/forensic-case-service/internal/domain"
	"github.com/spec-kit/forensic-case-service/internal/repository"
	apperrors "github.com/spec-kit/forensic-case-service/pkg/util"
)

func newAuthService(t *testing.T) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewAuthService(AuthDependencies{
		UserRepo:   store.Users(),
		Tokens:     auth.NewTokenManager("test-secret", 60),
		BcryptCost: 4,
	})
	return svc, store
}

func seedAdmin(t *testing.T, store *repository.MemoryStore) *domain.AppUser {
	t.Helper()
	hash, err := auth.HashPassword("admin-password", 4)
	require.NoError(t, err)
	admin := &domain.AppUser{Name: "Admin", Email: "admin@lab.test", PasswordHash: hash, Role: domain.RoleAdmin, Active: true}
	require.NoError(t, store.Users().Create(context.Background(), admin))
	return admin
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t)
	seedAdmin(t, store)

	result, err := svc.Authenticate(ctx, "admin@lab.test", "admin-password")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, domain.RoleAdmin, result.User.Role)

	// email lookup is case-insensitive
	_, err = svc.Authenticate(ctx, "  ADMIN@lab.test ", "admin-password")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "admin@lab.test", "wrong")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	_, err = svc.Authenticate(ctx, "nobody@lab.test", "admin-password")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestAuthenticateDeactivatedAccount(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t)
	admin := seedAdmin(t, store)

	admin.Active = false
	require.NoError(t, store.Users().Update(ctx, admin))

	_, err := svc.Authenticate(ctx, "admin@lab.test", "admin-password")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t)
	admin := seedAdmin(t, store)

	user, err := svc.Register(ctx, admin, UserCreateInput{
		Name:     "Alice",
		Email:    "Alice@Lab.Test",
		Password: "long-enough",
		Role:     domain.RoleForensics,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@lab.test", user.Email)
	assert.True(t, user.Active)
	assert.NotEqual(t, "long-enough", user.PasswordHash)

	// new account can log in right away
	_, err = svc.Authenticate(ctx, "alice@lab.test", "long-enough")
	require.NoError(t, err)

	// duplicate email
	_, err = svc.Register(ctx, admin, UserCreateInput{
		Name:     "Alice Again",
		Email:    "alice@lab.test",
		Password: "long-enough",
		Role:     domain.RoleForensics,
	})
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t)
	admin := seedAdmin(t, store)

	_, err := svc.Register(ctx, admin, UserCreateInput{
		Email:    "not-an-email",
		Password: "short",
		Role:     "janitor",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidationFailed, domainErr.Code)
	assert.Contains(t, domainErr.Details, "name")
	assert.Contains(t, domainErr.Details, "email")
	assert.Contains(t, domainErr.Details, "password")
	assert.Contains(t, domainErr.Details, "role")
}

func TestRegisterRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t)
	clerk := &domain.AppUser{Name: "Clerk", Email: "clerk@lab.test", PasswordHash: "h", Role: domain.RoleRegistration, Active: true}
	require.NoError(t, store.Users().Create(ctx, clerk))

	_, err := svc.Register(ctx, clerk, UserCreateInput{
		Name: "X", Email: "x@lab.test", Password: "long-enough", Role: domain.RoleForensics,
	})
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t)
	admin := seedAdmin(t, store)

	user, err := svc.Register(ctx, admin, UserCreateInput{
		Name: "Alice", Email: "alice@lab.test", Password: "long-enough", Role: domain.RoleForensics,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, admin, user.ID))
	// idempotent
	require.NoError(t, svc.Deactivate(ctx, admin, user.ID))

	_, err = svc.Authenticate(ctx, "alice@lab.test", "long-enough")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(svc.Deactivate(ctx, admin, "missing")))
}
