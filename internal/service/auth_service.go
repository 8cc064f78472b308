package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/forensic-case-service/internal/auth"
	"github.com/spec-kit/forensic-case-service/internal/domain"
	"github.com/spec-kit/forensic-case-service/internal/repository"
	apperrors "github.com/spec-kit/forensic-case-service/pkg/util"
)

// AuthService handles credential checks and admin-side user
// provisioning.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	BcryptCost int
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
	}
}

// AuthResult is a successful login: the user and their bearer token.
type AuthResult struct {
	User      domain.AppUser
	Token     string
	ExpiresAt time.Time
}

// UserCreateInput describes a user to provision.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Authenticate verifies credentials and issues a token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, mapStoreError(err, "user")
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("account is deactivated")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: *user, Token: token, ExpiresAt: expiresAt}, nil
}

// Register provisions a new user account. Admin only.
func (s *AuthService) Register(ctx context.Context, principal *domain.AppUser, input UserCreateInput) (*domain.AppUser, error) {
	if principal == nil || principal.Role != domain.RoleAdmin {
		return nil, apperrors.NewUnauthorized("only admins may provision users")
	}

	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "this field is required"
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		details["email"] = "a valid email is required"
	}
	if len(input.Password) < 8 {
		details["password"] = "must be at least 8 characters"
	}
	if !domain.ValidRole(input.Role) {
		details["role"] = "unknown role"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("user validation failed", details)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.AppUser{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered",
				map[string]any{"email": email})
		}
		return nil, mapStoreError(err, "user")
	}
	return user, nil
}

// Deactivate disables a user account. The account stops authenticating
// but its historical case assignments stay bound to its identifier.
func (s *AuthService) Deactivate(ctx context.Context, principal *domain.AppUser, userID string) error {
	if principal == nil || principal.Role != domain.RoleAdmin {
		return apperrors.NewUnauthorized("only admins may deactivate users")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return mapStoreError(err, "user")
	}
	if !user.Active {
		return nil
	}
	user.Active = false
	if err := s.users.Update(ctx, user); err != nil {
		return mapStoreError(err, "user")
	}
	return nil
}
