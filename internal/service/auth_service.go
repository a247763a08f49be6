package service

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"gatepass/internal/auth"
	"gatepass/internal/errors"
	"gatepass/internal/model"
	"gatepass/internal/repository"
)

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, username, password string) (accessToken string, user *model.User, err error)
	Verify(ctx context.Context, token string) (*auth.Claims, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, logger *slog.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		logger:     logger,
	}
}

// Login checks the password and issues a session token. The returned user
// carries the normalized role.
func (s *authService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("find user: %w", err)
		}
		auth.BurnPasswordCheck(password)
		s.logger.Info("login failed", "username", username, "reason", "unknown user")
		return "", nil, errors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Info("login failed", "username", username, "reason", "bad password")
		return "", nil, errors.ErrInvalidCredentials
	}

	role := auth.RoleOrDefault(user.Role)
	token, _, err := s.jwtService.IssueToken(user.ID, user.Username, role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	user.Role = string(role)
	return token, user, nil
}

// Verify returns the claims of a valid, unrevoked token. Every failure is
// reported as ErrUnauthorized.
func (s *authService) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, errors.ErrUnauthorized
	}

	revoked, err := s.tokenStore.IsTokenRevoked(ctx, claims.ID)
	if err != nil || revoked {
		return nil, errors.ErrUnauthorized
	}
	return claims, nil
}

// Logout revokes the session for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return errors.ErrUnauthorized
	}
	if err := s.tokenStore.RevokeToken(ctx, claims.ID, claims.TTL()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
