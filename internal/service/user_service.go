package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"gatepass/internal/auth"
	"gatepass/internal/cache"
	"gatepass/internal/errors"
	"gatepass/internal/model"
	"gatepass/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// DefaultAdminUsername is the account seeded into an empty users table.
const DefaultAdminUsername = "admin"

// UserInput carries the editable fields of a user. An empty Password on
// update keeps the current one.
type UserInput struct {
	Username string
	Password string
	FullName string
	Role     string
}

// UserService exposes user management operations.
type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	CreateUser(ctx context.Context, in UserInput) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, in UserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
	EnsureDefaultAdmin(ctx context.Context, password string) (bool, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser reads through the cache. The cached copy never holds the password
// hash.
func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, in UserInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if in.Password == "" {
		return nil, errors.ErrPasswordRequired
	}

	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return nil, errors.ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         string(auth.RoleOrDefault(in.Role)),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, in UserInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	user.Username = strings.TrimSpace(in.Username)
	user.FullName = in.FullName
	user.Role = string(auth.RoleOrDefault(in.Role))
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrUsernameTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return errors.ErrUserNotFound
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// EnsureDefaultAdmin seeds the admin account when no user exists yet and
// reports whether it did.
func (s *userService) EnsureDefaultAdmin(ctx context.Context, password string) (bool, error) {
	created := false
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.UserRepository) error {
		n, err := txRepo.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		if err := txRepo.Create(ctx, &model.User{
			Username:     DefaultAdminUsername,
			PasswordHash: hash,
			FullName:     "Administrator",
			Role:         string(auth.RoleAdmin),
		}); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed default admin: %w", err)
	}
	return created, nil
}
