package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/quillpost/quillpost-go/internal/crypto"
	"github.com/quillpost/quillpost-go/internal/model"
	"github.com/quillpost/quillpost-go/internal/repository"
)

// UserStore is the credential store used by AuthService.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// TokenIssuer mints session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// AuthService handles authentication business logic.
type AuthService struct {
	users  UserStore
	tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// Register creates a new user account and returns an auth token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return model.AuthResponse{}, err
	}

	if err := s.ensureAvailable(ctx, 0, req.Username, req.Email); err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	now := time.Now().UTC()
	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique indexes still decide when two registrations race.
	if err := s.users.Create(ctx, user); err != nil {
		return model.AuthResponse{}, mapUserStoreErr("create user", err)
	}

	return s.authResponse(user)
}

// Login authenticates a user and returns an auth token. Unknown emails and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.equalizeTiming(req.Password)
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, storeErr("get user", err)
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("verify password for user %d: %w", user.ID, err)
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	if crypto.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, req.Password)
	}

	return s.authResponse(user)
}

// UpdateProfile applies username, email and optional password changes after
// re-verifying the current password. Nothing is written when any check fails.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (model.UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return model.UserResponse{}, err
	}
	if req.NewPassword != "" && req.NewPassword != req.ConfirmPassword {
		return model.UserResponse{}, newValidationError("confirmPassword", "Passwords don't match")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, storeErr("get user", err)
	}

	match, err := crypto.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return model.UserResponse{}, fmt.Errorf("verify password for user %d: %w", user.ID, err)
	}
	if !match {
		return model.UserResponse{}, ErrInvalidCurrentPassword
	}

	var username, email string
	if req.Username != user.Username {
		username = req.Username
	}
	if req.Email != user.Email {
		email = req.Email
	}
	if err := s.ensureAvailable(ctx, user.ID, username, email); err != nil {
		return model.UserResponse{}, err
	}

	updated := *user
	updated.Username = req.Username
	updated.Email = req.Email
	if req.NewPassword != "" {
		if updated.PasswordHash, err = crypto.HashPassword(req.NewPassword); err != nil {
			return model.UserResponse{}, err
		}
	}

	if err := s.users.Update(ctx, &updated); err != nil {
		return model.UserResponse{}, mapUserStoreErr("update user", err)
	}
	updated.UpdatedAt = time.Now().UTC()

	slog.InfoContext(ctx, "profile updated", "user_id", user.ID, "password_changed", req.NewPassword != "")
	return updated.Response(), nil
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, storeErr("get user", err)
	}

	return user.Response(), nil
}

// ensureAvailable checks that username and email are unused by anyone but
// selfID. Empty values are skipped.
func (s *AuthService) ensureAvailable(ctx context.Context, selfID int64, username, email string) error {
	if username != "" {
		existing, err := s.users.GetByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != selfID:
			return ErrUsernameTaken
		case err != nil && !errors.Is(err, repository.ErrUserNotFound):
			return storeErr("lookup username", err)
		}
	}

	if email != "" {
		existing, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != selfID:
			return ErrEmailTaken
		case err != nil && !errors.Is(err, repository.ErrUserNotFound):
			return storeErr("lookup email", err)
		}
	}

	return nil
}

func (s *AuthService) authResponse(user *model.User) (model.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return model.AuthResponse{
		Token: token,
		User:  user.Response(),
	}, nil
}

// upgradeHash replaces a legacy or weak hash after a successful login.
// Failures are logged and do not fail the login.
func (s *AuthService) upgradeHash(ctx context.Context, user *model.User, password string) {
	hash, err := crypto.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		slog.WarnContext(ctx, "password hash upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
}

// equalizeTiming runs one hash verification so that an unknown email costs
// about as much as a wrong password.
func (s *AuthService) equalizeTiming(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = crypto.HashPassword("quillpost-unknown-user")
	})
	if s.dummyHash != "" {
		_, _ = crypto.VerifyPassword(password, s.dummyHash)
	}
}

func mapUserStoreErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	default:
		return storeErr(op, err)
	}
}
