package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common/security"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/repository"

	"github.com/rs/zerolog"
)

// TokenIssuer is the part of security.TokenService the auth flow needs.
type TokenIssuer interface {
	IssueAccessToken(userID string) (string, error)
	IssueRefreshToken(userID string) (string, error)
	Verify(token string) (string, error)
}

var _ TokenIssuer = (*security.TokenService)(nil)

type AuthService struct {
	userRepo repository.UserRepository
	todoRepo repository.TodoRepository
	tokens   TokenIssuer
}

// NewAuthService builds the auth flow. todoRepo is used to remove a deleted
// user's todos.
func NewAuthService(userRepo repository.UserRepository, todoRepo repository.TodoRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{userRepo: userRepo, todoRepo: todoRepo, tokens: tokens}
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Register creates a user and returns an access token for it.
func (s *AuthService) Register(ctx context.Context, req CredentialsRequest) (*TokenResponse, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, fmt.Errorf("username and password are required: %w", common.ErrBadRequest)
	}

	_, err := s.userRepo.FindByUsername(ctx, req.Username)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateUsername
	case !errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("failed to look up username: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.userRepo.Create(ctx, &model.User{Username: req.Username, PasswordHash: hashedPassword})
	if err != nil {
		// The store's unique index reports races as common.ErrDuplicateUsername.
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read back user %s: %w", id, err)
	}

	token, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Msg("User registered")
	return &TokenResponse{Token: token}, nil
}

// Login checks credentials. Unknown users and wrong passwords both yield
// common.ErrInvalidCredentials after one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, req CredentialsRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			security.CheckDummyPassword(req.Password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &LoginResponse{Token: token, RefreshToken: refreshToken}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The user is
// not looked up again.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	if req.RefreshToken == "" {
		return nil, common.ErrMissingToken
	}
	userID, err := s.tokens.Verify(req.RefreshToken)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Rejected refresh token")
		return nil, common.ErrInvalidToken
	}
	token, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &TokenResponse{Token: token}, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *AuthService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("username is required: %w", common.ErrBadRequest)
	}
	return s.userRepo.UpdateUsername(ctx, id, req.Username)
}

// DeleteUser removes the user and then every todo they own, whatever the store.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	n, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	removed, err := s.todoRepo.DeleteByOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete todos of user %s: %w", id, err)
	}
	zerolog.Ctx(ctx).Info().Str("user_id", id).Int64("todos_removed", removed).Msg("User deleted")
	return nil
}
