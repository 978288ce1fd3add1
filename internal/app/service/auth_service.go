package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/common"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/common/security"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/model"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *security.TokenManager
	denylist repository.SessionDenylist
}

func NewAuthService(userRepo repository.UserRepository, tokens *security.TokenManager, denylist repository.SessionDenylist) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, denylist: denylist}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func issueCredential(tokens *security.TokenManager, user *model.User) (*AuthResponse, error) {
	token, _, err := tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = "" // Clear password before returning
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, common.Errorf("name, email and password are required: %w", common.ErrBadRequest)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser, // Default role
		AvatarURL:      model.DefaultAvatarURL,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict on a duplicate email
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return issueCredential(s.tokens, user)
}

// Login verifies credentials and mints a session credential. Unknown email
// and wrong password both surface the same ErrInvalidCredentials so callers
// cannot probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.Errorf("email and password are required: %w", common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	return issueCredential(s.tokens, user)
}

// Logout denylists the presented credential's jti for the remainder of its
// lifetime. The token itself stays valid cryptographically; the middleware
// consults the denylist on every authenticated request.
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return common.ErrBadRequest
	}
	if err := s.denylist.Revoke(ctx, jti, time.Until(expiresAt)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
