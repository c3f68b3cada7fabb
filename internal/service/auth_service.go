package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stockfolio/backend/internal/apperrors"
	"github.com/stockfolio/backend/internal/auth"
	"github.com/stockfolio/backend/internal/model"
	"github.com/stockfolio/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles account registration and login. It is a thin adapter in
// front of the reconciliation engine: its only job is to turn credentials
// into a stable owner identity.
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *auth.TokenManager
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService with the provided dependencies.
func NewAuthService(userRepo *repository.UserRepository, tokens *auth.TokenManager, log zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates a new account with a bcrypt-hashed password.
// Returns ErrDuplicateEmail if the email is already registered.
func (s *AuthService) Register(ctx context.Context, email, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}

	user := model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Insert(ctx, &user); err != nil {
		return model.User{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("registered new account")
	return user, nil
}

// Login verifies credentials and issues a session token.
// Both an unknown email and a wrong password surface as ErrInvalidCredentials
// so that login responses do not reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return model.User{}, "", apperrors.ErrInvalidCredentials
		}
		return model.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.User{}, "", err
	}

	return user, token, nil
}
