package service

import (
	"context"
	"errors"
	"net/http"

	"Chatline/internal/auth"
	"Chatline/internal/model"
	"Chatline/internal/repo"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult is what the request layer needs to answer a register or
// login call: the public user plus a signed token.
type AuthResult struct {
	User  model.PublicUser
	Email string
	Token string
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	users    repo.UserRepository
	verifier *auth.Verifier
	logger   *zap.Logger
}

func NewAuthService(users repo.UserRepository, verifier *auth.Verifier, logger *zap.Logger) AuthService {
	return &authService{users: users, verifier: verifier, logger: logger}
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	if username == "" || email == "" || len(password) < 8 {
		return nil, NewError(http.StatusBadRequest, "username, email and a password of at least 8 characters are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewError(http.StatusInternalServerError, "failed to hash password")
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, NewError(http.StatusConflict, "email is already registered")
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to create user")
	}

	token, err := s.verifier.Sign(user.UserID)
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to issue token")
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.UserID))
	return &AuthResult{User: user.Public(), Email: user.Email, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, NewError(http.StatusUnauthorized, "invalid email or password")
		}
		s.logger.Error("failed to look up user", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "login failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, NewError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := s.verifier.Sign(user.UserID)
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to issue token")
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.UserID))
	return &AuthResult{User: user.Public(), Email: user.Email, Token: token}, nil
}
