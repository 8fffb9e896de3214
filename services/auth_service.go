//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"log/slog"

	"mentorchat/auth"
	apperrors "mentorchat/errors"
	"mentorchat/repositories"
)

type IAuthService interface {
	Signup(req auth.SignupRequest) (string, error)
	Login(req auth.LoginRequest) (string, error)
}

// AuthService is the account edge of the relay: it turns credentials
// into the identity the registry and router route by.
type AuthService struct {
	log        *slog.Logger
	repository repositories.IUserRepository
	tokens     *auth.TokenManager
}

func NewAuthService(log *slog.Logger, repository repositories.IUserRepository,
	tokens *auth.TokenManager) *AuthService {
	return &AuthService{log: log, repository: repository, tokens: tokens}
}

// Signup creates the account and returns a signed token for it.
func (s *AuthService) Signup(req auth.SignupRequest) (string, error) {
	if err := auth.ValidateSignup(req); err != nil {
		return "", err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", err
	}

	user, err := s.repository.CreateUser(req.Email, req.Username, hash)
	if err != nil {
		return "", err
	}

	s.log.Info("account created", "username", user.Username)
	return s.tokens.Generate(user.ID, user.Username, user.Roles)
}

// Login checks the credentials and returns a fresh token. A missing
// account and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(req auth.LoginRequest) (string, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return "", err
	}

	user, err := s.repository.GetUserByEmail(req.Email)
	if err != nil {
		return "", err
	}

	ok, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.ErrInvalidCredentials
	}

	return s.tokens.Generate(user.ID, user.Username, user.Roles)
}
