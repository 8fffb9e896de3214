package services_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"mentorchat/auth"
	apperrors "mentorchat/errors"
	"mentorchat/mocks"
	"mentorchat/repositories"
	"mentorchat/services"
)

func newAuthUnderTest(t *testing.T, repository *mocks.MockIUserRepository) (*services.AuthService, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("test_secret_for_unit_tests_only", time.Hour)
	return services.NewAuthService(slog.Default(), repository, tokens), tokens
}

func TestAuthService_Signup_IssuesTokenForNewAccount(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIUserRepository(ctrl)
	service, tokens := newAuthUnderTest(t, repository)

	repository.EXPECT().
		CreateUser("alice@example.com", "alice", gomock.Any()).
		DoAndReturn(func(email, username, hash string) (repositories.User, error) {
			// The service must never store the plain password.
			req.NotEqual("Very$ecretPass123", hash)
			ok, err := auth.ComparePassword("Very$ecretPass123", hash)
			req.NoError(err)
			req.True(ok)
			return repositories.User{ID: "id-1", Email: email, Username: username,
				Roles: []string{"user"}}, nil
		})

	token, err := service.Signup(auth.SignupRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Very$ecretPass123",
	})

	req.NoError(err)
	claims, err := tokens.Validate(token)
	req.NoError(err)
	req.Equal("alice", claims.Username)
}

func TestAuthService_Signup_RejectsWeakPassword(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIUserRepository(ctrl)
	service, _ := newAuthUnderTest(t, repository)

	_, err := service.Signup(auth.SignupRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "alllowercasepassword",
	})

	req.ErrorIs(err, apperrors.ErrInvalidPassword)
}

func TestAuthService_Login_HappyPath(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIUserRepository(ctrl)
	service, tokens := newAuthUnderTest(t, repository)

	hash, err := auth.HashPassword("Very$ecretPass123")
	req.NoError(err)
	repository.EXPECT().
		GetUserByEmail("alice@example.com").
		Return(repositories.User{ID: "id-1", Username: "alice", PasswordHash: hash}, nil)

	token, err := service.Login(auth.LoginRequest{
		Email:    "alice@example.com",
		Password: "Very$ecretPass123",
	})

	req.NoError(err)
	claims, err := tokens.Validate(token)
	req.NoError(err)
	req.Equal("alice", claims.Username)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIUserRepository(ctrl)
	service, _ := newAuthUnderTest(t, repository)

	hash, err := auth.HashPassword("Very$ecretPass123")
	req.NoError(err)
	repository.EXPECT().
		GetUserByEmail("alice@example.com").
		Return(repositories.User{ID: "id-1", Username: "alice", PasswordHash: hash}, nil)

	_, err = service.Login(auth.LoginRequest{
		Email:    "alice@example.com",
		Password: "WrongPassword1!",
	})

	req.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownAccount(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIUserRepository(ctrl)
	service, _ := newAuthUnderTest(t, repository)

	repository.EXPECT().
		GetUserByEmail("ghost@example.com").
		Return(repositories.User{}, apperrors.ErrInvalidCredentials)

	_, err := service.Login(auth.LoginRequest{
		Email:    "ghost@example.com",
		Password: "Whatever$ecret123",
	})

	req.ErrorIs(err, apperrors.ErrInvalidCredentials)
}
