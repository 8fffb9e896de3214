package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"mentorchat/auth"
	"mentorchat/domain"
	apperrors "mentorchat/errors"
	"mentorchat/mocks"
	"mentorchat/services"
)

type fixture struct {
	engine        *gin.Engine
	authService   *mocks.MockIAuthService
	router        *mocks.MockIRouterService
	notifications *mocks.MockINotificationService
	tokens        *auth.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	f := &fixture{
		authService:   mocks.NewMockIAuthService(ctrl),
		router:        mocks.NewMockIRouterService(ctrl),
		notifications: mocks.NewMockINotificationService(ctrl),
		tokens:        auth.NewTokenManager("test-secret", time.Hour),
	}

	server := NewServer(slog.Default(), f.authService, f.router, f.notifications,
		nil, nil, f.tokens, nil)
	f.engine = server.Engine()
	return f
}

func (f *fixture) bearer(t *testing.T, username string) string {
	t.Helper()
	token, err := f.tokens.Generate("user-id", username, []string{"student"})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestSignup_ReturnsToken(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// Given a signup the service accepts
	f.authService.EXPECT().
		Signup(auth.SignupRequest{Email: "alice@example.com", Username: "alice", Password: "Sup3r-secret-pw"}).
		Return("signed-token", nil)

	// When the client signs up
	body, _ := json.Marshal(map[string]string{
		"email": "alice@example.com", "username": "alice", "password": "Sup3r-secret-pw",
	})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	f.engine.ServeHTTP(w, r)

	// Then the token comes back with 201
	req.Equal(http.StatusCreated, w.Code)
	req.Contains(w.Body.String(), "signed-token")
}

func TestSignup_DuplicateAccountIsConflict(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.authService.EXPECT().Signup(gomock.Any()).Return("", apperrors.ErrUserAlreadyExists)

	body, _ := json.Marshal(map[string]string{
		"email": "alice@example.com", "username": "alice", "password": "Sup3r-secret-pw",
	})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	f.engine.ServeHTTP(w, r)

	req.Equal(http.StatusConflict, w.Code)
}

func TestLogin_BadCredentialsAreUnauthorized(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.authService.EXPECT().Login(gomock.Any()).Return("", apperrors.ErrInvalidCredentials)

	body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "wrong-password-1"})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	f.engine.ServeHTTP(w, r)

	req.Equal(http.StatusUnauthorized, w.Code)
}

func TestSendMessage_RequiresBearerToken(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	body, _ := json.Marshal(domain.SendCommand{Sender: "alice", Receiver: "bob", Body: "hi"})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(body))
	f.engine.ServeHTTP(w, r)

	req.Equal(http.StatusUnauthorized, w.Code)
}

func TestSendMessage_RoutesThroughRouter(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	cmd := domain.SendCommand{Sender: "alice", Receiver: "bob", Body: "hello bob"}
	f.router.EXPECT().Send(gomock.Any(), cmd).
		Return(domain.Message{Sender: "alice", Receiver: "bob", Body: "hello bob"}, nil)

	body, _ := json.Marshal(cmd)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(body))
	r.Header.Set("Authorization", f.bearer(t, "alice"))
	f.engine.ServeHTTP(w, r)

	req.Equal(http.StatusCreated, w.Code)
}

func TestSendMessage_SpoofedSenderIsForbidden(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// alice's token, bob claimed as sender: the router is never reached
	body, _ := json.Marshal(domain.SendCommand{Sender: "bob", Receiver: "carol", Body: "hi"})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(body))
	r.Header.Set("Authorization", f.bearer(t, "alice"))
	f.engine.ServeHTTP(w, r)

	req.Equal(http.StatusForbidden, w.Code)
}

func TestGetConversation_MustInvolveCaller(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/messages?sender=bob&receiver=carol", nil)
	r.Header.Set("Authorization", f.bearer(t, "alice"))
	f.engine.ServeHTTP(w, r)

	req.Equal(http.StatusForbidden, w.Code)
}

func TestGetConversation_PersistenceFailureHidesCause(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.router.EXPECT().Conversation("alice", "bob").
		Return(nil, apperrors.NewPersistenceError("conversation scan", apperrors.ErrWorkerPanic))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/messages?sender=alice&receiver=bob", nil)
	r.Header.Set("Authorization", f.bearer(t, "alice"))
	f.engine.ServeHTTP(w, r)

	req.Equal(http.StatusInternalServerError, w.Code)
	req.Contains(w.Body.String(), "unable to load messages")
	req.NotContains(w.Body.String(), "worker")
}

func TestNotifications_ScopedToCaller(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// The feed is always the authenticated identity's own inbox.
	f.notifications.EXPECT().DistinctSenders("alice").
		Return([]services.Notification{{Username: "bob"}, {Username: "carol"}}, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	r.Header.Set("Authorization", f.bearer(t, "alice"))
	f.engine.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "bob")
	req.Contains(w.Body.String(), "carol")
}
