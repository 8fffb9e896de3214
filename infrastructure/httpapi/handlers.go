package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"mentorchat/auth"
	"mentorchat/domain"
	apperrors "mentorchat/errors"
)

const (
	maxUploadBytes     = 8 << 20
	defaultSearchLimit = 20
)

func (s *Server) handleSignup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed signup payload"})
		return
	}

	token, err := s.authService.Signup(req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed login payload"})
		return
	}

	token, err := s.authService.Login(req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// handleSendMessage is the HTTP twin of the websocket send: same
// router, same persist-then-push path, for clients without a live
// connection of their own.
func (s *Server) handleSendMessage(c *gin.Context) {
	var cmd domain.SendCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed message payload"})
		return
	}
	if cmd.Sender != identityFrom(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "sender must match the authenticated identity"})
		return
	}

	stored, err := s.router.Send(c.Request.Context(), cmd)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

func (s *Server) handleGetConversation(c *gin.Context) {
	sender := c.Query("sender")
	receiver := c.Query("receiver")
	identity := identityFrom(c)
	if sender != identity && receiver != identity {
		c.JSON(http.StatusForbidden, gin.H{"error": "conversation must involve the authenticated identity"})
		return
	}

	messages, err := s.router.Conversation(sender, receiver)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (s *Server) handleSearch(c *gin.Context) {
	terms := c.Query("q")
	if terms == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query"})
		return
	}

	hits, err := s.index.Search(c.Request.Context(), identityFrom(c), terms, defaultSearchLimit)
	if err != nil {
		s.log.Error("search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits})
}

func (s *Server) handleNotifications(c *gin.Context) {
	notifications, err := s.notifications.DistinctSenders(identityFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (s *Server) handleUpload(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read upload"})
		return
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds size limit"})
		return
	}

	name, err := s.blobs.Save(data)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": name, "url": "/api/uploads/" + name})
}

func (s *Server) handleDownload(c *gin.Context) {
	path, found := s.blobs.Path(c.Param("name"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such upload"})
		return
	}
	c.File(path)
}

// writeError maps service errors onto HTTP statuses. Storage trouble
// is reported without its cause; validation problems carry the
// sentinel's message so clients can fix the request.
func (s *Server) writeError(c *gin.Context, err error) {
	var persistence *apperrors.PersistenceError
	switch {
	case errors.As(err, &persistence):
		s.log.Error("storage failure", "op", persistence.Op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load messages"})
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, apperrors.ErrUnsupportedUpload):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
