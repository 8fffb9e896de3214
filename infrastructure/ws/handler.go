package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mentorchat/auth"
	"mentorchat/contract"
	"mentorchat/domain"
	"mentorchat/domain/event"
	apperrors "mentorchat/errors"
	"mentorchat/services"
	"mentorchat/sink"
)

const (
	readDeadline = 90 * time.Second
	writeTimeout = 10 * time.Second
	readLimit    = int64(16 << 10)
)

// Handler upgrades HTTP requests into relay sessions.
type Handler struct {
	log        *slog.Logger
	registry   contract.IRegistry
	router     services.IRouterService
	tokens     *auth.TokenManager
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewHandler(log *slog.Logger, registry contract.IRegistry,
	router services.IRouterService, tokens *auth.TokenManager, bufferSize int) *Handler {
	return &Handler{
		log:        log,
		registry:   registry,
		router:     router,
		tokens:     tokens,
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// session is the state of one live connection. identity stays empty
// until a join envelope is accepted.
type session struct {
	handleID uuid.UUID
	identity string
	conn     *websocket.Conn
	sink     *sink.ConnectionSink
	control  chan Envelope
	done     chan struct{}
}

// Handle upgrades the request and runs the session read loop. The
// write pump runs in its own goroutine so live pushes from the router
// never interleave with control replies on the socket.
func (h *Handler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	s := &session{
		handleID: uuid.New(),
		conn:     conn,
		sink:     sink.NewConnectionSink(h.bufferSize),
		control:  make(chan Envelope, 8),
		done:     make(chan struct{}),
	}

	go h.writePump(s)
	h.readLoop(c.Request.Context(), s)
}

// readLoop processes inbound envelopes until the client goes away.
// Cleanup is synchronous: by the time the loop returns, the registry
// no longer resolves this connection.
func (h *Handler) readLoop(ctx context.Context, s *session) {
	defer func() {
		h.registry.Unregister(s.handleID)
		close(s.done)
		_ = s.conn.Close()
		if s.identity != "" {
			h.log.Info("participant disconnected", "identity", s.identity)
		}
	}()

	s.conn.SetReadLimit(readLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(readDeadline))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		var envelope Envelope
		if err := s.conn.ReadJSON(&envelope); err != nil {
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(readDeadline))

		switch envelope.Type {
		case TypeJoin:
			h.handleJoin(s, envelope)
		case TypeSend:
			h.handleSend(ctx, s, envelope)
		case TypeBackfill:
			h.handleBackfill(ctx, s, envelope)
		default:
			s.reply(errorEnvelope(CodeValidation, "unknown envelope type"))
		}
	}
}

func (h *Handler) handleJoin(s *session, envelope Envelope) {
	var payload JoinPayload
	if err := decode(envelope, &payload); err != nil {
		s.reply(errorEnvelope(CodeValidation, "join requires an identity"))
		return
	}
	// Identities end up inside store keys, so the charset is enforced
	// here as strictly as at signup.
	if !domain.ValidIdentity(payload.Identity) {
		s.reply(errorEnvelope(CodeValidation, "identity must be 3 to 32 alphanumeric characters"))
		return
	}

	if payload.Token != "" {
		claims, err := h.tokens.Validate(payload.Token)
		if err != nil || claims.Username != payload.Identity {
			s.reply(errorEnvelope(CodeUnauthorized, "token does not match identity"))
			return
		}
	}

	// Re-announcing on the same connection moves the identity: the
	// previous mapping of this handle is dropped first.
	if s.identity != "" {
		h.registry.Unregister(s.handleID)
	}
	s.identity = payload.Identity
	h.registry.Register(payload.Identity, s.handleID, s.sink)
	h.log.Info("participant joined", "identity", payload.Identity)

	s.reply(newEnvelope(TypeJoined, JoinedPayload{Identity: payload.Identity}))
}

func (h *Handler) handleSend(ctx context.Context, s *session, envelope Envelope) {
	if s.identity == "" {
		s.reply(errorEnvelope(CodeNotJoined, "announce an identity before sending"))
		return
	}

	var cmd domain.SendCommand
	if err := decode(envelope, &cmd); err != nil {
		s.reply(errorEnvelope(CodeValidation, "malformed send payload"))
		return
	}
	if cmd.Sender != s.identity {
		s.reply(errorEnvelope(CodeUnauthorized, "sender must match the joined identity"))
		return
	}

	if _, err := h.router.Send(ctx, cmd); err != nil {
		s.reply(errorEnvelope(sendErrorCode(err), err.Error()))
	}
}

func (h *Handler) handleBackfill(ctx context.Context, s *session, envelope Envelope) {
	if s.identity == "" {
		s.reply(errorEnvelope(CodeNotJoined, "announce an identity before backfilling"))
		return
	}

	var payload BackfillPayload
	if err := decode(envelope, &payload); err != nil {
		s.reply(errorEnvelope(CodeValidation, "malformed backfill payload"))
		return
	}

	delivered, err := h.router.Backfill(ctx, s.identity, payload.Since)
	if err != nil {
		s.reply(errorEnvelope(CodePersistence, "unable to load messages"))
		return
	}
	h.log.Debug("backfill completed", "identity", s.identity, "delivered", delivered)
}

// writePump is the single writer of the socket. It drains both live
// pushes (sink) and control replies until the read loop signals done.
func (h *Handler) writePump(s *session) {
	for {
		select {
		case <-s.done:
			return
		case evt := <-s.sink.Events:
			if stored, ok := evt.(event.MessageStored); ok {
				h.write(s, toReceiveEnvelope(stored))
			}
		case envelope := <-s.control:
			h.write(s, envelope)
		}
	}
}

func (h *Handler) write(s *session, envelope Envelope) {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(envelope); err != nil {
		h.log.Debug("write failed, connection probably gone",
			"identity", s.identity, "error", err)
	}
}

// reply queues a control envelope; dropped when the session is closing.
func (s *session) reply(envelope Envelope) {
	select {
	case s.control <- envelope:
	case <-s.done:
	}
}

func decode(envelope Envelope, target any) error {
	if len(envelope.Payload) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(envelope.Payload, target)
}

func sendErrorCode(err error) string {
	var persistence *apperrors.PersistenceError
	if errors.As(err, &persistence) {
		return CodePersistence
	}
	return CodeValidation
}
