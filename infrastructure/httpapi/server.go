// Package httpapi assembles the REST surface of the platform: account
// endpoints, message history, notifications, search, and uploads. Live
// messaging itself happens over the websocket route.
package httpapi

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"mentorchat/auth"
	"mentorchat/infrastructure/ws"
	"mentorchat/search"
	"mentorchat/services"
	"mentorchat/storage"
)

type Server struct {
	log           *slog.Logger
	authService   services.IAuthService
	router        services.IRouterService
	notifications services.INotificationService
	index         *search.Index
	blobs         storage.IBlobStore
	tokens        *auth.TokenManager
	relay         *ws.Handler
}

func NewServer(log *slog.Logger, authService services.IAuthService,
	router services.IRouterService, notifications services.INotificationService,
	index *search.Index, blobs storage.IBlobStore,
	tokens *auth.TokenManager, relay *ws.Handler) *Server {
	return &Server{
		log:           log,
		authService:   authService,
		router:        router,
		notifications: notifications,
		index:         index,
		blobs:         blobs,
		tokens:        tokens,
		relay:         relay,
	}
}

// Engine builds the gin router. Kept separate from listening so tests
// can drive it with httptest.
func (s *Server) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/ws", s.relay.Handle)

	api := engine.Group("/api")
	{
		api.POST("/auth/signup", s.handleSignup)
		api.POST("/auth/login", s.handleLogin)

		authed := api.Group("", AuthRequired(s.tokens))
		{
			authed.POST("/messages", s.handleSendMessage)
			authed.GET("/messages", s.handleGetConversation)
			authed.GET("/messages/search", s.handleSearch)
			authed.GET("/notifications", s.handleNotifications)
			authed.POST("/uploads", s.handleUpload)
			authed.GET("/uploads/:name", s.handleDownload)
		}
	}
	return engine
}
