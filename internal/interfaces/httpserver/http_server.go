package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cyrene-ai/cyrene-server/internal/config"
	"github.com/cyrene-ai/cyrene-server/internal/domain/user"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/auth"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/cache"
	"github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver/handlers/adminhandler"
	"github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver/handlers/authhandler"
	"github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver/handlers/chathandler"
	"github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver/handlers/conversationhandler"
	middleware "github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver/middlewares"
)

// Per-route quotas. The window counters are shared across replicas through
// the counter store.
var (
	quotaHealth        = middleware.MustQuota("120/minute")
	quotaRegister      = middleware.MustQuota("40/second")
	quotaLogin         = middleware.MustQuota("80/second")
	quotaCaptcha       = middleware.MustQuota("60/minute")
	quotaSendMessage   = middleware.MustQuota("15/minute")
	quotaCreateChat    = middleware.MustQuota("10/second")
	quotaDeleteConv    = middleware.MustQuota("10/second")
	quotaCharacterList = middleware.MustQuota("30/second")
	quotaOwnConvList   = middleware.MustQuota("15/second")
	quotaChatHistory   = middleware.MustQuota("100/second")
	quotaAdmin         = middleware.MustQuota("100/second")
	quotaAdminNewUser  = middleware.MustQuota("10/second")
)

// HTTPServer binds the route table and runs the gin engine.
type HTTPServer struct {
	engine *gin.Engine
	config *config.Config
	logger zerolog.Logger

	authHandler         *authhandler.AuthHandler
	conversationHandler *conversationhandler.ConversationHandler
	chatHandler         *chathandler.ChatHandler
	adminHandler        *adminhandler.AdminHandler

	issuer   *auth.TokenIssuer
	users    *user.Service
	counters cache.CounterStore
}

func NewHTTPServer(
	cfg *config.Config,
	logger zerolog.Logger,
	authHandler *authhandler.AuthHandler,
	conversationHandler *conversationhandler.ConversationHandler,
	chatHandler *chathandler.ChatHandler,
	adminHandler *adminhandler.AdminHandler,
	issuer *auth.TokenIssuer,
	users *user.Service,
	counters cache.CounterStore,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	server := &HTTPServer{
		engine:              gin.New(),
		config:              cfg,
		logger:              logger,
		authHandler:         authHandler,
		conversationHandler: conversationHandler,
		chatHandler:         chatHandler,
		adminHandler:        adminHandler,
		issuer:              issuer,
		users:               users,
		counters:            counters,
	}
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.LoggingMiddleware(logger))
	server.engine.Use(middleware.CORSMiddleware())
	server.bindRoutes()
	return server
}

func (s *HTTPServer) limit(q middleware.Quota) gin.HandlerFunc {
	return middleware.RateLimitMiddleware(s.counters, q, s.logger)
}

func (s *HTTPServer) bindRoutes() {
	s.engine.GET("/", s.limit(quotaHealth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	userAuth := s.engine.Group("/user_auth")
	userAuth.GET("/captcha", s.limit(quotaCaptcha), s.authHandler.Captcha)
	userAuth.POST("/register", s.limit(quotaRegister), s.authHandler.Register)
	userAuth.POST("/login", s.limit(quotaLogin), s.authHandler.Login)

	authed := s.engine.Group("/")
	authed.Use(middleware.AuthMiddleware(s.issuer, s.users))
	authed.POST("/create_chat", s.limit(quotaCreateChat), s.conversationHandler.CreateChat)
	authed.POST("/send_message", s.limit(quotaSendMessage), s.chatHandler.SendMessage)
	authed.POST("/get_character_name", s.limit(quotaCharacterList), s.conversationHandler.GetCharacterName)
	authed.POST("/get_current_user_conversation", s.limit(quotaOwnConvList), s.conversationHandler.GetCurrentUserConversation)
	authed.POST("/get_chat_history", s.limit(quotaChatHistory), s.conversationHandler.GetChatHistory)
	authed.POST("/delete_conversation", s.limit(quotaDeleteConv), s.conversationHandler.DeleteConversation)

	admin := s.engine.Group("/admin")
	admin.Use(middleware.AuthMiddleware(s.issuer, s.users), middleware.AdminRequired())
	admin.POST("/create_user", s.limit(quotaAdminNewUser), s.adminHandler.CreateUser)
	admin.POST("/soft_delete", s.limit(quotaAdmin), s.adminHandler.SoftDelete)
	admin.POST("/undo_soft_delete", s.limit(quotaAdmin), s.adminHandler.UndoSoftDelete)
	admin.POST("/true_delete", s.limit(quotaAdmin), s.adminHandler.TrueDelete)
	admin.POST("/ban", s.limit(quotaAdmin), s.adminHandler.Ban)
	admin.POST("/unban", s.limit(quotaAdmin), s.adminHandler.Unban)
	admin.POST("/list_user", s.limit(quotaAdmin), s.adminHandler.ListUser)
	admin.POST("/get_soft_deleted_user", s.limit(quotaAdmin), s.adminHandler.GetSoftDeletedUser)
	admin.POST("/create_character", s.limit(quotaAdmin), s.adminHandler.CreateCharacter)
	admin.POST("/update_character", s.limit(quotaAdmin), s.adminHandler.UpdateCharacter)
	admin.POST("/delete_character", s.limit(quotaDeleteConv), s.adminHandler.DeleteCharacter)
	admin.POST("/add_not_allowed_word", s.limit(quotaAdmin), s.adminHandler.AddNotAllowedWord)
	admin.POST("/delete_not_allowed_word", s.limit(quotaAdmin), s.adminHandler.DeleteNotAllowedWord)
	admin.POST("/get_not_allowed_word", s.limit(quotaAdmin), s.adminHandler.GetNotAllowedWord)
	admin.POST("/get_all_conversation", s.limit(quotaAdmin), s.adminHandler.GetAllConversation)
	admin.POST("/get_chat_history", s.limit(quotaAdmin), s.adminHandler.GetChatHistory)
	admin.POST("/delete_conversation", s.limit(quotaAdmin), s.adminHandler.DeleteConversation)
}

// Run serves until the context is cancelled, then drains with a grace period.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Engine exposes the underlying router for tests.
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}
