package main

import (
	"context"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/cyrene-ai/cyrene-server/internal/config"
	"github.com/cyrene-ai/cyrene-server/internal/domain/character"
	"github.com/cyrene-ai/cyrene-server/internal/domain/conversation"
	"github.com/cyrene-ai/cyrene-server/internal/domain/moderation"
	"github.com/cyrene-ai/cyrene-server/internal/domain/user"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/auth"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/cache"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/captcha"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database"
	_ "github.com/cyrene-ai/cyrene-server/internal/infrastructure/database/dbschema"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database/repository/bannedwordrepo"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database/repository/characterrepo"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database/repository/conversationrepo"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database/repository/userrepo"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/inference"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/logger"
	"github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver"
	"github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver/handlers/adminhandler"
	"github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver/handlers/authhandler"
	"github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver/handlers/chathandler"
	"github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver/handlers/conversationhandler"
)

func main() {
	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if appLog, err := logger.New(cfg.LogLevel, cfg.LogFormat); err == nil {
		log = appLog
	}

	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.AutoMigrate {
		if err := database.Migration(db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database schema")
		}
	}

	redis, err := cache.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redis.Close()

	// Repositories
	userRepo := userrepo.NewUserGormRepository(db)
	characterRepo := characterrepo.NewCharacterGormRepository(db)
	conversationRepo := conversationrepo.NewConversationGormRepository(db)
	messageRepo := conversationrepo.NewMessageGormRepository(db)
	bannedWordRepo := bannedwordrepo.NewBannedWordGormRepository(db)

	// Domain services
	users := user.NewService(userRepo, auth.NewBcryptHasher())
	characters := character.NewService(characterRepo)
	history := conversation.NewHistoryService(conversationRepo, messageRepo)
	filter := moderation.NewFilter(bannedWordRepo)
	provider := inference.NewProvider(cfg.ModelBaseURL, cfg.ModelAPIKey)
	turns := conversation.NewTurnService(history, characters, filter, provider, conversation.TurnOptions{
		DefaultModel: cfg.DefaultModel,
		Temperature:  cfg.ModelTemperature,
		MaxTokens:    cfg.ModelMaxTokens,
	}, log)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenLifetime)
	captchas := captcha.NewManager(redis, cfg.CaptchaTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AdminName != "" && cfg.AdminPassword != "" {
		if err := users.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure admin account")
		}
	}

	server := httpserver.NewHTTPServer(
		cfg,
		log,
		authhandler.NewAuthHandler(users, issuer, captchas, log),
		conversationhandler.NewConversationHandler(history, characters, log),
		chathandler.NewChatHandler(turns, log),
		adminhandler.NewAdminHandler(users, characters, history, filter, log),
		issuer,
		users,
		redis,
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return server.Run(egCtx)
	})

	log.Info().Int("port", cfg.HTTPPort).Msg("server started")
	if err := eg.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped")
}
