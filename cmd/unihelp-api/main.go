package main

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/unihelp-api/api/swagger"
	"github.com/noah-isme/unihelp-api/internal/handler"
	internalmiddleware "github.com/noah-isme/unihelp-api/internal/middleware"
	"github.com/noah-isme/unihelp-api/internal/repository"
	"github.com/noah-isme/unihelp-api/internal/service"
	"github.com/noah-isme/unihelp-api/pkg/cache"
	"github.com/noah-isme/unihelp-api/pkg/config"
	"github.com/noah-isme/unihelp-api/pkg/database"
	"github.com/noah-isme/unihelp-api/pkg/flatfile"
	"github.com/noah-isme/unihelp-api/pkg/llm"
	"github.com/noah-isme/unihelp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/unihelp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/unihelp-api/pkg/middleware/requestid"
)

// @title UniHelp API
// @version 1.0.0
// @description Academic assistant for registered students
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	checks := map[string]handler.ReadinessCheck{}

	stores, db, err := openStores(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open record store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
		checks["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
	}

	sessions, redisClient, err := openSessionStore(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open session store", zap.String("store", cfg.Session.Store), zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
		checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx, redisClient) }
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	knowledge := repository.NewKnowledgeFileRepository(cfg.Storage.KnowledgeBasePath(), logr)
	model := llm.NewOpenAIClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
	if cfg.LLM.APIKey == "" {
		logr.Warn("LLM_API_KEY is empty; chat answers will report an invalid key")
	}

	credentialSvc := service.NewCredentialService(stores.Users, stores.Students, service.NewPasswordHasher(cfg.Auth.PasswordScheme), validate, logr)
	promptSvc := service.NewPromptService(knowledge, stores.Users, stores.Students)
	chatSvc := service.NewChatService(sessions, stores.Conversations, promptSvc, model, metricsSvc, logr, service.ChatConfig{
		MaxHistory: cfg.Chat.MaxHistory,
		KeepRecent: cfg.Chat.KeepRecent,
	})
	sessionSvc := service.NewSessionService(service.SessionTokenConfig{Secret: cfg.Session.Secret, TTL: cfg.Session.TTL}, sessions)
	conversationSvc := service.NewConversationService(stores.Conversations, cfg.Chat.ConversationListLimit, logr)
	exportSvc := service.NewExportService(conversationSvc, logr, nil, nil)
	studentSvc := service.NewStudentService(stores.Students)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics"))

	router := handler.Router{
		Auth:          handler.NewAuthHandler(credentialSvc, sessionSvc, chatSvc, metricsSvc, handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure}),
		Chat:          handler.NewChatHandler(chatSvc),
		Conversations: handler.NewConversationHandler(conversationSvc, exportSvc),
		Students:      handler.NewStudentHandler(studentSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc, checks),
	}
	router.Register(r, cfg.APIPrefix,
		internalmiddleware.Session(sessionSvc, cfg.Session.CookieName),
		internalmiddleware.OptionalSession(sessionSvc, cfg.Session.CookieName),
	)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	logr.Info("unihelp ready",
		zap.String("model", cfg.LLM.Model),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("session_store", cfg.Session.Store),
		zap.String("knowledge_base", cfg.Storage.KnowledgeBasePath()),
		zap.Int("knowledge_base_chars", utf8.RuneCountInString(knowledge.Load(ctx))),
		zap.Int("registered_users", credentialSvc.UserCount(ctx)),
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config, logr *zap.Logger) (repository.Stores, *sqlx.DB, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return repository.Stores{}, nil, err
		}
		if err := repository.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return repository.Stores{}, nil, err
		}
		return repository.NewPostgresStores(db, logr), db, nil
	case config.StorageFlatFile, "":
		store, err := flatfile.NewStore(cfg.Storage.DataDir, logr)
		if err != nil {
			return repository.Stores{}, nil, err
		}
		logr.Info("flat-file storage",
			zap.String("users", store.Path(cfg.Storage.UsersFile)),
			zap.String("students", store.Path(cfg.Storage.StudentsFile)),
			zap.String("conversations", store.Path(cfg.Storage.ConversationsFile)),
		)
		return repository.NewFileStores(store, cfg.Storage, logr), nil, nil
	default:
		return repository.Stores{}, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openSessionStore(ctx context.Context, cfg *config.Config) (repository.SessionStore, *redis.Client, error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisSessionRepository(client, cfg.Session.KeyPrefix, cfg.Session.TTL), client, nil
	case config.SessionStoreMemory, "":
		return repository.NewMemorySessionRepository(cfg.Session.TTL), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}
