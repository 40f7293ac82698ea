package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"re-view.backend/internal/config"
	"re-view.backend/internal/infrastructure/database"
	"re-view.backend/internal/infrastructure/repositories"
	"re-view.backend/internal/interfaces/http/handlers"
	"re-view.backend/internal/interfaces/http/middleware"
	"re-view.backend/internal/usecases"
	"re-view.backend/pkg/bus"
	"re-view.backend/pkg/crypto"
	"re-view.backend/pkg/jwt"
	"re-view.backend/pkg/logger"
	"re-view.backend/pkg/metrics"
	"re-view.backend/pkg/redis"
	"re-view.backend/pkg/validation"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotenv      = godotenv.Load
	loadCfg         = config.Load
	initLog         = logger.Init
	initRedis       = redis.Init
	openDB          = database.Open
	closeDB         = database.Close
	connectBus      = func(url string) (*bus.Bus, error) { return bus.New(url) }
	newSessionStore = redis.NewSessionStore
	runServer       = func(ctx context.Context, r *gin.Engine, port string) error {
		srv := &http.Server{Addr: ":" + port, Handler: r, ReadHeaderTimeout: 10 * time.Second}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info(context.Background(), "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := loadCfg(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeDB(db)
	logger.Info(ctx, "Database connected", zap.String("driver", cfg.Database.Driver))

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	var events *bus.Bus
	if cfg.NATS.URL != "" {
		events, err = connectBus(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		defer events.Close()
		logger.Info(ctx, "Event bus connected", zap.String("stream", bus.StreamName))
	}

	reg := metrics.New()

	r := buildRouter(cfg, db, sessionStore, events, reg)

	logger.Info(ctx, "Registered routes", zap.Int("count", len(r.Routes())))
	for _, route := range r.Routes() {
		logger.Debug(ctx, "route", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	logger.Info(ctx, "Re-view backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("api", "/api/v1"),
		zap.String("health", "/health"),
	)
	if err := runServer(ctx, r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// buildRouter wires repositories, usecases and handlers into a gin engine
func buildRouter(cfg *config.Config, db *gorm.DB, sessionStore *redis.SessionStore, events *bus.Bus, reg *metrics.Registry) *gin.Engine {
	crypto.SetCost(cfg.Security.BcryptCost)
	validation.RegisterWithGin()
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	brandRepo := repositories.NewBrandRepository(db)
	productRepo := repositories.NewProductRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	uow := repositories.NewUnitOfWork(db)

	var locker usecases.Locker
	if client := redis.GetClient(); client != nil {
		locker = redis.NewLocker(client, cfg.Reviews.LockTTL)
	}

	actorResolver := usecases.NewActorResolver(userRepo, roleRepo, brandRepo)
	authUsecase := usecases.NewAuthUsecase(userRepo, roleRepo, uow, jwtService, sessionStore, cfg.Security.SessionTTL)
	userUsecase := usecases.NewUserUsecase(userRepo, roleRepo, brandRepo, reviewRepo)
	brandUsecase := usecases.NewBrandUsecase(brandRepo, roleRepo, uow, events)
	productUsecase := usecases.NewProductUsecase(productRepo, brandRepo, reviewRepo, uow, events, reg)
	reviewUsecase := usecases.NewReviewUsecase(reviewRepo, productRepo, brandRepo, userRepo, uow, locker, events, reg)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(reg))

	applyCORSMiddleware(r, cfg.Server.CORSAllowedOrigins)
	registerHealthRoute(r)
	registerMetricsRoute(r, reg)

	r.Use(middleware.ActorMiddleware(jwtService, sessionStore, actorResolver))
	registerAPIV1Routes(r, routeDeps{
		authHandler:    handlers.NewAuthHandler(authUsecase),
		userHandler:    handlers.NewUserHandler(userUsecase),
		brandHandler:   handlers.NewBrandHandler(brandUsecase),
		productHandler: handlers.NewProductHandler(productUsecase),
		reviewHandler:  handlers.NewReviewHandler(reviewUsecase),
		idempotency:    middleware.IdempotencyMiddleware(),
	})
	return r
}
