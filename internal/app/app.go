package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/applyr/applyr/internal/config"
	"github.com/applyr/applyr/internal/http/handler"
	"github.com/applyr/applyr/internal/http/middleware"
	"github.com/applyr/applyr/internal/http/router"
	"github.com/applyr/applyr/internal/observability"
	"github.com/applyr/applyr/internal/repository"
	"github.com/applyr/applyr/internal/security"
	"github.com/applyr/applyr/internal/service"
)

// App owns every long-lived dependency. Construction is explicit: each
// component is built once here and passed down, nothing reads config or
// globals on its own.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *gorm.DB
	Redis         redis.UniversalClient
	Auth          *service.AuthService
	Sweeper       *service.Sweeper
	Server        *http.Server
	Observability *observability.Runtime
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	bootstrapLogger := observability.NewLogger(cfg, nil)
	runtime, err := observability.InitRuntime(ctx, cfg, bootstrapLogger)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}
	logger := observability.NewLogger(cfg, runtime.LoggerProvider)
	slog.SetDefault(logger)

	db, err := repository.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	var redisClient redis.UniversalClient
	var handleCache service.HandleLookupCache
	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		handleCache = service.NewRedisHandleLookupCache(redisClient, "", cfg.HandleLookupMissTTL)
		limiter = middleware.NewRedisLimiter(redisClient, "")
		logger.Info("redis enabled", "addr", cfg.RedisAddr)
	} else {
		handleCache = service.NewInMemoryHandleLookupCache(cfg.HandleLookupMissTTL)
		limiter = middleware.NewLocalLimiter()
	}

	codec := security.NewTokenCodec(cfg.JWTIssuer, cfg.JWTSecret)
	users := repository.NewUserRepository(db)
	tokens := repository.NewRefreshTokenRepository(db)
	vacancies := repository.NewVacancyRepository(db)
	stages := repository.NewStageRepository(db)
	favorites := repository.NewFavoriteRepository(db)

	authService := service.NewAuthService(users, tokens, codec, handleCache, cfg.TokenPepper, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	vacancyService := service.NewVacancyService(vacancies)
	stageService := service.NewStageService(stages, vacancyService)
	favoriteService := service.NewFavoriteService(favorites, vacancyService)

	h := router.New(router.Dependencies{
		ReadinessCheck: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		AuthHandler:      handler.NewAuthHandler(authService, cfg),
		VacancyHandler:   handler.NewVacancyHandler(vacancyService),
		StageHandler:     handler.NewStageHandler(stageService),
		FavoriteHandler:  handler.NewFavoriteHandler(favoriteService),
		BotHandler:       handler.NewBotHandler(authService, vacancyService),
		TokenCodec:       codec,
		InternalAPIKey:   cfg.InternalAPIKey,
		APIRateLimitRPM:  cfg.APIRateLimitRPM,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		Limiter:          limiter,
		FailureMode:      middleware.FailureMode(cfg.RateLimitFailureMode),
		EnableOTelHTTP:   cfg.OTELEnabled,
	})

	return &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Redis:  redisClient,
		Auth:   authService,
		Sweeper: service.NewSweeper(authService, cfg.SweepInterval),
		Server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           h,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		Observability: runtime,
	}, nil
}

// Run serves until SIGINT/SIGTERM, with the sweeper alongside, then drains.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("http server listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := a.Sweeper.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if oerr := a.Observability.Shutdown(shutdownCtx); oerr != nil {
		a.Logger.Warn("observability shutdown failed", "error", oerr)
	}
	if a.Redis != nil {
		if cerr := a.Redis.Close(); cerr != nil {
			a.Logger.Warn("redis close failed", "error", cerr)
		}
	}
	return err
}
