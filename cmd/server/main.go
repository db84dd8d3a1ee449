package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4" // Echo web framework
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/chenterphai/storefront-api/internal/config" // Internal config loader
	"github.com/chenterphai/storefront-api/internal/database"
	"github.com/chenterphai/storefront-api/internal/handler"
	"github.com/chenterphai/storefront-api/internal/logger"
	"github.com/chenterphai/storefront-api/internal/middleware"
	"github.com/chenterphai/storefront-api/internal/queue"
	"github.com/chenterphai/storefront-api/internal/repository"
	"github.com/chenterphai/storefront-api/internal/router" // Internal router setup
	"github.com/chenterphai/storefront-api/internal/service"
	"github.com/chenterphai/storefront-api/internal/utils"
)

func main() {
	cfg := config.MustLoad() // Load environment config
	logger.Init(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL, time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}

	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid rate limit config")
	}
	var rdb *redis.Client
	if rlCfg.Enabled {
		rdbCfg, err := config.LoadRedisConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis config")
		}
		if rdb = config.NewRedisClient(rdbCfg); rdb != nil {
			defer rdb.Close()
		} else {
			log.Warn().Str("addr", rdbCfg.Address()).Msg("redis unreachable; rate limiting per process")
		}
	}

	// Expiries were validated by config.Load.
	accessTTL, _ := utils.ParseDuration(cfg.AccessTokenExpiry)
	refreshTTL, _ := utils.ParseDuration(cfg.RefreshTokenExpiry)
	codec := utils.NewTokenCodec(cfg.JWTSecretKey, cfg.JWTRefreshKey, accessTTL, refreshTTL)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)
	orders := repository.NewOrderRepo(db)
	payments := repository.NewPaymentRepo(db)

	var publisher service.EventPublisher
	if cfg.OrderEventsEnabled {
		publisher = service.NewRabbitPublisher(cfg.RabbitMQURL)
	}
	if cfg.OrderConsumerEnabled {
		go func() {
			if err := queue.StartOrderConsumer(ctx, cfg.RabbitMQURL, cfg.OrderLogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("order consumer stopped")
			}
		}()
	}

	resolver := &handler.Resolver{
		Sessions: service.NewSessionService(users, tokens, codec, service.SessionConfig{
			BcryptCost:    cfg.BcryptCost,
			RefreshExpiry: cfg.RefreshTokenExpiry,
		}),
		Accounts: service.NewAccountService(users),
		Catalog:  service.NewCatalogService(categories, products),
		Orders:   service.NewOrderService(users, orders, payments, publisher),
		Authn:    middleware.NewAuthenticator(codec),
		Authz:    middleware.NewAuthorizer(users),
		Cookies:  handler.CookieConfig{Secure: cfg.IsProduction()},
	}
	schema, err := handler.NewSchema(resolver)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid graphql schema")
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	router.RegisterRoutes(e, router.Deps{
		GraphQL:      handler.NewGraphQLHandler(schema, 5*time.Second),
		DB:           db,
		RateLimit:    rlCfg,
		Redis:        rdb,
		AllowOrigins: cfg.CORSAllowOrigins,
	})

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
