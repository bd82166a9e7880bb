package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"coin-rewards-backend/internal/common/config"
	"coin-rewards-backend/internal/common/logger"
	"coin-rewards-backend/internal/common/middleware"
	authhttp "coin-rewards-backend/internal/features/auth/delivery/http"
	authservice "coin-rewards-backend/internal/features/auth/service"
	walletcache "coin-rewards-backend/internal/features/wallet/cache"
	wallethttp "coin-rewards-backend/internal/features/wallet/delivery/http"
	walletpg "coin-rewards-backend/internal/features/wallet/repository/postgres"
	walletservice "coin-rewards-backend/internal/features/wallet/service"
	"coin-rewards-backend/internal/platform/db"
	redisplatform "coin-rewards-backend/internal/platform/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load: %v\n", err)
		os.Exit(1)
	}

	logger.Init("coin-rewards-backend", cfg.Debug)

	// База данных и миграции
	if err := db.MigrateUp(cfg.Postgres.URL); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	pg, err := db.Open(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	logger.Info().Msg("Database connection established")

	// Redis для кэша профилей
	rdb, err := redisplatform.Open(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Сервисы
	verifier := authservice.NewIdentityVerifier(cfg.Telegram.BotToken,
		time.Duration(cfg.Auth.InitDataTTL)*time.Second)
	issuer := authservice.NewSessionIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	authSvc := authservice.NewAuthService(verifier, issuer)

	profileCache := walletcache.NewProfileCache(rdb, cfg.Redis.ProfileTTL)
	walletRepo := walletpg.NewPostgresRepository(pg)
	walletSvc := walletservice.NewWalletService(walletRepo, profileCache, cfg)

	logger.Info().Msg("Services initialized")

	// Настраиваем Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.Origins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	// Роуты
	v1 := router.Group("/api/v1")
	authhttp.NewAuthHandler(authSvc, walletSvc).RegisterRoutes(v1)
	wallethttp.NewWalletHandler(walletSvc).RegisterRoutes(v1, middleware.RequireAuth(authSvc))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "coin-rewards-backend",
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		checkCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := pg.PingContext(checkCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready", "error": "postgres unavailable"})
			return
		}
		if err := rdb.Ping(checkCtx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready", "error": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
