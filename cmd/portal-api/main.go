package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"findit/campus-portal/lostfound-backend/internal/audit"
	"findit/campus-portal/lostfound-backend/internal/auth"
	"findit/campus-portal/lostfound-backend/internal/claims"
	"findit/campus-portal/lostfound-backend/internal/config"
	"findit/campus-portal/lostfound-backend/internal/fraud"
	"findit/campus-portal/lostfound-backend/internal/items"
	"findit/campus-portal/lostfound-backend/internal/users"
	"findit/campus-portal/lostfound-backend/internal/verification"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	if os.Getenv("APP_ENV") == "development" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to access database pool", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.AutoMigrate(
		&users.User{},
		&items.Item{},
		&items.ItemImage{},
		&claims.Claim{},
		&claims.Proof{},
		&audit.AuditLog{},
	); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to redis for the session store
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Invalid redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Repositories
	usersRepo := users.NewRepository(db)
	itemsRepo := items.NewRepository(db)
	claimsRepo := claims.NewRepository(db)
	auditRepo := audit.NewRepository(db)

	// Audit trail
	auditService := audit.NewService(auditRepo, logger)

	// Verification scorers, wrapped so external failures degrade to a
	// zero score instead of blocking submissions.
	imageScorer := verification.NewFailsafeImageScorer(
		verification.NewImageServiceClient(cfg.Verification.ImageServiceURL),
		cfg.Verification.ScoreTimeout, logger)
	textScorer := verification.NewFailsafeTextScorer(
		verification.NewGeminiClient(cfg.Verification.GeminiAPIKey),
		cfg.Verification.ScoreTimeout, logger)
	scorer := claims.NewScorer(imageScorer, textScorer, cfg.Uploads.Dir, logger)

	// Auth
	sessions := auth.NewRedisSessionStore(redisClient)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
	authService := auth.NewService(usersRepo, sessions, tokens, cfg.Auth.RefreshTTL, logger)

	// Fraud detection
	detector := fraud.NewDetector(claimsRepo, usersRepo, sessions, auditService, logger)

	// Claim lifecycle
	lifecycle := claims.NewLifecycle(claimsRepo, itemsRepo, scorer, detector, auditService, logger)

	// Handlers
	authHandler := auth.NewHandler(authService, usersRepo, logger)
	itemsHandler := items.NewHandler(items.NewService(itemsRepo, logger), logger)
	claimsHandler := claims.NewHandler(lifecycle, logger)
	auditHandler := audit.NewHandler(auditService, logger)

	// Setup Router
	if os.Getenv("APP_ENV") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// Register Routes
	api := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(api)

		authenticated := api.Group("")
		authenticated.Use(auth.Authenticate(tokens), auth.RejectBanned(usersRepo))
		{
			authHandler.RegisterProtectedRoutes(authenticated)
			itemsHandler.RegisterRoutes(authenticated)
			claimsHandler.RegisterRoutes(authenticated)
		}

		admin := api.Group("/admin")
		admin.Use(auth.Authenticate(tokens), auth.RequireAdmin())
		{
			claimsHandler.RegisterAdminRoutes(admin)
			auditHandler.RegisterRoutes(admin)
		}
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Background jobs
	checker := claims.NewConsistencyChecker(claimsRepo, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := checker.Run(ctx); err != nil {
			logger.Error("Consistency sweep failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("Failed to schedule consistency sweep", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
