package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lokalo/lokalo-backend/internal/config"
	"github.com/lokalo/lokalo-backend/internal/handler"
	"github.com/lokalo/lokalo-backend/internal/insights"
	"github.com/lokalo/lokalo-backend/internal/middleware"
	"github.com/lokalo/lokalo-backend/internal/migration"
	"github.com/lokalo/lokalo-backend/internal/repository"
	"github.com/lokalo/lokalo-backend/internal/routes"
	"github.com/lokalo/lokalo-backend/internal/service"
	"github.com/lokalo/lokalo-backend/internal/ws"
	pkgcache "github.com/lokalo/lokalo-backend/pkg/cache"
	"github.com/lokalo/lokalo-backend/pkg/jwt"
	pkglogger "github.com/lokalo/lokalo-backend/pkg/logger"
	pkgredis "github.com/lokalo/lokalo-backend/pkg/redis"
	pkgstorage "github.com/lokalo/lokalo-backend/pkg/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Lokalo Backend API
// @version         1.0
// @description     Local classifieds marketplace - listings, messaging and realtime notifications
//
// @license.name    MIT
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// 12MB: the 10MB image limit plus multipart framing overhead.
const maxRequestBody = 12 << 20

func configPath() string {
	return fmt.Sprintf("configs/config.%s.yaml", config.Env())
}

func main() {
	config.LoadDotEnv()
	env := config.Env()
	pkglogger.InitStructured(env)
	log := pkglogger.GetLogger()

	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := migration.Run(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Name).Msg("connected to mysql")

	redisClient, err := pkgredis.NewClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, continuing without cache and rate limits")
		redisClient = nil
	} else {
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("connected to redis")
	}
	cacheService := pkgcache.NewService(redisClient)

	var insightsClient *insights.Client
	if cfg.ClickHouse.Host != "" {
		insightsClient, err = insights.NewClient(insights.ClientConfig{
			Host:     cfg.ClickHouse.Host,
			Port:     cfg.ClickHouse.Port,
			Database: cfg.ClickHouse.Database,
			User:     cfg.ClickHouse.User,
			Password: cfg.ClickHouse.Password,
		})
		if err != nil {
			log.Warn().Err(err).Msg("clickhouse unavailable, view analytics disabled")
			insightsClient = nil
		} else if err := insightsClient.EnsureSchema(context.Background()); err != nil {
			log.Warn().Err(err).Msg("clickhouse schema setup failed, view analytics disabled")
			insightsClient.Close() //nolint:errcheck // already degrading
			insightsClient = nil
		} else {
			log.Info().Str("host", cfg.ClickHouse.Host).Msg("connected to clickhouse")
		}
	}
	insightsService := insights.NewService(insightsClient, *log)

	var s3Client *pkgstorage.S3Client
	if cfg.Storage.Bucket != "" {
		s3Client, err = pkgstorage.NewS3Client(context.Background(), pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKey,
			SecretAccessKey: cfg.Storage.SecretKey,
			Bucket:          cfg.Storage.Bucket,
			PublicURL:       cfg.Storage.PublicURL,
			ForcePathStyle:  cfg.Storage.Endpoint != "",
		})
		if err != nil {
			log.Warn().Err(err).Msg("object storage unavailable, image upload disabled")
			s3Client = nil
		} else {
			log.Info().Str("bucket", cfg.Storage.Bucket).Msg("connected to object storage")
		}
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.JWT.RefreshIn)

	hub := ws.NewHub(redisClient, *log)
	go hub.Run()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	notificationSvc := service.NewNotificationService(notificationRepo, hub)
	authSvc := service.NewAuthService(userRepo, jwtManager, cacheService)
	listingSvc := service.NewListingService(listingRepo, favoriteRepo, notificationSvc, cacheService, insightsService, s3Client)
	favoriteSvc := service.NewFavoriteService(favoriteRepo, listingRepo, notificationSvc)
	messageSvc := service.NewMessageService(messageRepo, conversationRepo, userRepo, listingRepo)
	mediaSvc := service.NewMediaService(s3Client, listingRepo, cacheService)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	listingHandler := handler.NewListingHandler(listingSvc)
	favoriteHandler := handler.NewFavoriteHandler(favoriteSvc)
	messageHandler := handler.NewMessageHandler(messageSvc, notificationSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	mediaHandler := handler.NewMediaHandler(mediaSvc)
	wsHandler := handler.NewWSHandler(hub, jwtManager, strings.Join(cfg.Server.AllowedOrigins, ","))

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(corsConfig(cfg)))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.InputSanitizer(maxRequestBody))
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())
	if redisClient != nil && env == "production" {
		router.Use(middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "lokalo-backend",
			"time":    time.Now().Unix(),
		})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router,
		authHandler, listingHandler, favoriteHandler, messageHandler,
		notificationHandler, mediaHandler, wsHandler,
		jwtManager, redisClient, cfg,
	)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle unavailable")
	}
	go reportDBStats(sqlDB)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("env", env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	hub.Stop()
	insightsService.Close()
	if redisClient != nil {
		redisClient.Close() //nolint:errcheck // shutdown path
	}
	sqlDB.Close() //nolint:errcheck // shutdown path

	log.Info().Msg("server stopped")
}

func corsConfig(cfg *config.Config) cors.Config {
	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	return db, nil
}

// reportDBStats feeds the connection pool gauge for Prometheus.
func reportDBStats(sqlDB *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		middleware.SetDBConnectionsActive(float64(sqlDB.Stats().InUse))
	}
}
