package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/assinei/assinei-backend/handlers"
	"github.com/assinei/assinei-backend/internal/audit"
	"github.com/assinei/assinei-backend/internal/config"
	"github.com/assinei/assinei-backend/internal/database"
	dochandler "github.com/assinei/assinei-backend/internal/document/handler"
	"github.com/assinei/assinei-backend/internal/document/repository"
	"github.com/assinei/assinei-backend/internal/document/service"
	"github.com/assinei/assinei-backend/internal/notification"
	"github.com/assinei/assinei-backend/internal/sectors"
	"github.com/assinei/assinei-backend/internal/sessions"
	"github.com/assinei/assinei-backend/internal/storage"
	"github.com/assinei/assinei-backend/internal/users"
	"github.com/assinei/assinei-backend/pkg/logger"
	"github.com/assinei/assinei-backend/pkg/metrics"
	"github.com/assinei/assinei-backend/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	ctx := context.Background()
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS for dev/test; production sits behind a stricter proxy.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// Redis first: blacklist, sessions, rate limiting and notification fan-out
	// all degrade gracefully without it.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if redisClient != nil {
		r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, time.Second))
	} else {
		r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	// MongoDB with retry/backoff to tolerate startup races; everything falls
	// back to the in-memory repositories when it never comes up.
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mongoClient, err = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if err == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if mongoClient != nil {
			defer func() { _ = mongoClient.Disconnect(ctx) }()
			logger.Infof("connected to MongoDB database %s", cfg.MongoDB.Database)
		}
	}

	// repositories: Mongo when available, in-memory otherwise
	var (
		docRepo     repository.Repository
		userRepo    users.Repository
		sectorRepo  sectors.Repository
		auditRepo   audit.Repository
		sessionRepo sessions.Repository
	)
	if mongoClient != nil {
		db := mongoClient.Database(cfg.MongoDB.Database)
		docRepo = repository.NewMongoRepo(db.Collection("documents"), db.Collection("signatures"))
		userRepo = users.NewMongoRepository(db.Collection("users"))
		sectorRepo = sectors.NewMongoRepository(db.Collection("sectors"))
		auditRepo = audit.NewMongoRepository(db.Collection("audit_logs"))
		sessionRepo = sessions.NewMongoRepository(db.Collection("sessions"))
	} else {
		logger.Warnf("MongoDB unavailable; using in-memory repositories")
		docRepo = repository.NewMemoryRepo()
		userRepo = users.NewMemoryRepository()
		sectorRepo = sectors.NewMemoryRepository()
		auditRepo = audit.NewMemoryRepository()
	}
	if redisClient != nil {
		// prefer Redis sessions even when Mongo is up: TTL handling is free
		sessionRepo = sessions.NewRedisRepository(redisClient, "refresh:")
	}
	if sessionRepo == nil {
		logger.Fatalf("no session store available: configure REDIS_HOST or MONGODB_URI")
	}

	userSvc := users.NewService(userRepo)
	sectorSvc := sectors.NewService(sectorRepo)
	auditSvc := audit.NewService(auditRepo)
	sessionsSvc := sessions.NewService(sessionRepo)

	// notification fan-out: in-process hub, plus Redis pub/sub relay so every
	// replica sees every event
	hub := notification.NewHub()
	var publisher *notification.RedisPublisher
	if redisClient != nil {
		publisher = notification.NewRedisPublisher(redisClient, "")
		go publisher.Relay(ctx, hub)
	}
	notifSvc := notification.NewService(hub, publisher)

	eng := service.NewEngine(docRepo, userSvc, notifSvc, auditSvc)

	// MinIO is optional: without it documents are metadata-only
	var files dochandler.FileStore
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIOStorage(&storage.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
			Bucket:    cfg.MinIO.Bucket,
		})
		if err != nil {
			logger.Warnf("failed to initialize MinIO storage: %v", err)
		} else {
			files = store
			logger.Infof("connected to MinIO at %s (bucket %s)", cfg.MinIO.Endpoint, cfg.MinIO.Bucket)
		}
	}

	seedAdmin(ctx, userSvc)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"mongo": mongoClient != nil,
			"redis": redisClient != nil,
			"minio": files != nil,
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	authHandler := handlers.NewAuthHandler(cfg, userSvc, sessionsSvc)
	authHandler.Register(r.Group(""), middleware.AuthMiddleware(middleware.NewJWTVerifier(cfg)), middleware.RequireAdmin())

	handlers.RegisterSwagger(r)

	api := r.Group("/api", middleware.AuthMiddleware(middleware.NewJWTVerifier(cfg)))
	dochandler.New(eng, files).RegisterDocumentRoutes(api)
	sectors.RegisterSectorRoutes(api, sectorSvc, middleware.RequireAdmin())
	handlers.RegisterUserRoutes(api, userSvc, middleware.RequireAdmin())
	api.GET("/notifications/stream", notification.StreamHandler(hub))
	admin := api.Group("", middleware.RequireAdmin())
	audit.RegisterAuditRoutes(admin, auditSvc)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting assinei backend on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

// seedAdmin bootstraps the first administrator from ADMIN_EMAIL and
// ADMIN_PASSWORD. A no-op when the variables are unset or the account exists.
func seedAdmin(ctx context.Context, svc *users.Service) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	if _, err := svc.GetByEmail(ctx, email); err == nil {
		return
	}
	_, err := svc.Create(ctx, users.CreateInput{
		Name:     "Administrador",
		Email:    email,
		Password: password,
		Role:     "admin",
	})
	if err != nil {
		logger.Warnf("failed to seed admin user: %v", err)
		return
	}
	logger.Infof("seeded admin user %s", email)
}
