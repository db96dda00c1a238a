package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/freka11/schoolday/internal/config"
	"github.com/freka11/schoolday/internal/handler"
	"github.com/freka11/schoolday/internal/middleware"
	"github.com/freka11/schoolday/internal/model"
	"github.com/freka11/schoolday/internal/repository"
	"github.com/freka11/schoolday/internal/service"
	"github.com/freka11/schoolday/internal/ws"
	"github.com/freka11/schoolday/migrations"
	"github.com/freka11/schoolday/pkg/auth"
	"github.com/freka11/schoolday/pkg/mailer"
	"github.com/freka11/schoolday/pkg/notification"
	"github.com/freka11/schoolday/pkg/storage"
)

// @title           SchoolDay API
// @version         1.0
// @description     Daily questions, thoughts and admin-student chat for schools.

// @contact.name   API Support
// @contact.email  support@schoolday.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting SchoolDay API Server [env=%s]", cfg.App.Env)

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		if err := db.AutoMigrate(
			&model.User{},
			&model.UserDevice{},
			&model.PasswordResetCode{},
			&model.Conversation{},
			&model.Message{},
			&model.Question{},
			&model.Thought{},
			&model.Answer{},
			&model.Streak{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// ==================== Email (SMTP / Mailpit) ====================
	mailClient := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	log.Printf("📧 SMTP configured: %s:%s", cfg.SMTP.Host, cfg.SMTP.Port)

	// ==================== Initialize Layers ====================
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	resetRepo := repository.NewResetCodeRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	thoughtRepo := repository.NewThoughtRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	streakRepo := repository.NewStreakRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, resetRepo, &auth.BcryptHasher{}, jwtManager, mailClient, rdb)
	conversationService := service.NewConversationService(convRepo, msgRepo, userRepo)
	contentService := service.NewContentService(questionRepo, thoughtRepo, answerRepo, streakRepo, userRepo, mailClient)

	// WebSocket Hub (with Redis Pub/Sub for horizontal scaling)
	hub := ws.NewHub(rdb, conversationService.LoadMessages)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// Firebase Cloud Messaging
	notifier, err := notification.NewNotificationService(cfg.Firebase.CredentialsFile, userRepo)
	if err != nil {
		log.Printf("⚠️  FCM not available: %v (push notifications disabled)", err)
	}

	// MinIO Storage
	minioStorage, err := storage.NewMinIO(storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		PublicURL: cfg.MinIO.PublicURL,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		log.Printf("⚠️  MinIO not available: %v (avatar upload disabled)", err)
	}
	if minioStorage != nil {
		log.Println("✅ Connected to MinIO")
	}

	// Handlers
	cookieMaxAge := int(cfg.JWT.Expiry.Seconds())
	authHandler := handler.NewAuthHandler(authService, cfg.Session.CookieName, cfg.Session.Secure, cookieMaxAge)
	contentHandler := handler.NewContentHandler(contentService)
	chatHandler := handler.NewChatHandler(conversationService, hub, notifier)
	wsHandler := handler.NewWSHandler(hub, conversationService, jwtManager)
	uploadHandler := handler.NewUploadHandler(minioStorage, userRepo)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Swagger configuration
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "schoolday-api",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api")
	{
		// Auth routes (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/session", authHandler.CreateSession)
			authGroup.GET("/session", authHandler.GetSession)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/forgot-password", authHandler.ForgotPassword)
			authGroup.POST("/reset-password", authHandler.ResetPassword)
		}

		// Authenticated routes (any role)
		protected := api.Group("")
		protected.Use(middleware.SessionAuth(authService, rdb, cfg.Session.CookieName))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.POST("/auth/device", authHandler.RegisterDevice)
			protected.POST("/profile/avatar", uploadHandler.UploadAvatar)

			// Conversations (admin and student both participate)
			protected.GET("/conversations", chatHandler.GetConversations)
			protected.POST("/conversations/direct", chatHandler.GetOrCreateDirect)
			protected.GET("/conversations/:id/messages", chatHandler.GetMessages)
			protected.POST("/conversations/:id/messages", chatHandler.SendMessage)
			protected.POST("/conversations/:id/read", chatHandler.MarkAsRead)
			protected.PATCH("/messages/:id/status", chatHandler.UpdateDeliveryStatus)
		}

		// Admin portal
		admin := api.Group("/admin")
		admin.Use(middleware.SessionAuth(authService, rdb, cfg.Session.CookieName))
		admin.Use(middleware.RequireRole(model.RoleAdmin, middleware.AdminLoginPath))
		{
			admin.GET("/questions", contentHandler.GetQuestions)
			admin.POST("/questions", contentHandler.CreateQuestion)
			admin.PUT("/questions", contentHandler.UpdateQuestion)
			admin.PATCH("/questions", contentHandler.PatchQuestion)
			admin.DELETE("/questions", contentHandler.DeleteQuestion)
			admin.POST("/questions/bulk", contentHandler.BulkCreateQuestions)

			admin.GET("/thoughts", contentHandler.GetThoughts)
			admin.POST("/thoughts", contentHandler.CreateThought)
			admin.PUT("/thoughts", contentHandler.UpdateThought)
			admin.PATCH("/thoughts", contentHandler.PatchThought)
			admin.DELETE("/thoughts", contentHandler.DeleteThought)

			admin.GET("/answers", contentHandler.GetAnswers)
			admin.DELETE("/answers", contentHandler.DeleteAnswer)

			admin.POST("/digest", contentHandler.SendDailyDigest)
		}

		// Student portal
		student := api.Group("/user")
		student.Use(middleware.SessionAuth(authService, rdb, cfg.Session.CookieName))
		student.Use(middleware.RequireStudent(authService, middleware.StudentLoginPath))
		{
			student.GET("/questions", contentHandler.GetQuestions)
			student.GET("/thoughts", contentHandler.GetThoughts)
			student.POST("/answers", contentHandler.CreateAnswer)
			student.GET("/streak", contentHandler.GetStreak)
		}
	}

	// WebSocket endpoint (auth via query parameter)
	router.GET("/ws", wsHandler.HandleWebSocket)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 SchoolDay API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Printf("🔌 WebSocket: ws://0.0.0.0:%s/ws?token=<jwt>", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	hubCancel()
	log.Println("✅ Server exited gracefully")
}
