package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Websitedemo13/s17-trading-go/internal/config"
	"github.com/Websitedemo13/s17-trading-go/internal/database"
	"github.com/Websitedemo13/s17-trading-go/internal/handler"
	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/middleware"
	"github.com/Websitedemo13/s17-trading-go/internal/repository"
	"github.com/Websitedemo13/s17-trading-go/internal/service"
)

func main() {
	cfg := config.Load()
	logg := logger.New("server")

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL, logg)
	if err != nil {
		logg.Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db, logg); err != nil {
		logg.Fatalw("migrations failed", "error", err)
	}
	logg.Info("migrations applied")

	// Redis (typing presence)
	rdb, err := database.NewRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		logg.Fatalw("redis connection failed", "error", err)
	}
	defer rdb.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notifyRepo := repository.NewNotificationRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, sessionRepo, cfg.JWTSecret)
	teamSvc := service.NewTeamService(teamRepo, notifyRepo)
	insightSvc := service.NewInsightService()
	presence := service.NewPresenceService(rdb, logger.New("presence"))
	hub := service.NewHub(logger.New("hub"))

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// Health
	healthH := handler.NewHealthHandler(db, rdb, hub)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// API v1
	v1 := app.Group("/api/v1")

	// Auth (public)
	authH := handler.NewAuthHandler(authSvc)
	auth := v1.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(5, time.Minute), authH.SignUp)
	auth.Post("/signin", middleware.RateLimit(10, time.Minute), authH.SignIn)
	auth.Post("/refresh", middleware.RateLimit(20, time.Minute), authH.Refresh)
	auth.Post("/signout", authH.SignOut)

	// JWT-protected routes
	protected := v1.Group("", middleware.Auth(authSvc))

	// Profile
	profileH := handler.NewProfileHandler(userRepo, authSvc, logger.New("profile"))
	protected.Get("/profile", profileH.Get)
	protected.Put("/profile", profileH.Update)
	protected.Put("/profile/password", profileH.ChangePassword)

	// Teams
	teamH := handler.NewTeamHandler(teamSvc)
	teams := protected.Group("/teams")
	teams.Post("/", teamH.Create)
	teams.Get("/", teamH.List)
	teams.Get("/:id", teamH.Get)
	teams.Put("/:id", teamH.Update)
	teams.Delete("/:id", teamH.Delete)
	teams.Get("/:id/members", teamH.Members)
	teams.Post("/:id/join", teamH.Join)
	teams.Post("/:id/leave", teamH.Leave)
	teams.Put("/:id/members/:uid/role", teamH.SetRole)

	// Chat
	chatH := handler.NewChatHandler(chatRepo, teamRepo, userRepo, hub, presence, logger.New("chat"))
	teams.Post("/:id/messages", chatH.PostMessage)
	teams.Get("/:id/messages", chatH.GetHistory)
	teams.Get("/:id/typing", chatH.GetTyping)

	// Notifications
	notifyH := handler.NewNotificationHandler(notifyRepo, logger.New("notify"))
	protected.Get("/notifications", notifyH.List)
	protected.Put("/notifications/:id/read", notifyH.MarkRead)

	// AI insights (mock edge function)
	insightH := handler.NewInsightHandler(insightSvc)
	protected.Post("/insights", insightH.Analyze)

	// WebSocket
	wsH := handler.NewWSHandler(hub, presence, authSvc, teamRepo, userRepo, logger.New("ws"))
	app.Get("/ws", wsH.Upgrade)

	// Start hub
	go hub.Run()

	// Hourly retention sweep: expired refresh tokens, expired
	// notifications, chat history past the retention window.
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go runJanitor(janitorCtx, sessionRepo, notifyRepo, chatRepo, logger.New("janitor"))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logg.Fatalw("server stopped unexpectedly", "error", err)
		}
	}()

	logg.Infow("backend running", "port", cfg.Port, "env", cfg.Env)

	<-quit
	logg.Info("shutting down")
	_ = app.ShutdownWithTimeout(5 * time.Second)
	hub.Shutdown()
	logg.Info("server stopped")
}

const chatRetentionDays = 90

func runJanitor(ctx context.Context, sessions *repository.SessionRepository, notifications *repository.NotificationRepository, chats *repository.ChatRepository, log *logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if n, err := sessions.CleanupExpired(ctx); err != nil {
			log.Warnw("refresh token cleanup failed", "error", err)
		} else if n > 0 {
			log.Infow("refresh tokens cleaned", "count", n)
		}

		if n, err := notifications.DeleteExpired(ctx); err != nil {
			log.Warnw("notification cleanup failed", "error", err)
		} else if n > 0 {
			log.Infow("expired notifications deleted", "count", n)
		}

		if n, err := chats.DeleteOlderThan(ctx, chatRetentionDays); err != nil {
			log.Warnw("chat retention sweep failed", "error", err)
		} else if n > 0 {
			log.Infow("old chat messages deleted", "count", n)
		}
	}
}
