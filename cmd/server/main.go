package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kkmk/internal/config"
	"kkmk/internal/db"
	"kkmk/internal/handlers"
	"kkmk/internal/logger"
	"kkmk/internal/middleware"
	"kkmk/internal/router"
	"kkmk/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}
	cfg := config.Load()

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	// Initialize Database
	conn, err := db.Open(cfg, zl)
	if err != nil {
		zl.Fatal("database unavailable", zap.Error(err))
	}
	if err := db.Migrate(conn); err != nil {
		zl.Fatal("database migration failed", zap.Error(err))
	}

	media, err := newMediaStore(cfg, zl)
	if err != nil {
		zl.Fatal("media store unavailable", zap.Error(err))
	}
	forum := services.NewForumService(conn, services.NewWordFilter(cfg.ProfanityWords...), zl.Named("forum"))

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.Recovery(zl), middleware.RequestLogger(zl.Named("http")))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.UserHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup Sessions（与鉴权服务共用同一个 secret）
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 86400 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("kkmk_session", store))
	r.Use(middleware.LoadUser(conn, cfg.TrustUserHeader))

	if cfg.CloudinaryURL == "" {
		r.Static("/"+strings.Trim(cfg.UploadDir, "/"), cfg.UploadDir)
	}

	router.RegisterRoutes(r, router.Handlers{
		Forum:        handlers.NewForumHandler(forum, media, zl),
		Vote:         handlers.NewVoteHandler(forum, zl),
		Notification: handlers.NewNotificationHandler(forum, zl),
		Category:     handlers.NewCategoryHandler(forum, zl),
	}, middleware.NewRateLimiter(cfg.RateLimitPerMinute))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		zl.Info("kkmk forum server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
}

// newMediaStore 配置了 CLOUDINARY_URL 用 Cloudinary，否则写本地目录
func newMediaStore(cfg config.Config, zl *zap.Logger) (services.MediaStore, error) {
	if cfg.CloudinaryURL != "" {
		zl.Info("using cloudinary media store")
		return services.NewCloudinaryStore(cfg.CloudinaryURL, "kkmk/forum", cfg.MaxUploadBytes())
	}
	zl.Info("using local media store", zap.String("dir", cfg.UploadDir))
	return services.NewLocalStore(cfg.UploadDir, cfg.MaxUploadBytes()), nil
}
