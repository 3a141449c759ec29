package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/msomdec/inkwell/internal/config"
	"github.com/msomdec/inkwell/internal/handler"
	"github.com/msomdec/inkwell/internal/repository/sqlite"
	"github.com/msomdec/inkwell/internal/service"
	"github.com/msomdec/inkwell/internal/storage"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			slog.Error("failed to load .env", "error", err)
			os.Exit(1)
		}
	}

	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.Log.Level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	authService := service.NewAuthService(db.Users(), cfg.Auth.JWTSecret, cfg.Auth.BcryptCost)
	articleService := service.NewArticleService(db.Articles())
	commentService := service.NewCommentService(db.Comments(), db.Articles())

	uploadService, err := newUploadService(context.Background(), cfg, db)
	if err != nil {
		slog.Error("failed to configure storage", "error", err)
		os.Exit(1)
	}
	slog.Info("storage configured", "backend", cfg.Storage.Backend)

	loginLimiter := service.NewTokenBucket(config.PerSecond(cfg.RateLimit.LoginPerMinute), cfg.RateLimit.LoginBurst)
	defer loginLimiter.Close()
	uploadLimiter := service.NewTokenBucket(config.PerSecond(cfg.RateLimit.UploadPerMinute), cfg.RateLimit.UploadBurst)
	defer uploadLimiter.Close()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		DB:            db,
		Auth:          authService,
		Articles:      articleService,
		Comments:      commentService,
		Uploads:       uploadService,
		LoginLimiter:  loginLimiter,
		UploadLimiter: uploadLimiter,
		CookieSecure:  cfg.Auth.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "base_url", cfg.HTTP.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newUploadService picks the upload backend. Local uploads are signed by this
// server and stored in the database; s3 uploads go straight to the bucket.
func newUploadService(ctx context.Context, cfg *config.Config, db *sqlite.DB) (*service.UploadService, error) {
	if cfg.Storage.Backend == config.BackendS3 {
		presigner, err := storage.NewS3Presigner(ctx, cfg.S3Config())
		if err != nil {
			return nil, err
		}
		return service.NewUploadService(presigner, nil, nil), nil
	}

	local := storage.NewLocalPresigner(cfg.Auth.JWTSecret, cfg.HTTP.BaseURL, cfg.Storage.URLExpiry)
	return service.NewUploadService(local, local, db.FileStore()), nil
}
