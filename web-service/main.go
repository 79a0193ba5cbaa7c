package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/backend"
	"github.com/Ualine055/task-mgt-app/internal/config"
	"github.com/Ualine055/task-mgt-app/internal/handlers"
	"github.com/Ualine055/task-mgt-app/internal/logging"
	"github.com/charmbracelet/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", "err", err)
	}

	logger := logging.New(os.Stderr, logging.Options{
		Level:           cfg.Log.Level,
		Format:          cfg.Log.Format,
		Prefix:          "taskapp",
		ReportTimestamp: true,
	})

	client := initBackend(logger, cfg)
	defer client.Close()

	handler := initHandlers(logger, cfg, client)
	defer handler.Close()

	server := initServer(cfg, logging.Middleware(logger, handler.Routes()))
	startServer(logger, server)
}

func initBackend(logger *log.Logger, cfg *config.Config) *backend.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := backend.New(ctx, cfg.Backend, cfg.Session.Lifetime())
	if err != nil {
		logger.Fatal("Failed to initialize backend", "err", err)
	}
	return client
}

func initHandlers(logger *log.Logger, cfg *config.Config, client *backend.Client) *handlers.Handler {
	return handlers.NewHandler(client.Tasks, client.Auth, logger, handlers.Options{
		CookieName:      cfg.Session.CookieName,
		SecureCookies:   cfg.Server.SecureCookies,
		SessionTTL:      cfg.Session.Lifetime(),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		TrustProxy:      cfg.Server.TrustProxy,
		RateLimit:       cfg.RateLimit.Attempts,
		RateLimitWindow: cfg.RateLimit.WindowLength(),
	})
}

func initServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func startServer(logger *log.Logger, server *http.Server) {
	logger.Info("Starting web server", "addr", server.Addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "err", err)
		return
	}
	logger.Info("Server stopped")
}
