/*
Package main is the entry point for the Security Chat Backend.

It is responsible for loading configuration, initializing the global logging system,
opening the selected database backend, starting the realtime Hub, setting up the
HTTP server, and gracefully handling operating system interrupt signals (SIGINT,
SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mountain-chan/security-chat-backend/internal/app/chat"
	"github.com/mountain-chan/security-chat-backend/internal/app/store"
	"github.com/mountain-chan/security-chat-backend/internal/app/store/postgres"
	"github.com/mountain-chan/security-chat-backend/internal/app/store/sqlite"
	"github.com/mountain-chan/security-chat-backend/internal/configs"
	"github.com/mountain-chan/security-chat-backend/internal/handler"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/auth/jwt"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("db_driver", cfg.DBDriver).
		Bool("announce_logins", cfg.AnnounceLogins).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the selected database backend
	messages, users, closeDB, err := openStores(cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open database")
	}
	defer closeDB()

	// Initialize the realtime Hub
	hub := chat.NewHub(cfg, messages, users, jwt.NewResolver(cfg.JWTSecret))

	// Setup HTTP server and routes
	router := handler.Router(&handler.AppDeps{
		Hub:      hub,
		Config:   cfg,
		Messages: messages,
		Users:    users,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Security Chat Backend starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
}

// openStores opens the configured database backend and returns the message and
// user stores plus a close function.
func openStores(cfg *configs.AppConfig) (store.MessageStore, store.UserStore, func(), error) {
	switch cfg.DBDriver {
	case configs.DriverSQLite:
		db, err := sqlite.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return sqlite.NewMessageStore(db), sqlite.NewUserStore(db), func() { db.Close() }, nil

	default:
		pool, err := postgres.NewPool(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return postgres.NewMessageStore(pool), postgres.NewUserStore(pool), pool.Close, nil
	}
}
