package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/davydenkov/user-manage/internal/api"
	"github.com/davydenkov/user-manage/internal/store"
	"github.com/davydenkov/user-manage/pkg/config"
	"github.com/davydenkov/user-manage/pkg/logging"
	"github.com/davydenkov/user-manage/pkg/postgres"
	"github.com/davydenkov/user-manage/pkg/rabbitmq"

	_ "github.com/davydenkov/user-manage/docs"
)

// @title           User Management API
// @version         1.0
// @description     CRUD REST service for user records that publishes lifecycle events to RabbitMQ.
// @host            localhost:8000
// @BasePath        /
// @schemes         http
func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.Debug)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().Msg("starting user-service")

	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// The publisher dials lazily on first mutation, so a broker that is
	// still coming up does not block API startup.
	publisher := rabbitmq.NewPublisher(cfg.RabbitMQURL)
	defer publisher.Close()

	handler := api.NewUserHandler(store.NewUserStore(db), publisher)
	router := api.NewRouter(handler)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited gracefully")
}
