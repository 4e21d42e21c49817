package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/davydenkov/user-manage/internal/events"
	"github.com/davydenkov/user-manage/pkg/config"
	"github.com/davydenkov/user-manage/pkg/logging"
	"github.com/davydenkov/user-manage/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.Debug)

	log.Info().Msg("starting event-consumer")

	consumer := rabbitmq.NewConsumer(cfg.RabbitMQURL)
	if err := consumer.Start(events.Handler); err != nil {
		log.Fatal().Err(err).Msg("failed to start consumer")
	}

	log.Info().Msg("consumer is running, waiting for messages")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := consumer.Stop(); err != nil {
		log.Error().Err(err).Msg("consumer shutdown error")
	}
}
