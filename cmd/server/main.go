package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"notes-service/internal/config"
	"notes-service/internal/logger"
	"notes-service/internal/server"
)

const configFile = "config.yml"

func main() {
	// Переменные из .env подставляются в ${VAR:-default} конфига
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("error loading .env")
	}

	// Загружаем конфигурацию из файла
	appConfig, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing config")
	}

	appLog := logger.New(appConfig.Logger)
	appLog.Info().Msg("starting Notes Service")

	srv := server.NewServer(appConfig, appLog)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = srv.Initialize(initCtx)
	initCancel()
	if err != nil {
		appLog.Fatal().Err(err).Msg("failed to initialize server")
	}

	// Канал для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := srv.Start()

	// Ожидание сигнала или ошибки
	select {
	case err := <-errChan:
		appLog.Error().Err(err).Msg("server error")
	case sig := <-sigChan:
		appLog.Info().Str("signal", sig.String()).Msg("received signal, starting graceful shutdown")
	}

	if err := srv.Shutdown(); err != nil {
		appLog.Error().Err(err).Msg("shutdown finished with error")
		os.Exit(1)
	}

	appLog.Info().Msg("Notes Service stopped")
}
